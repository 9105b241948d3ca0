package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product represents a catalog entry
type Product struct {
	ID             string                      `json:"id" gorm:"primaryKey;size:36"`
	Name           string                      `json:"name" gorm:"not null"`
	Description    string                      `json:"description"`
	Category       string                      `json:"category" gorm:"index;not null"`
	Subcategory    *string                     `json:"subcategory,omitempty"`
	Brand          *string                     `json:"brand,omitempty"`
	ImageURL       *string                     `json:"imageUrl,omitempty"`
	PriceCents     *int64                      `json:"priceCents"` // nil when the price is unknown
	Currency       string                      `json:"currency" gorm:"size:3;default:USD"`
	AvailableFrom  *time.Time                  `json:"availableFrom,omitempty"`
	AvailableUntil *time.Time                  `json:"availableUntil,omitempty"`
	AgeMinMonths   *int                        `json:"ageMinMonths,omitempty"`
	AgeMaxMonths   *int                        `json:"ageMaxMonths,omitempty"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	EcoFriendly    bool                        `json:"ecoFriendly" gorm:"not null;default:false"`
	Premium        bool                        `json:"premium" gorm:"not null;default:false"`
	Rating         *float64                    `json:"rating"`
	ReviewCount    int                         `json:"reviewCount" gorm:"not null;default:0"`
	SourceURL      *string                     `json:"sourceUrl,omitempty" gorm:"uniqueIndex"`
	InStock        bool                        `json:"inStock" gorm:"not null;index"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`

	// Populated from join tables, never stored on the row itself
	MilestoneIDs  []string `json:"milestoneIds" gorm:"-"`
	AICategoryIDs []string `json:"aiCategoryIds,omitempty" gorm:"-"`
	Reviews       []Review `json:"reviews,omitempty" gorm:"-"`
}

// BeforeCreate assigns an identifier when the caller did not supply one
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Validate checks the catalog invariants: rating in [0,5], non-negative
// price and an ordered age range.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return fmt.Errorf("%w: rating %.2f outside [0, 5]", ErrInvalidProduct, *p.Rating)
	}
	if p.PriceCents != nil && *p.PriceCents < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidProduct)
	}
	if p.AgeMinMonths != nil && p.AgeMaxMonths != nil && *p.AgeMinMonths > *p.AgeMaxMonths {
		return fmt.Errorf("%w: age range %d-%d is inverted", ErrInvalidProduct, *p.AgeMinMonths, *p.AgeMaxMonths)
	}
	if p.ReviewCount < 0 {
		return fmt.Errorf("%w: negative review count", ErrInvalidProduct)
	}
	return nil
}

// RatingOrZero returns the rating, treating an unrated product as 0
func (p *Product) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// DisplayPrice returns the price in whole currency units
func (p *Product) DisplayPrice() (float64, bool) {
	if p.PriceCents == nil {
		return 0, false
	}
	return float64(*p.PriceCents) / 100, true
}

// ProductMilestone links a product to a milestone it is relevant to
type ProductMilestone struct {
	ProductID   string `gorm:"primaryKey;size:36"`
	MilestoneID string `gorm:"primaryKey;size:64;index"`
}

// AICategory is a curated topical tag such as "sleep-support"
type AICategory struct {
	ID          string `json:"id" gorm:"primaryKey;size:64"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description,omitempty"`
}

// ProductAICategory links a product to an AI category
type ProductAICategory struct {
	ProductID    string `gorm:"primaryKey;size:36"`
	AICategoryID string `gorm:"primaryKey;size:64;index"`
}

// Review is a caregiver review attached to a product
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ProductID string    `json:"productId" gorm:"index;size:36;not null"`
	UserID    string    `json:"userId" gorm:"size:64"`
	Rating    float64   `json:"rating" gorm:"not null"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Milestone is a developmental stage used to scope product relevance
type Milestone struct {
	ID          string `json:"id" gorm:"primaryKey;size:64"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description,omitempty"`
	AgeMonths   int    `json:"ageMonths"`
	SortOrder   int    `json:"sortOrder" gorm:"index"`
}

// ProductDraft is the structured product data extracted from a source page
type ProductDraft struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Subcategory  string   `json:"subcategory,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Price        *float64 `json:"price"` // whole currency units
	Currency     string   `json:"currency,omitempty"`
	AgeMinMonths *int     `json:"ageMinMonths,omitempty"`
	AgeMaxMonths *int     `json:"ageMaxMonths,omitempty"`
	MilestoneIDs []string `json:"milestoneIds,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	EcoFriendly  bool     `json:"ecoFriendly"`
	Premium      bool     `json:"premium"`
	Rating       *float64 `json:"rating,omitempty"`
	InStock      *bool    `json:"inStock,omitempty"`
}

// SourcePage is the reduced content of a product page fetched for extraction
type SourcePage struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	PriceHint   string `json:"priceHint,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Text        string `json:"text"`
}
