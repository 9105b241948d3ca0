package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BudgetTier is an ordered caregiver spend preference: essentials < balanced < premium
type BudgetTier string

const (
	BudgetEssentials BudgetTier = "essentials"
	BudgetBalanced   BudgetTier = "balanced"
	BudgetPremium    BudgetTier = "premium"
)

// ParseBudgetTier normalizes a tier string. ok is false for values outside
// the three known tiers; the returned tier is then the supplied fallback.
func ParseBudgetTier(s string, fallback BudgetTier) (BudgetTier, bool) {
	switch BudgetTier(strings.ToLower(strings.TrimSpace(s))) {
	case BudgetEssentials:
		return BudgetEssentials, true
	case BudgetBalanced:
		return BudgetBalanced, true
	case BudgetPremium:
		return BudgetPremium, true
	}
	return fallback, false
}

// PreferenceProfile holds the standing preferences used for scoring
type PreferenceProfile struct {
	BudgetTier  BudgetTier `json:"budgetTier"`
	EcoPriority bool       `json:"ecoPriority"`
}

// Recommendation is a scored product with its human-readable rationale
type Recommendation struct {
	Product   Product `json:"product"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// RecommendationRecord is a persisted line of a recommendation served to a user
type RecommendationRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"userId" gorm:"index;size:64;not null"`
	ProductID string    `json:"productId" gorm:"index;size:36;not null"`
	Source    string    `json:"source" gorm:"size:32"` // "rules" or "curated"
	Score     float64   `json:"score"`
	Rationale string    `json:"rationale"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RecommendationRecord) TableName() string { return "recommendation_history" }

func (r *RecommendationRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// InteractionKind classifies how a user engaged with a product
type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionSave     InteractionKind = "save"
	InteractionClick    InteractionKind = "click"
	InteractionPurchase InteractionKind = "purchase"
)

// Valid reports whether k is a known interaction kind
func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionView, InteractionSave, InteractionClick, InteractionPurchase:
		return true
	}
	return false
}

// Interaction is a persisted user/product engagement event
type Interaction struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	UserID    string          `json:"userId" gorm:"index;size:64;not null"`
	ProductID string          `json:"productId" gorm:"index;size:36;not null"`
	Kind      InteractionKind `json:"kind" gorm:"size:16;not null"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (Interaction) TableName() string { return "interaction_history" }

func (i *Interaction) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// CuratedPick is one LLM-selected product in a milestone bundle
type CuratedPick struct {
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

// CuratedBundle is a milestone-specific selection returned by the curator
type CuratedBundle struct {
	MilestoneID string           `json:"milestoneId"`
	Title       string           `json:"title"`
	Summary     string           `json:"summary"`
	Items       []Recommendation `json:"items"`
}
