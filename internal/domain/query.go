package domain

import "math"

// Sortable product fields
const (
	SortCreatedAt   = "created_at"
	SortUpdatedAt   = "updated_at"
	SortName        = "name"
	SortPrice       = "price_cents"
	SortRating      = "rating"
	SortReviewCount = "review_count"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int for every allowed limit
	MaxPage = math.MaxInt / MaxLimit
)

// ProductFilter is the set of optional, AND-combined product predicates.
// A nil field (or nil slice) means the filter was not supplied.
type ProductFilter struct {
	Categories   []string `json:"categories,omitempty"`
	MilestoneIDs []string `json:"milestoneIds,omitempty"`
	AgeMonths    *int     `json:"ageMonths,omitempty"`
	MinPrice     *float64 `json:"minPrice,omitempty"` // whole currency units
	MaxPrice     *float64 `json:"maxPrice,omitempty"`
	MinRating    *float64 `json:"minRating,omitempty"`
	BudgetTier   *string  `json:"budgetTier,omitempty"`
	Search       *string  `json:"search,omitempty"`
	EcoFriendly  *bool    `json:"ecoFriendly,omitempty"`
	Premium      *bool    `json:"premium,omitempty"`
	InStock      *bool    `json:"inStock,omitempty"`
}

// PremiumOnlyForBudget maps a budget filter to the premium flag it implies.
// ok is false when the tier is not recognized and no filter applies.
func PremiumOnlyForBudget(tier string) (premium bool, ok bool) {
	switch tier {
	case "essentials", "balanced":
		return false, true
	case "premium", "luxury":
		return true, true
	}
	return false, false
}

// ProductQuery is a filter set plus pagination, sort and eager-load directives
type ProductQuery struct {
	Filter              ProductFilter `json:"filter"`
	Page                int           `json:"page"`
	Limit               int           `json:"limit"`
	SortBy              string        `json:"sortBy"`
	SortOrder           string        `json:"sortOrder"`
	IncludeReviews      bool          `json:"includeReviews"`
	IncludeAICategories bool          `json:"includeAiCategories"`
}

// Normalize clamps pagination and resolves sort directives to the allow-list
func (q ProductQuery) Normalize() ProductQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.SortBy = ResolveSortField(q.SortBy)
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		q.SortOrder = "desc"
	}
	return q
}

// Offset returns the number of rows skipped before the requested page
func (q ProductQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

var sortFields = map[string]string{
	"createdAt":    SortCreatedAt,
	"created_at":   SortCreatedAt,
	"updatedAt":    SortUpdatedAt,
	"updated_at":   SortUpdatedAt,
	"name":         SortName,
	"price":        SortPrice,
	"priceCents":   SortPrice,
	"price_cents":  SortPrice,
	"rating":       SortRating,
	"reviewCount":  SortReviewCount,
	"review_count": SortReviewCount,
}

// ResolveSortField maps a caller-supplied sort key to a column, falling back to created_at
func ResolveSortField(s string) string {
	if col, ok := sortFields[s]; ok {
		return col
	}
	return SortCreatedAt
}

// Pagination is the metadata returned alongside a product page
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes totalPages as ceil(total/limit)
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// ProductPage is a bounded, ordered page of products
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
