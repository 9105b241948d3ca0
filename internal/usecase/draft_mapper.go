package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/nestlings/planner/internal/domain"
)

// DraftToProduct converts extracted product data into a catalog product.
// Prices become cents, ratings are clamped to [0, 5], inverted age bounds
// are swapped and the category is lowercased. A missing in-stock flag
// means the product is available.
func DraftToProduct(draft *domain.ProductDraft, page *domain.SourcePage) (*domain.Product, error) {
	if draft == nil {
		return nil, fmt.Errorf("%w: empty extraction", domain.ErrInvalidProduct)
	}

	name := strings.TrimSpace(draft.Name)
	if name == "" && page != nil {
		name = strings.TrimSpace(page.Title)
	}

	category := normalizeCategory(draft.Category)
	if category == "" {
		category = "other"
	}

	product := &domain.Product{
		Name:         name,
		Description:  strings.TrimSpace(draft.Description),
		Category:     category,
		Subcategory:  optionalString(draft.Subcategory),
		Brand:        optionalString(draft.Brand),
		ImageURL:     optionalString(draft.ImageURL),
		Currency:     normalizeCurrency(draft.Currency),
		AgeMinMonths: nonNegative(draft.AgeMinMonths),
		AgeMaxMonths: nonNegative(draft.AgeMaxMonths),
		Tags:         cleanTags(draft.Tags),
		EcoFriendly:  draft.EcoFriendly,
		Premium:      draft.Premium,
		InStock:      draft.InStock == nil || *draft.InStock,
		MilestoneIDs: cleanIDs(draft.MilestoneIDs),
	}

	if product.ImageURL == nil && page != nil {
		product.ImageURL = optionalString(page.ImageURL)
	}
	if product.Currency == "" && page != nil {
		product.Currency = normalizeCurrency(page.Currency)
	}
	if product.Currency == "" {
		product.Currency = "USD"
	}

	if draft.Price != nil && *draft.Price >= 0 && !math.IsNaN(*draft.Price) && !math.IsInf(*draft.Price, 0) {
		cents := int64(math.Round(*draft.Price * 100))
		product.PriceCents = &cents
	}

	if draft.Rating != nil && !math.IsNaN(*draft.Rating) {
		r := math.Max(0, math.Min(5, *draft.Rating))
		product.Rating = &r
	}

	if product.AgeMinMonths != nil && product.AgeMaxMonths != nil && *product.AgeMinMonths > *product.AgeMaxMonths {
		product.AgeMinMonths, product.AgeMaxMonths = product.AgeMaxMonths, product.AgeMinMonths
	}

	if page != nil && page.URL != "" {
		u := page.URL
		product.SourceURL = &u
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) != 3 {
		return ""
	}
	return c
}

func nonNegative(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	n := *v
	return &n
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func cleanIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	return domain.ParseList(ids)
}
