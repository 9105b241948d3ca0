package usecase

import (
	"net/url"
	"strings"

	"github.com/nestlings/planner/internal/domain"
)

// ParseProductQuery builds a ProductQuery from raw query parameters.
// Values that fail to parse are treated as not supplied; the query engine
// normalizes pagination and sort directives afterwards.
func ParseProductQuery(values url.Values) domain.ProductQuery {
	q := domain.ProductQuery{
		Page:                parseIntOr(values.Get("page"), 0),
		Limit:               parseIntOr(values.Get("limit"), 0),
		SortBy:              strings.TrimSpace(values.Get("sortBy")),
		SortOrder:           strings.ToLower(strings.TrimSpace(values.Get("sortOrder"))),
		IncludeReviews:      parseBoolOr(values.Get("includeReviews"), false),
		IncludeAICategories: parseBoolOr(values.Get("includeAiCategories"), false),
	}

	f := &q.Filter
	f.Categories = domain.ParseList(values["category"])
	f.MilestoneIDs = domain.ParseList(append(append([]string{}, values["milestone"]...), values["milestoneId"]...))
	f.AgeMonths = domain.ParseInt(values.Get("ageMonths"))
	f.MinPrice = domain.ParseFloat(values.Get("minPrice"))
	f.MaxPrice = domain.ParseFloat(values.Get("maxPrice"))
	f.MinRating = domain.ParseFloat(values.Get("minRating"))
	f.BudgetTier = domain.ParseString(values.Get("budget"))
	f.Search = domain.ParseString(values.Get("search"))
	f.EcoFriendly = domain.ParseBool(values.Get("ecoFriendly"))
	f.Premium = domain.ParseBool(values.Get("premium"))
	f.InStock = domain.ParseBool(values.Get("inStock"))

	return q
}

func parseIntOr(s string, fallback int) int {
	if v := domain.ParseInt(s); v != nil {
		return *v
	}
	return fallback
}

func parseBoolOr(s string, fallback bool) bool {
	if v := domain.ParseBool(s); v != nil {
		return *v
	}
	return fallback
}
