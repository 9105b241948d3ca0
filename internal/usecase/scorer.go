package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nestlings/planner/internal/domain"
)

const (
	categoryMatchBonus = 1.5
	ecoBonus           = 1.0
	withinBudgetBonus  = 0.6
	overBudgetPenalty  = 0.4
	defaultMaxResults  = 8
	fallbackRationale  = "Popular pick"
)

// DefaultCategoryWeights boosts the categories caregivers lean on most
var DefaultCategoryWeights = map[string]float64{
	"nursing":  1.2,
	"sleeping": 1.15,
	"safety":   1.1,
}

// DefaultBudgetThresholds is the comfortable per-item spend in display units.
// A tier without a positive threshold is unbounded.
var DefaultBudgetThresholds = map[domain.BudgetTier]float64{
	domain.BudgetEssentials: 120,
	domain.BudgetBalanced:   220,
}

// ScorerConfig holds configuration for the recommendation scorer
type ScorerConfig struct {
	CategoryWeights  map[string]float64
	BudgetThresholds map[domain.BudgetTier]float64
	MaxResults       int
	FallbackTier     domain.BudgetTier
}

// Scorer ranks candidate products against a preference profile. It holds
// no mutable state and is safe for concurrent use.
type Scorer struct {
	weights      map[string]float64
	thresholds   map[domain.BudgetTier]float64
	maxResults   int
	fallbackTier domain.BudgetTier
}

// NewScorer creates a scorer, filling unset configuration with defaults
func NewScorer(config ScorerConfig) *Scorer {
	weights := make(map[string]float64)
	src := config.CategoryWeights
	if len(src) == 0 {
		src = DefaultCategoryWeights
	}
	for k, v := range src {
		weights[strings.ToLower(strings.TrimSpace(k))] = v
	}

	thresholds := config.BudgetThresholds
	if len(thresholds) == 0 {
		thresholds = DefaultBudgetThresholds
	}

	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	fallback, ok := domain.ParseBudgetTier(string(config.FallbackTier), domain.BudgetBalanced)
	if !ok {
		fallback = domain.BudgetBalanced
	}

	return &Scorer{
		weights:      weights,
		thresholds:   thresholds,
		maxResults:   maxResults,
		fallbackTier: fallback,
	}
}

// categoryWeight returns the multiplier for a category, 1.0 when unlisted
func (s *Scorer) categoryWeight(category string) float64 {
	if w, ok := s.weights[category]; ok && w > 0 {
		return w
	}
	return 1.0
}

// threshold returns the spend ceiling for a tier; unknown tiers use the fallback tier
func (s *Scorer) threshold(tier domain.BudgetTier) float64 {
	tier, _ = domain.ParseBudgetTier(string(tier), s.fallbackTier)
	if t, ok := s.thresholds[tier]; ok && t > 0 {
		return t
	}
	return math.Inf(1)
}

// Score computes one product's affinity score and rationale
func (s *Scorer) Score(product domain.Product, profile domain.PreferenceProfile, preferred []string) domain.Recommendation {
	score := product.RatingOrZero()
	var reasons []string

	category := normalizeCategory(product.Category)
	for _, c := range preferred {
		if normalizeCategory(c) == category {
			score += categoryMatchBonus * s.categoryWeight(category)
			reasons = append(reasons, fmt.Sprintf("Matches your %s category focus.", category))
			break
		}
	}

	if profile.EcoPriority && product.EcoFriendly {
		score += ecoBonus
		reasons = append(reasons, "Eco-friendly choice aligned with your values.")
	}

	if price, ok := product.DisplayPrice(); ok {
		if price <= s.threshold(profile.BudgetTier) {
			score += withinBudgetBonus
			reasons = append(reasons, "Fits within your budget comfort zone.")
		} else {
			score -= overBudgetPenalty
			reasons = append(reasons, "Premium pick that exceeds target spend but may offer long-term value.")
		}
	}

	rationale := fallbackRationale
	if len(reasons) > 0 {
		rationale = strings.Join(reasons, " ")
	}

	return domain.Recommendation{
		Product:   product,
		Score:     math.Round(score*100) / 100,
		Rationale: rationale,
	}
}

// Rank scores every candidate, keeps the best occurrence per product id,
// places the top product of each preferred category first (in preference
// order) and fills the rest by score, truncated to the configured size.
func (s *Scorer) Rank(products []domain.Product, profile domain.PreferenceProfile, preferred []string) []domain.Recommendation {
	return s.RankN(products, profile, preferred, s.maxResults)
}

// RankN is Rank with an explicit result limit
func (s *Scorer) RankN(products []domain.Product, profile domain.PreferenceProfile, preferred []string, limit int) []domain.Recommendation {
	if len(products) == 0 {
		return []domain.Recommendation{}
	}

	scored := make([]domain.Recommendation, 0, len(products))
	index := make(map[string]int, len(products))
	for _, p := range products {
		rec := s.Score(p, profile, preferred)
		if i, ok := index[p.ID]; ok {
			if rec.Score > scored[i].Score {
				scored[i] = rec
			}
			continue
		}
		index[p.ID] = len(scored)
		scored = append(scored, rec)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	ranked := make([]domain.Recommendation, 0, len(scored))
	picked := make([]bool, len(scored))
	seenCategory := make(map[string]bool, len(preferred))
	for _, c := range preferred {
		c = normalizeCategory(c)
		if c == "" || seenCategory[c] {
			continue
		}
		seenCategory[c] = true
		for i, rec := range scored {
			if !picked[i] && normalizeCategory(rec.Product.Category) == c {
				picked[i] = true
				ranked = append(ranked, rec)
				break
			}
		}
	}

	for i, rec := range scored {
		if !picked[i] {
			ranked = append(ranked, rec)
		}
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
