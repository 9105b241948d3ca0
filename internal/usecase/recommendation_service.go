package usecase

import (
	"context"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/metrics"
	"github.com/nestlings/planner/internal/platform/logger"
)

// candidatePoolSize is how many query results the scorer considers
const candidatePoolSize = domain.MaxLimit

// ProductLister runs the product query engine
type ProductLister interface {
	ListProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error)
}

// RecommendRequest is a rule-based recommendation request
type RecommendRequest struct {
	UserID              string                   `json:"-"`
	Profile             domain.PreferenceProfile `json:"profile"`
	PreferredCategories []string                 `json:"preferredCategories"`
	Filter              domain.ProductFilter     `json:"filters"`
}

// RecommendationService combines the query engine with the scorer
type RecommendationService struct {
	catalog ProductLister
	history domain.HistoryRepository
	scorer  *Scorer
	log     *logger.Logger
}

func NewRecommendationService(
	catalog ProductLister,
	history domain.HistoryRepository,
	scorer *Scorer,
	baseLog *logger.Logger,
) *RecommendationService {
	return &RecommendationService{
		catalog: catalog,
		history: history,
		scorer:  scorer,
		log:     baseLog.With("service", "RecommendationService"),
	}
}

// Recommend ranks the first page of matching candidates for the profile.
// Served lists are recorded for identified callers; a history failure is
// logged and does not fail the request.
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendRequest) ([]domain.Recommendation, error) {
	query := domain.ProductQuery{
		Filter:    req.Filter,
		Page:      1,
		Limit:     candidatePoolSize,
		SortBy:    domain.SortRating,
		SortOrder: "desc",
	}

	page, err := s.catalog.ListProducts(ctx, query)
	if err != nil {
		return nil, err
	}

	recs := s.scorer.Rank(page.Products, req.Profile, req.PreferredCategories)
	metrics.RecommendationsServed.WithLabelValues("rules").Inc()

	if req.UserID != "" && s.history != nil && len(recs) > 0 {
		if err := s.history.RecordRecommendations(ctx, req.UserID, "rules", recs); err != nil {
			s.log.Warn("failed to record recommendation history", "userId", req.UserID, "error", err)
		}
	}

	return recs, nil
}
