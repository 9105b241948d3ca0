package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/metrics"
	"github.com/nestlings/planner/internal/platform/logger"
)

// maxCurationCandidates bounds how many pre-ranked products are sent to the curator
const maxCurationCandidates = 24

// CurateRequest asks for an LLM-curated bundle for one milestone
type CurateRequest struct {
	UserID              string                   `json:"-"`
	MilestoneID         string                   `json:"milestoneId"`
	Profile             domain.PreferenceProfile `json:"profile"`
	PreferredCategories []string                 `json:"preferredCategories"`
}

// CurationService builds milestone bundles with the help of a BundleCurator
type CurationService struct {
	catalog    ProductLister
	milestones domain.MilestoneRepository
	history    domain.HistoryRepository
	curator    domain.BundleCurator
	scorer     *Scorer
	log        *logger.Logger
}

// NewCurationService creates a curation service. curator may be nil, in
// which case CurateBundle fails with ErrLLMUnavailable.
func NewCurationService(
	catalog ProductLister,
	milestones domain.MilestoneRepository,
	history domain.HistoryRepository,
	curator domain.BundleCurator,
	scorer *Scorer,
	baseLog *logger.Logger,
) *CurationService {
	if scorer == nil {
		scorer = NewScorer(ScorerConfig{})
	}
	return &CurationService{
		catalog:    catalog,
		milestones: milestones,
		history:    history,
		curator:    curator,
		scorer:     scorer,
		log:        baseLog.With("service", "CurationService"),
	}
}

// CurateBundle pre-ranks the milestone's in-stock products with the scorer,
// lets the curator choose and explain a bundle, and drops any pick that
// does not name one of the candidates.
func (s *CurationService) CurateBundle(ctx context.Context, req CurateRequest) (*domain.CuratedBundle, error) {
	if s.curator == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(req.MilestoneID) == "" {
		return nil, fmt.Errorf("%w: milestoneId is required", domain.ErrInvalidRequest)
	}

	milestone, err := s.milestones.GetMilestone(ctx, req.MilestoneID)
	if err != nil {
		return nil, err
	}

	page, err := s.catalog.ListProducts(ctx, domain.ProductQuery{
		Filter:    domain.ProductFilter{MilestoneIDs: []string{milestone.ID}},
		Page:      1,
		Limit:     candidatePoolSize,
		SortBy:    domain.SortRating,
		SortOrder: "desc",
	})
	if err != nil {
		return nil, err
	}

	bundle := &domain.CuratedBundle{
		MilestoneID: milestone.ID,
		Title:       milestone.Title,
		Items:       []domain.Recommendation{},
	}
	if len(page.Products) == 0 {
		return bundle, nil
	}

	ranked := s.scorer.RankN(page.Products, req.Profile, req.PreferredCategories, maxCurationCandidates)

	candidates := make([]domain.Product, len(ranked))
	byID := make(map[string]domain.Recommendation, len(ranked))
	for i, rec := range ranked {
		candidates[i] = rec.Product
		byID[rec.Product.ID] = rec
	}

	title, summary, picks, err := s.curator.CurateBundle(ctx, milestone, req.Profile, candidates)
	if err != nil {
		return nil, err
	}

	if t := strings.TrimSpace(title); t != "" {
		bundle.Title = t
	}
	bundle.Summary = strings.TrimSpace(summary)

	seen := make(map[string]bool, len(picks))
	for _, pick := range picks {
		rec, ok := byID[pick.ProductID]
		if !ok || seen[pick.ProductID] {
			continue
		}
		seen[pick.ProductID] = true
		if reason := strings.TrimSpace(pick.Reason); reason != "" {
			rec.Rationale = reason
		}
		bundle.Items = append(bundle.Items, rec)
	}
	if dropped := len(picks) - len(bundle.Items); dropped > 0 {
		s.log.Debug("dropped curated picks", "milestoneId", milestone.ID, "dropped", dropped)
	}

	metrics.RecommendationsServed.WithLabelValues("curated").Inc()

	if req.UserID != "" && s.history != nil && len(bundle.Items) > 0 {
		if err := s.history.RecordRecommendations(ctx, req.UserID, "curated", bundle.Items); err != nil {
			s.log.Warn("failed to record curated history", "userId", req.UserID, "error", err)
		}
	}

	return bundle, nil
}
