package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Expired entries behave exactly like absent ones.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductRepository defines catalog persistence, including the query engine
type ProductRepository interface {
	Query(ctx context.Context, query ProductQuery) (*ProductPage, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error
	AddReview(ctx context.Context, review *Review) error
}

// HistoryRepository persists recommendation and interaction history
type HistoryRepository interface {
	RecordRecommendations(ctx context.Context, userID, source string, recs []Recommendation) error
	RecordInteraction(ctx context.Context, interaction *Interaction) error
}

// MilestoneRepository lists the developmental milestone timeline
type MilestoneRepository interface {
	ListMilestones(ctx context.Context) ([]Milestone, error)
	GetMilestone(ctx context.Context, id string) (*Milestone, error)
}

// SourceFetcher retrieves and reduces a product page for extraction
type SourceFetcher interface {
	Fetch(ctx context.Context, sourceURL string) (*SourcePage, error)
}

// ProductExtractor turns a fetched source page into structured product data
type ProductExtractor interface {
	ExtractProduct(ctx context.Context, page *SourcePage) (*ProductDraft, error)
}

// BundleCurator selects a milestone-specific bundle from candidate products
type BundleCurator interface {
	CurateBundle(ctx context.Context, milestone *Milestone, profile PreferenceProfile, candidates []Product) (title, summary string, picks []CuratedPick, err error)
}
