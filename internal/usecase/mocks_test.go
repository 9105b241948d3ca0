package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nestlings/planner/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu            sync.Mutex
	data          map[string][]byte
	getError      error
	setError      error
	getCalls      int
	setCalls      int
	deletePrefixs []string
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePrefixs = append(m.deletePrefixs, prefix)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *MockCacheRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mu         sync.Mutex
	products   map[string]domain.Product
	page       *domain.ProductPage
	queryError error
	saveError  error
	queries    []domain.ProductQuery
	saved      []domain.Product
	deleted    []string
	reviews    []domain.Review
}

func NewMockProductRepository(products ...domain.Product) *MockProductRepository {
	m := &MockProductRepository{products: make(map[string]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProductRepository) Query(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if m.queryError != nil {
		return nil, m.queryError
	}
	if m.page != nil {
		return m.page, nil
	}
	page := &domain.ProductPage{Products: []domain.Product{}}
	for _, p := range m.products {
		page.Products = append(page.Products, p)
	}
	page.Pagination = domain.NewPagination(1, query.Limit, int64(len(page.Products)))
	return page, nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (m *MockProductRepository) Save(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	if err := product.Validate(); err != nil {
		return err
	}
	if product.ID == "" {
		product.ID = "generated-" + product.Name
	}
	m.products[product.ID] = *product
	m.saved = append(m.saved, *product)
	return nil
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.products, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *MockProductRepository) AddReview(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[review.ProductID]; !ok {
		return domain.ErrProductNotFound
	}
	m.reviews = append(m.reviews, *review)
	return nil
}

// MockHistoryRepository is a mock implementation of domain.HistoryRepository
type MockHistoryRepository struct {
	mu           sync.Mutex
	recordError  error
	records      map[string][]domain.Recommendation
	interactions []domain.Interaction
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{records: make(map[string][]domain.Recommendation)}
}

func (m *MockHistoryRepository) RecordRecommendations(ctx context.Context, userID, source string, recs []domain.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordError != nil {
		return m.recordError
	}
	m.records[userID+"/"+source] = append(m.records[userID+"/"+source], recs...)
	return nil
}

func (m *MockHistoryRepository) RecordInteraction(ctx context.Context, interaction *domain.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, *interaction)
	return nil
}

// MockMilestoneRepository is a mock implementation of domain.MilestoneRepository
type MockMilestoneRepository struct {
	milestones []domain.Milestone
}

func (m *MockMilestoneRepository) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	return m.milestones, nil
}

func (m *MockMilestoneRepository) GetMilestone(ctx context.Context, id string) (*domain.Milestone, error) {
	for _, ms := range m.milestones {
		if ms.ID == id {
			ms := ms
			return &ms, nil
		}
	}
	return nil, domain.ErrMilestoneNotFound
}

// MockSourceFetcher is a mock implementation of domain.SourceFetcher
type MockSourceFetcher struct {
	mu     sync.Mutex
	pages  map[string]*domain.SourcePage
	errors map[string]error
	calls  []string
}

func (m *MockSourceFetcher) Fetch(ctx context.Context, sourceURL string) (*domain.SourcePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, sourceURL)
	if err, ok := m.errors[sourceURL]; ok {
		return nil, err
	}
	if page, ok := m.pages[sourceURL]; ok {
		cp := *page
		return &cp, nil
	}
	return &domain.SourcePage{URL: sourceURL, Title: "Untitled"}, nil
}

// MockProductExtractor is a mock implementation of domain.ProductExtractor
type MockProductExtractor struct {
	draft func(page *domain.SourcePage) (*domain.ProductDraft, error)
}

func (m *MockProductExtractor) ExtractProduct(ctx context.Context, page *domain.SourcePage) (*domain.ProductDraft, error) {
	return m.draft(page)
}

// MockBundleCurator is a mock implementation of domain.BundleCurator
type MockBundleCurator struct {
	title      string
	summary    string
	picks      []domain.CuratedPick
	err        error
	candidates []domain.Product
}

func (m *MockBundleCurator) CurateBundle(ctx context.Context, milestone *domain.Milestone, profile domain.PreferenceProfile, candidates []domain.Product) (string, string, []domain.CuratedPick, error) {
	m.candidates = candidates
	if m.err != nil {
		return "", "", nil, m.err
	}
	return m.title, m.summary, m.picks, nil
}
