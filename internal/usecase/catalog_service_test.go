package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/platform/logger"
)

func newCatalog(repo *MockProductRepository, cache domain.CacheRepository) (*CatalogService, *MockHistoryRepository) {
	history := NewMockHistoryRepository()
	return NewCatalogService(repo, history, cache, CatalogServiceConfig{CacheTTL: time.Minute}, logger.Nop()), history
}

func TestNewCatalogService_DefaultTTL(t *testing.T) {
	svc := NewCatalogService(NewMockProductRepository(), nil, nil, CatalogServiceConfig{}, logger.Nop())
	assert.Equal(t, 5*time.Minute, svc.cacheTTL)
}

func TestCatalogService_ListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes before querying", func(t *testing.T) {
		repo := NewMockProductRepository(product("a", "play", 4, nil))
		svc, _ := newCatalog(repo, nil)

		_, err := svc.ListProducts(ctx, domain.ProductQuery{Page: -1, Limit: 500, SortBy: "bogus"})
		require.NoError(t, err)

		require.Len(t, repo.queries, 1)
		assert.Equal(t, 1, repo.queries[0].Page)
		assert.Equal(t, 100, repo.queries[0].Limit)
		assert.Equal(t, domain.SortCreatedAt, repo.queries[0].SortBy)
		assert.Equal(t, "desc", repo.queries[0].SortOrder)
	})

	t.Run("serves equal queries from cache", func(t *testing.T) {
		repo := NewMockProductRepository(product("a", "play", 4, nil))
		cache := NewMockCacheRepository()
		svc, _ := newCatalog(repo, cache)

		first, err := svc.ListProducts(ctx, domain.ProductQuery{Limit: 10})
		require.NoError(t, err)
		second, err := svc.ListProducts(ctx, domain.ProductQuery{Limit: 10, Page: 1, SortOrder: "desc"})
		require.NoError(t, err)

		assert.Len(t, repo.queries, 1, "second call should hit cache")
		assert.Equal(t, first.Pagination, second.Pagination)
		require.Len(t, second.Products, 1)
		assert.Equal(t, "a", second.Products[0].ID)

		for key := range cache.data {
			assert.True(t, strings.HasPrefix(key, "products:list:"), key)
		}
	})

	t.Run("different filters use different keys", func(t *testing.T) {
		repo := NewMockProductRepository()
		cache := NewMockCacheRepository()
		svc, _ := newCatalog(repo, cache)

		_, _ = svc.ListProducts(ctx, domain.ProductQuery{Filter: domain.ProductFilter{Categories: []string{"play"}}})
		_, _ = svc.ListProducts(ctx, domain.ProductQuery{Filter: domain.ProductFilter{Categories: []string{"feeding"}}})

		assert.Len(t, repo.queries, 2)
		assert.Len(t, cache.data, 2)
	})

	t.Run("cache failures are bypassed", func(t *testing.T) {
		repo := NewMockProductRepository(product("a", "play", 4, nil))
		cache := NewMockCacheRepository()
		cache.getError = errors.New("redis down")
		cache.setError = errors.New("redis down")
		svc, _ := newCatalog(repo, cache)

		page, err := svc.ListProducts(ctx, domain.ProductQuery{})
		require.NoError(t, err)
		assert.Len(t, page.Products, 1)
	})

	t.Run("undecodable entries are discarded", func(t *testing.T) {
		repo := NewMockProductRepository()
		cache := NewMockCacheRepository()
		svc, _ := newCatalog(repo, cache)

		key, err := listCacheKey(domain.ProductQuery{}.Normalize())
		require.NoError(t, err)
		cache.data[key] = []byte("not json")

		_, err = svc.ListProducts(ctx, domain.ProductQuery{})
		require.NoError(t, err)
		assert.Len(t, repo.queries, 1)
	})

	t.Run("storage errors propagate", func(t *testing.T) {
		repo := NewMockProductRepository()
		repo.queryError = errors.New("connection reset")
		svc, _ := newCatalog(repo, NewMockCacheRepository())

		_, err := svc.ListProducts(ctx, domain.ProductQuery{})
		assert.EqualError(t, err, "connection reset")
	})
}

func TestCatalogService_GetProduct(t *testing.T) {
	ctx := context.Background()
	repo := NewMockProductRepository(product("a", "play", 4, nil))
	cache := NewMockCacheRepository()
	svc, _ := newCatalog(repo, cache)

	got, err := svc.GetProduct(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Contains(t, cache.data, "products:item:a")

	_, err = svc.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.GetProduct(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestCatalogService_WritesInvalidateCache(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		write func(svc *CatalogService) error
	}{
		{
			name: "save",
			write: func(svc *CatalogService) error {
				return svc.SaveProduct(ctx, &domain.Product{Name: "New", Category: "play", InStock: true})
			},
		},
		{
			name:  "delete",
			write: func(svc *CatalogService) error { return svc.DeleteProduct(ctx, "a") },
		},
		{
			name: "review",
			write: func(svc *CatalogService) error {
				return svc.AddReview(ctx, &domain.Review{ProductID: "a", UserID: "u1", Rating: 5})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockProductRepository(product("a", "play", 4, nil))
			cache := NewMockCacheRepository()
			svc, _ := newCatalog(repo, cache)

			_, err := svc.ListProducts(ctx, domain.ProductQuery{})
			require.NoError(t, err)
			_ = cache.Set(ctx, "milestones:all", []byte("[]"), time.Minute)

			require.NoError(t, tt.write(svc))

			assert.Equal(t, []string{"products:"}, cache.deletePrefixs)
			assert.Len(t, cache.data, 1, "only non-product keys survive")
		})
	}
}

func TestCatalogService_WriteErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewMockProductRepository()
	cache := NewMockCacheRepository()
	svc, history := newCatalog(repo, cache)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, "missing"), domain.ErrProductNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, ""), domain.ErrInvalidRequest)
	assert.ErrorIs(t, svc.AddReview(ctx, &domain.Review{ProductID: "a", Rating: 4}), domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.SaveProduct(ctx, &domain.Product{Category: "play"}), domain.ErrInvalidProduct)
	assert.Empty(t, cache.deletePrefixs, "failed writes do not invalidate")

	require.NoError(t, svc.RecordInteraction(ctx, &domain.Interaction{UserID: "u1", ProductID: "a", Kind: domain.InteractionView}))
	assert.Len(t, history.interactions, 1)
}
