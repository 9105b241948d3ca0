package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/goccy/go-json"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/metrics"
	"github.com/nestlings/planner/internal/platform/logger"
)

const (
	productCachePrefix = "products:"
	productListPrefix  = productCachePrefix + "list:"
	productItemPrefix  = productCachePrefix + "item:"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	CacheTTL time.Duration
}

// CatalogService fronts the product query engine with an optional cache
type CatalogService struct {
	products domain.ProductRepository
	history  domain.HistoryRepository
	cache    domain.CacheRepository
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewCatalogService creates a catalog service. cache may be nil.
func NewCatalogService(
	products domain.ProductRepository,
	history domain.HistoryRepository,
	cache domain.CacheRepository,
	config CatalogServiceConfig,
	baseLog *logger.Logger,
) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &CatalogService{
		products: products,
		history:  history,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      baseLog.With("service", "CatalogService"),
	}
}

// ListProducts runs the query engine, serving identical normalized queries from cache
func (s *CatalogService) ListProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	query = query.Normalize()
	key, err := listCacheKey(query)
	if err != nil {
		return nil, err
	}

	var cached domain.ProductPage
	if s.getFromCache(ctx, "products", key, &cached) {
		return &cached, nil
	}

	page, err := s.products.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	s.setInCache(ctx, key, page)
	return page, nil
}

// GetProduct loads one product with its related aggregates
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	key := productItemPrefix + id
	var cached domain.Product
	if s.getFromCache(ctx, "product", key, &cached) {
		return &cached, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.setInCache(ctx, key, product)
	return product, nil
}

// SaveProduct stores a product and invalidates cached catalog reads
func (s *CatalogService) SaveProduct(ctx context.Context, product *domain.Product) error {
	if err := s.products.Save(ctx, product); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteProduct removes a product and its dependent rows
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// AddReview stores a review from an authenticated caller
func (s *CatalogService) AddReview(ctx context.Context, review *domain.Review) error {
	if review.UserID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.products.AddReview(ctx, review); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// RecordInteraction stores a view, save, click or purchase event
func (s *CatalogService) RecordInteraction(ctx context.Context, interaction *domain.Interaction) error {
	return s.history.RecordInteraction(ctx, interaction)
}

// listCacheKey hashes the normalized query so equal requests share an entry.
// Format: "products:list:{sha256(json(query))}"
func listCacheKey(query domain.ProductQuery) (string, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return productListPrefix + hex.EncodeToString(sum[:]), nil
}

// getFromCache decodes a cached value into dst, reporting whether it was a hit
func (s *CatalogService) getFromCache(ctx context.Context, namespace, key string, dst any) bool {
	if s.cache == nil {
		return false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.log.Warn("cache read failed", "key", key, "error", err)
		}
		metrics.RecordCacheLookup(namespace, false)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn("discarding undecodable cache entry", "key", key, "error", err)
		_ = s.cache.Delete(ctx, key)
		metrics.RecordCacheLookup(namespace, false)
		return false
	}

	metrics.RecordCacheLookup(namespace, true)
	return true
}

func (s *CatalogService) setInCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, productCachePrefix); err != nil {
		s.log.Warn("cache invalidation failed", "prefix", productCachePrefix, "error", err)
	}
}
