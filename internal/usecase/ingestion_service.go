package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/metrics"
	"github.com/nestlings/planner/internal/platform/logger"
)

const (
	defaultIngestConcurrency = 4
	maxIngestBatch           = 25
)

// ProductSaver persists a product and invalidates dependent caches
type ProductSaver interface {
	SaveProduct(ctx context.Context, product *domain.Product) error
}

// IngestionServiceConfig holds configuration for the ingestion service
type IngestionServiceConfig struct {
	Concurrency int
	Categories  []string
}

// IngestResult is the outcome of ingesting one source URL
type IngestResult struct {
	URL     string          `json:"url"`
	Product *domain.Product `json:"product,omitempty"`
	Error   string          `json:"error,omitempty"`

	Err error `json:"-"`
}

// IngestionService turns product source URLs into catalog rows
type IngestionService struct {
	fetcher     domain.SourceFetcher
	extractor   domain.ProductExtractor
	saver       ProductSaver
	matcher     *CategoryMatcher
	concurrency int
	log         *logger.Logger
}

// NewIngestionService creates an ingestion service. extractor may be nil,
// in which case every ingestion fails with ErrLLMUnavailable.
func NewIngestionService(
	fetcher domain.SourceFetcher,
	extractor domain.ProductExtractor,
	saver ProductSaver,
	config IngestionServiceConfig,
	baseLog *logger.Logger,
) *IngestionService {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = defaultIngestConcurrency
	}

	return &IngestionService{
		fetcher:     fetcher,
		extractor:   extractor,
		saver:       saver,
		matcher:     NewCategoryMatcher(CategoryMatchConfig{Categories: config.Categories}),
		concurrency: concurrency,
		log:         baseLog.With("service", "IngestionService"),
	}
}

// Ingest fetches a source page, extracts structured product data and saves it.
// Flow: validate url -> fetch page -> extract draft -> map -> file category -> save
func (s *IngestionService) Ingest(ctx context.Context, sourceURL string) (*domain.Product, error) {
	product, err := s.ingest(ctx, sourceURL)
	if err != nil {
		metrics.IngestionResults.WithLabelValues("error").Inc()
		s.log.Warn("ingestion failed", "url", sourceURL, "error", err)
		return nil, err
	}
	metrics.IngestionResults.WithLabelValues("success").Inc()
	s.log.Info("product ingested", "url", sourceURL, "productId", product.ID)
	return product, nil
}

func (s *IngestionService) ingest(ctx context.Context, sourceURL string) (*domain.Product, error) {
	if s.extractor == nil {
		return nil, domain.ErrLLMUnavailable
	}

	normalized, err := normalizeSourceURL(sourceURL)
	if err != nil {
		return nil, err
	}

	page, err := s.fetcher.Fetch(ctx, normalized)
	if err != nil {
		return nil, err
	}
	page.URL = normalized

	draft, err := s.extractor.ExtractProduct(ctx, page)
	if err != nil {
		return nil, err
	}

	product, err := DraftToProduct(draft, page)
	if err != nil {
		return nil, err
	}

	if category, confidence := s.matcher.Match(product.Category); category != product.Category {
		s.log.Debug("category refiled", "from", product.Category, "to", category, "confidence", confidence)
		product.Category = category
	}
	if len(product.Tags) == 0 {
		brand := ""
		if product.Brand != nil {
			brand = *product.Brand
		}
		product.Tags = ExtractKeywords(product.Name, brand)
	}

	if err := s.saver.SaveProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("save ingested product: %w", err)
	}
	return product, nil
}

// IngestBatch ingests several URLs concurrently and reports one result per
// URL in input order. Individual failures do not stop the batch.
func (s *IngestionService) IngestBatch(ctx context.Context, urls []string) ([]IngestResult, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no urls supplied", domain.ErrInvalidRequest)
	}
	if len(urls) > maxIngestBatch {
		return nil, fmt.Errorf("%w: at most %d urls per batch", domain.ErrInvalidRequest, maxIngestBatch)
	}
	if s.extractor == nil {
		return nil, domain.ErrLLMUnavailable
	}

	results := make([]IngestResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			results[i].URL = u
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			product, err := s.Ingest(gctx, u)
			if err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			results[i].Product = product
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func normalizeSourceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q is not an http(s) url", domain.ErrInvalidRequest, raw)
	}
	u.Fragment = ""
	return u.String(), nil
}

