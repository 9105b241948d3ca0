// Package app wires configuration, storage, caches and services into a
// runnable application shared by the API server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nestlings/planner/config"
	httpDelivery "github.com/nestlings/planner/internal/delivery/http"
	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/infrastructure/cache"
	"github.com/nestlings/planner/internal/infrastructure/llm"
	"github.com/nestlings/planner/internal/infrastructure/scrape"
	"github.com/nestlings/planner/internal/infrastructure/storage"
	"github.com/nestlings/planner/internal/platform/auth"
	"github.com/nestlings/planner/internal/platform/logger"
	"github.com/nestlings/planner/internal/usecase"
)

// Repos are the gorm-backed stores
type Repos struct {
	Products   *storage.ProductRepo
	History    *storage.HistoryRepo
	Milestones *storage.MilestoneRepo
}

// Services are the usecases exposed over HTTP and the CLI
type Services struct {
	Catalog         *usecase.CatalogService
	Recommendations *usecase.RecommendationService
	Curation        *usecase.CurationService
	Ingestion       *usecase.IngestionService
}

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	DB       *gorm.DB
	Cache    domain.CacheRepository
	Repos    Repos
	Services Services
	Tokens   *auth.TokenManager

	closers []func() error
}

// New opens the database, optionally migrates it, and wires every service.
// The returned App must be closed.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg}

	db, err := storage.Open(storage.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		LogLevel:     cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(db); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	if err := a.wireCache(ctx); err != nil {
		a.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Tokens = tokens

	a.Repos = Repos{
		Products:   storage.NewProductRepo(db, log),
		History:    storage.NewHistoryRepo(db, log),
		Milestones: storage.NewMilestoneRepo(db, log),
	}
	a.wireServices()

	return a, nil
}

func (a *App) wireCache(ctx context.Context) error {
	switch a.Cfg.Cache.Type {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, a.Cfg.Cache.RedisURL, a.Cfg.Cache.Namespace)
		if err != nil {
			return fmt.Errorf("init redis cache: %w", err)
		}
		a.Cache = rc
		a.closers = append(a.closers, rc.Close)
	default:
		mc := cache.NewMemoryCache(a.Cfg.Cache.CleanupInterval)
		a.Cache = mc
		a.closers = append(a.closers, func() error {
			mc.Close()
			return nil
		})
	}
	a.Log.Info("cache ready", "type", a.Cfg.Cache.Type, "ttl", a.Cfg.Cache.TTL)
	return nil
}

func (a *App) wireServices() {
	cfg := a.Cfg

	scorer := usecase.NewScorer(ScorerConfig(cfg.Scoring))

	catalog := usecase.NewCatalogService(
		a.Repos.Products,
		a.Repos.History,
		a.Cache,
		usecase.CatalogServiceConfig{CacheTTL: cfg.Cache.TTL},
		a.Log,
	)

	// A typed nil client must not reach the interface parameters below
	var extractor domain.ProductExtractor
	var curator domain.BundleCurator
	client, err := llm.NewClient(llm.Config{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	}, a.Log)
	switch {
	case err == nil:
		extractor, curator = client, client
		a.Log.Info("LLM client configured", "baseUrl", cfg.LLM.BaseURL, "model", cfg.LLM.Model)
	case errors.Is(err, domain.ErrLLMUnavailable):
		a.Log.Warn("LLM API key not configured; ingestion and curated bundles are disabled")
	default:
		a.Log.Error("LLM client disabled", "error", err)
	}

	a.Services = Services{
		Catalog: catalog,
		Recommendations: usecase.NewRecommendationService(
			catalog, a.Repos.History, scorer, a.Log,
		),
		Curation: usecase.NewCurationService(
			catalog, a.Repos.Milestones, a.Repos.History, curator, scorer, a.Log,
		),
		Ingestion: usecase.NewIngestionService(
			scrape.NewFetcher(cfg.LLM.FetchTimeout, a.Log),
			extractor,
			catalog,
			usecase.IngestionServiceConfig{
				Concurrency: cfg.LLM.IngestConcurrency,
				Categories:  cfg.Scoring.Categories,
			},
			a.Log,
		),
	}
}

// ScorerConfig converts the scoring section into scorer configuration
func ScorerConfig(sc config.ScoringConfig) usecase.ScorerConfig {
	thresholds := make(map[domain.BudgetTier]float64, len(sc.BudgetThresholds))
	for tier, v := range sc.BudgetThresholds {
		if t, ok := domain.ParseBudgetTier(tier, ""); ok {
			thresholds[t] = v
		}
	}
	return usecase.ScorerConfig{
		CategoryWeights:  sc.CategoryWeights,
		BudgetThresholds: thresholds,
		MaxResults:       sc.MaxResults,
		FallbackTier:     domain.BudgetTier(sc.FallbackTier),
	}
}

// Router builds the HTTP router over the wired services
func (a *App) Router() *gin.Engine {
	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Catalog:         a.Services.Catalog,
		Recommendations: a.Services.Recommendations,
		Curation:        a.Services.Curation,
		Ingestion:       a.Services.Ingestion,
		Milestones:      a.Repos.Milestones,
		History:         a.Repos.History,
	}, a.Log)
	return httpDelivery.SetupRouter(a.Cfg, handler, a.Tokens, a.Log)
}

// Close releases the cache and database in reverse order of acquisition
func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Log.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil
}
