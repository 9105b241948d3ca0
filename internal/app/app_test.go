package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestlings/planner/config"
	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/infrastructure/storage"
	"github.com/nestlings/planner/internal/platform/logger"
	"github.com/nestlings/planner/internal/usecase"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Environment: "test", AllowedOrigins: []string{"http://localhost:*"}},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			MaxOpenConns: 1,
			LogLevel:     "silent",
			AutoMigrate:  true,
		},
		Cache:     config.CacheConfig{Type: "memory", TTL: time.Minute},
		RateLimit: config.RateLimitConfig{PerIP: 600, Burst: 100},
		Auth:      config.AuthConfig{JWTSecret: "test-secret", Issuer: "nestlings"},
		Scoring: config.ScoringConfig{
			BudgetThresholds: map[string]float64{"essentials": 100, "balanced": 200},
			FallbackTier:     "balanced",
		},
	}
}

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	application, err := New(ctx, testConfig(), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(application.Close)

	require.NotNil(t, application.Services.Catalog)
	require.NotNil(t, application.Services.Ingestion)
	require.NotNil(t, application.Tokens)

	t.Run("migrated and serving the catalog", func(t *testing.T) {
		require.NoError(t, storage.Seed(ctx, application.DB, logger.Nop()))

		page, err := application.Services.Catalog.ListProducts(ctx, domain.ProductQuery{})
		require.NoError(t, err)
		assert.NotEmpty(t, page.Products)
	})

	t.Run("router answers health checks", func(t *testing.T) {
		w := httptest.NewRecorder()
		application.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "nestlings-planner", body["service"])
	})

	t.Run("issued tokens authenticate", func(t *testing.T) {
		token, err := application.Tokens.Issue("user-7", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/recommendations/history", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		application.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("curation is unavailable without an LLM key", func(t *testing.T) {
		_, err := application.Services.Curation.CurateBundle(ctx, usecase.CurateRequest{MilestoneID: "newborn"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestNew_MissingSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = ""

	_, err := New(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestNew_BadDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "oracle"

	_, err := New(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestScorerConfig(t *testing.T) {
	sc := ScorerConfig(config.ScoringConfig{
		CategoryWeights:  map[string]float64{"nursing": 1.3},
		BudgetThresholds: map[string]float64{"Essentials": 90, "balanced": 180, "lavish": 999},
		MaxResults:       5,
		FallbackTier:     "essentials",
	})

	assert.Equal(t, map[domain.BudgetTier]float64{
		domain.BudgetEssentials: 90,
		domain.BudgetBalanced:   180,
	}, sc.BudgetThresholds)
	assert.Equal(t, 1.3, sc.CategoryWeights["nursing"])
	assert.Equal(t, 5, sc.MaxResults)
	assert.Equal(t, domain.BudgetEssentials, sc.FallbackTier)
}

func TestClose_NilSafe(t *testing.T) {
	var a *App
	assert.NotPanics(t, a.Close)
}
