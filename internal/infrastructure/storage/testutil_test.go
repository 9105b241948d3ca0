package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/platform/logger"
)

// newTestDB opens an isolated in-memory sqlite database with the schema applied
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(Options{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func ptr[T any](v T) *T { return &v }

type productOpt func(*domain.Product)

func withPrice(units float64) productOpt {
	return func(p *domain.Product) { p.PriceCents = ptr(toCents(units)) }
}

func withRating(r float64) productOpt {
	return func(p *domain.Product) { p.Rating = &r }
}

func withAges(min, max *int) productOpt {
	return func(p *domain.Product) { p.AgeMinMonths, p.AgeMaxMonths = min, max }
}

func outOfStock() productOpt {
	return func(p *domain.Product) { p.InStock = false }
}

func premium() productOpt {
	return func(p *domain.Product) { p.Premium = true }
}

func eco() productOpt {
	return func(p *domain.Product) { p.EcoFriendly = true }
}

func withBrand(b string) productOpt {
	return func(p *domain.Product) { p.Brand = &b }
}

func withMilestones(ids ...string) productOpt {
	return func(p *domain.Product) { p.MilestoneIDs = ids }
}

func withAICategories(ids ...string) productOpt {
	return func(p *domain.Product) { p.AICategoryIDs = ids }
}

func seedProduct(t *testing.T, repo *ProductRepo, name, category string, opts ...productOpt) domain.Product {
	t.Helper()
	p := domain.Product{
		Name:        name,
		Description: name + " description",
		Category:    category,
		Currency:    "USD",
		InStock:     true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	require.NoError(t, repo.Save(context.Background(), &p))
	return p
}

func newRepos(t *testing.T) (*gorm.DB, *ProductRepo) {
	t.Helper()
	db := newTestDB(t)
	return db, NewProductRepo(db, logger.Nop())
}

func productNames(products []domain.Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}
