package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/platform/logger"
)

func TestMilestoneRepo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewMilestoneRepo(db, logger.Nop())

	empty, err := repo.ListMilestones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Milestone{}, empty)

	require.NoError(t, Seed(ctx, db, logger.Nop()))

	list, err := repo.ListMilestones(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(SeedMilestones))
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].SortOrder, list[i].SortOrder)
	}

	m, err := repo.GetMilestone(ctx, "month6")
	require.NoError(t, err)
	assert.Equal(t, 6, m.AgeMonths)

	_, err = repo.GetMilestone(ctx, "month99")
	assert.ErrorIs(t, err, domain.ErrMilestoneNotFound)
}

func TestSeed_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, Seed(ctx, db, logger.Nop()))
	require.NoError(t, Seed(ctx, db, logger.Nop()))

	var products, milestones, categories int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&products).Error)
	require.NoError(t, db.Model(&domain.Milestone{}).Count(&milestones).Error)
	require.NoError(t, db.Model(&domain.AICategory{}).Count(&categories).Error)

	assert.Equal(t, int64(len(seedProducts())), products)
	assert.Equal(t, int64(len(SeedMilestones)), milestones)
	assert.Equal(t, int64(len(SeedAICategories)), categories)

	repo := NewProductRepo(db, logger.Nop())
	page, err := repo.Query(ctx, domain.ProductQuery{Filter: domain.ProductFilter{MilestoneIDs: []string{"newborn"}}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Pagination.Total)
}
