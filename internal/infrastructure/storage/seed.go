package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/platform/logger"
)

// SeedMilestones is the default developmental timeline
var SeedMilestones = []domain.Milestone{
	{ID: "prenatal", Title: "Getting ready", Description: "Nursery setup and hospital bag", AgeMonths: 0, SortOrder: 0},
	{ID: "newborn", Title: "Newborn", Description: "The first weeks home", AgeMonths: 0, SortOrder: 1},
	{ID: "month3", Title: "Three months", Description: "Longer wake windows and tummy time", AgeMonths: 3, SortOrder: 2},
	{ID: "month6", Title: "Six months", Description: "Starting solids and sitting up", AgeMonths: 6, SortOrder: 3},
	{ID: "month9", Title: "Nine months", Description: "Crawling and babyproofing", AgeMonths: 9, SortOrder: 4},
	{ID: "month12", Title: "First birthday", Description: "First steps and toddler transitions", AgeMonths: 12, SortOrder: 5},
	{ID: "month18", Title: "Eighteen months", Description: "Walking, words and independence", AgeMonths: 18, SortOrder: 6},
	{ID: "month24", Title: "Two years", Description: "Toddler bed and potty learning", AgeMonths: 24, SortOrder: 7},
}

// SeedAICategories is the default curated topical tag set
var SeedAICategories = []domain.AICategory{
	{ID: "sleep-support", Name: "Sleep support"},
	{ID: "feeding-essentials", Name: "Feeding essentials"},
	{ID: "on-the-go", Name: "On the go"},
	{ID: "safety-first", Name: "Safety first"},
	{ID: "development-play", Name: "Development and play"},
	{ID: "sustainable-picks", Name: "Sustainable picks"},
}

func seedProducts() []domain.Product {
	str := func(s string) *string { return &s }
	cents := func(c int64) *int64 { return &c }
	rating := func(r float64) *float64 { return &r }
	months := func(m int) *int { return &m }

	return []domain.Product{
		{
			Name: "Organic Cotton Swaddle Set", Description: "Three breathable muslin swaddles",
			Category: "sleeping", Brand: str("Little Loom"), PriceCents: cents(3499), Currency: "USD",
			AgeMaxMonths: months(4), Tags: []string{"muslin", "organic"}, EcoFriendly: true,
			Rating: rating(4.7), ReviewCount: 812, InStock: true,
			SourceURL: str("https://example.com/products/organic-swaddle-set"),
			MilestoneIDs: []string{"prenatal", "newborn"}, AICategoryIDs: []string{"sleep-support", "sustainable-picks"},
		},
		{
			Name: "Smart Bassinet", Description: "Responsive bassinet with gentle motion",
			Category: "sleeping", Brand: str("Hushly"), PriceCents: cents(129900), Currency: "USD",
			AgeMaxMonths: months(6), Tags: []string{"bassinet"}, Premium: true,
			Rating: rating(4.5), ReviewCount: 2210, InStock: true,
			SourceURL: str("https://example.com/products/smart-bassinet"),
			MilestoneIDs: []string{"prenatal", "newborn", "month3"}, AICategoryIDs: []string{"sleep-support"},
		},
		{
			Name: "Wearable Breast Pump", Description: "Hands-free, quiet double pump",
			Category: "nursing", Brand: str("Flowmama"), PriceCents: cents(19900), Currency: "USD",
			Tags: []string{"pump"}, Rating: rating(4.2), ReviewCount: 640, InStock: true,
			SourceURL: str("https://example.com/products/wearable-pump"),
			MilestoneIDs: []string{"newborn", "month3"}, AICategoryIDs: []string{"feeding-essentials"},
		},
		{
			Name: "Silicone Feeding Set", Description: "Suction plate, bowl, spoon and bib",
			Category: "feeding", Brand: str("Tiny Table"), PriceCents: cents(3200), Currency: "USD",
			AgeMinMonths: months(6), Tags: []string{"silicone", "solids"}, EcoFriendly: true,
			Rating: rating(4.6), ReviewCount: 1290, InStock: true,
			SourceURL: str("https://example.com/products/silicone-feeding-set"),
			MilestoneIDs: []string{"month6", "month9"}, AICategoryIDs: []string{"feeding-essentials", "sustainable-picks"},
		},
		{
			Name: "Convertible Car Seat", Description: "Rear and forward facing, five-point harness",
			Category: "safety", Brand: str("RoadNest"), PriceCents: cents(27999), Currency: "USD",
			AgeMaxMonths: months(48), Tags: []string{"car seat"}, Rating: rating(4.8), ReviewCount: 3055, InStock: true,
			SourceURL: str("https://example.com/products/convertible-car-seat"),
			MilestoneIDs: []string{"prenatal", "newborn", "month12"}, AICategoryIDs: []string{"safety-first", "on-the-go"},
		},
		{
			Name: "Lightweight Travel Stroller", Description: "One-hand fold, cabin-size",
			Category: "travel", Brand: str("Wander Tot"), PriceCents: cents(24900), Currency: "USD",
			AgeMinMonths: months(6), AgeMaxMonths: months(48), Tags: []string{"stroller"},
			Rating: rating(4.4), ReviewCount: 978, InStock: true,
			SourceURL: str("https://example.com/products/travel-stroller"),
			MilestoneIDs: []string{"month6", "month12"}, AICategoryIDs: []string{"on-the-go"},
		},
		{
			Name: "Wooden Activity Cube", Description: "Bead maze, shape sorter and gears",
			Category: "play", Brand: str("Maple Kin"), PriceCents: cents(5900), Currency: "USD",
			AgeMinMonths: months(12), Tags: []string{"wooden", "montessori"}, EcoFriendly: true,
			Rating: rating(4.3), ReviewCount: 402, InStock: true,
			SourceURL: str("https://example.com/products/wooden-activity-cube"),
			MilestoneIDs: []string{"month12", "month18"}, AICategoryIDs: []string{"development-play", "sustainable-picks"},
		},
		{
			Name: "Stair Safety Gate", Description: "Hardware-mounted gate for top of stairs",
			Category: "safety", Brand: str("SafeStep"), PriceCents: cents(8900), Currency: "USD",
			Tags: []string{"gate"}, Rating: rating(4.1), ReviewCount: 520, InStock: false,
			SourceURL: str("https://example.com/products/stair-gate"),
			MilestoneIDs: []string{"month9"}, AICategoryIDs: []string{"safety-first"},
		},
	}
}

// Seed inserts the default milestones, AI categories and sample products.
// Running it again updates the same rows instead of duplicating them.
func Seed(ctx context.Context, db *gorm.DB, baseLog *logger.Logger) error {
	log := baseLog.With("component", "seed")
	tx := db.WithContext(ctx)

	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&SeedMilestones).Error; err != nil {
		return fmt.Errorf("seed milestones: %w", err)
	}
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&SeedAICategories).Error; err != nil {
		return fmt.Errorf("seed ai categories: %w", err)
	}

	repo := NewProductRepo(db, baseLog)
	products := seedProducts()
	for i := range products {
		if err := repo.Save(ctx, &products[i]); err != nil {
			return fmt.Errorf("seed product %q: %w", products[i].Name, err)
		}
	}

	log.Info("seed complete", "milestones", len(SeedMilestones), "aiCategories", len(SeedAICategories), "products", len(products))
	return nil
}
