package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/metrics"
	"github.com/nestlings/planner/internal/platform/logger"
)

// ProductRepo is the gorm-backed catalog store and product query engine
type ProductRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) *ProductRepo {
	return &ProductRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

// Query returns one page of products matching every supplied filter, plus
// the pre-pagination total. Pagination and sort directives are normalized
// first; an absent in-stock filter hides out-of-stock products.
func (r *ProductRepo) Query(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	defer metrics.ObserveSince(metrics.ProductQueryDuration, time.Now())

	q := query.Normalize()
	db := r.db.WithContext(ctx)

	var total int64
	if err := r.applyFilter(db.Model(&domain.Product{}), q.Filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	products := []domain.Product{}
	if total > int64(q.Offset()) {
		err := r.applyFilter(db.Model(&domain.Product{}), q.Filter).
			Order(orderBy(q.SortBy, q.SortOrder)).
			Offset(q.Offset()).
			Limit(q.Limit).
			Find(&products).Error
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
	}

	if err := r.hydrate(ctx, products, q.IncludeAICategories, q.IncludeReviews); err != nil {
		return nil, err
	}

	return &domain.ProductPage{
		Products:   products,
		Pagination: domain.NewPagination(q.Page, q.Limit, total),
	}, nil
}

// applyFilter adds one AND-ed predicate per supplied filter field
func (r *ProductRepo) applyFilter(tx *gorm.DB, f domain.ProductFilter) *gorm.DB {
	if len(f.Categories) > 0 {
		tx = tx.Where("category IN ?", f.Categories)
	}

	if len(f.MilestoneIDs) > 0 {
		sub := r.db.Model(&domain.ProductMilestone{}).
			Select("product_id").
			Where("milestone_id IN ?", f.MilestoneIDs)
		tx = tx.Where("id IN (?)", sub)
	}

	if f.AgeMonths != nil {
		tx = tx.Where("(age_min_months IS NULL OR age_min_months <= ?) AND (age_max_months IS NULL OR age_max_months >= ?)",
			*f.AgeMonths, *f.AgeMonths)
	}

	if f.MinPrice != nil {
		tx = tx.Where("price_cents >= ?", toCents(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price_cents <= ?", toCents(*f.MaxPrice))
	}

	if f.MinRating != nil {
		tx = tx.Where("COALESCE(rating, 0) >= ?", *f.MinRating)
	}

	if f.BudgetTier != nil {
		if premium, ok := domain.PremiumOnlyForBudget(strings.ToLower(strings.TrimSpace(*f.BudgetTier))); ok {
			tx = tx.Where("premium = ?", premium)
		}
	}

	if f.EcoFriendly != nil {
		tx = tx.Where("eco_friendly = ?", *f.EcoFriendly)
	}
	if f.Premium != nil {
		tx = tx.Where("premium = ?", *f.Premium)
	}

	inStock := true
	if f.InStock != nil {
		inStock = *f.InStock
	}
	tx = tx.Where("in_stock = ?", inStock)

	if f.Search != nil {
		if term := strings.ToLower(strings.TrimSpace(*f.Search)); term != "" {
			pattern := "%" + escapeLike(term) + "%"
			tx = tx.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(COALESCE(brand, '')) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern)
		}
	}

	return tx
}

// orderBy sorts on an allow-listed column with unknown values last on every
// backend, then by id so equal keys page deterministically
func orderBy(column, order string) clause.OrderBy {
	dir := "ASC"
	if order == "desc" {
		dir = "DESC"
	}
	return clause.OrderBy{Expression: clause.Expr{
		SQL:  "? " + dir + " NULLS LAST, ? ASC",
		Vars: []interface{}{clause.Column{Name: column}, clause.Column{Name: "id"}},
	}}
}

func toCents(units float64) int64 {
	return int64(math.Round(units * 100))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// hydrate attaches milestone ids and, on request, AI category ids and reviews
func (r *ProductRepo) hydrate(ctx context.Context, products []domain.Product, withAICategories, withReviews bool) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].MilestoneIDs = []string{}
	}

	db := r.db.WithContext(ctx)

	var links []domain.ProductMilestone
	if err := db.Where("product_id IN ?", ids).Order("milestone_id").Find(&links).Error; err != nil {
		return fmt.Errorf("load product milestones: %w", err)
	}
	for _, l := range links {
		p := &products[index[l.ProductID]]
		p.MilestoneIDs = append(p.MilestoneIDs, l.MilestoneID)
	}

	if withAICategories {
		var cats []domain.ProductAICategory
		if err := db.Where("product_id IN ?", ids).Order("ai_category_id").Find(&cats).Error; err != nil {
			return fmt.Errorf("load product ai categories: %w", err)
		}
		seen := make(map[string]map[string]bool, len(products))
		for i := range products {
			products[i].AICategoryIDs = []string{}
		}
		for _, c := range cats {
			if seen[c.ProductID] == nil {
				seen[c.ProductID] = make(map[string]bool)
			}
			if seen[c.ProductID][c.AICategoryID] {
				continue
			}
			seen[c.ProductID][c.AICategoryID] = true
			p := &products[index[c.ProductID]]
			p.AICategoryIDs = append(p.AICategoryIDs, c.AICategoryID)
		}
	}

	if withReviews {
		var reviews []domain.Review
		if err := db.Where("product_id IN ?", ids).Order("created_at DESC").Find(&reviews).Error; err != nil {
			return fmt.Errorf("load reviews: %w", err)
		}
		for i := range products {
			products[i].Reviews = []domain.Review{}
		}
		for _, rv := range reviews {
			p := &products[index[rv.ProductID]]
			p.Reviews = append(p.Reviews, rv)
		}
	}

	return nil
}

// GetByID loads one product with its milestone ids, AI category ids and reviews
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	products := []domain.Product{product}
	if err := r.hydrate(ctx, products, true, true); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// Save validates and stores a product. A product whose source URL is
// already cataloged updates that row (re-ingestion). Milestone and AI
// category links are replaced when the corresponding slice is non-nil.
func (r *ProductRepo) Save(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findExisting(tx, product)
		if err != nil {
			return err
		}

		if existing != nil {
			product.ID = existing.ID
			product.CreatedAt = existing.CreatedAt
			if err := tx.Save(product).Error; err != nil {
				return fmt.Errorf("update product: %w", err)
			}
		} else if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		if product.MilestoneIDs != nil {
			product.MilestoneIDs = dedupe(product.MilestoneIDs)
			if err := tx.Where("product_id = ?", product.ID).Delete(&domain.ProductMilestone{}).Error; err != nil {
				return err
			}
			if len(product.MilestoneIDs) > 0 {
				links := make([]domain.ProductMilestone, 0, len(product.MilestoneIDs))
				for _, m := range product.MilestoneIDs {
					links = append(links, domain.ProductMilestone{ProductID: product.ID, MilestoneID: m})
				}
				if err := tx.Create(&links).Error; err != nil {
					return fmt.Errorf("link milestones: %w", err)
				}
			}
		}

		if product.AICategoryIDs != nil {
			product.AICategoryIDs = dedupe(product.AICategoryIDs)
			if err := tx.Where("product_id = ?", product.ID).Delete(&domain.ProductAICategory{}).Error; err != nil {
				return err
			}
			if len(product.AICategoryIDs) > 0 {
				links := make([]domain.ProductAICategory, 0, len(product.AICategoryIDs))
				for _, c := range product.AICategoryIDs {
					links = append(links, domain.ProductAICategory{ProductID: product.ID, AICategoryID: c})
				}
				if err := tx.Create(&links).Error; err != nil {
					return fmt.Errorf("link ai categories: %w", err)
				}
			}
		}

		return nil
	})
}

func findExisting(tx *gorm.DB, product *domain.Product) (*domain.Product, error) {
	var existing domain.Product
	var err error
	switch {
	case product.ID != "":
		err = tx.Where("id = ?", product.ID).First(&existing).Error
	case product.SourceURL != nil && *product.SourceURL != "":
		err = tx.Where("source_url = ?", *product.SourceURL).First(&existing).Error
	default:
		return nil, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// Delete removes a product together with its AI category links, reviews,
// recommendation history, interaction history and milestone links in one
// transaction. A missing id yields ErrProductNotFound and touches nothing.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrProductNotFound
		}

		dependents := []interface{}{
			&domain.ProductAICategory{},
			&domain.Review{},
			&domain.RecommendationRecord{},
			&domain.Interaction{},
			&domain.ProductMilestone{},
		}
		for _, model := range dependents {
			if err := tx.Where("product_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T rows: %w", model, err)
			}
		}

		res := tx.Where("id = ?", id).Delete(&domain.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrProductNotFound
		}

		r.log.Info("product deleted", "productId", id)
		return nil
	})
}

// AddReview stores a review and folds it into the product's rating and review count
func (r *ProductRepo) AddReview(ctx context.Context, review *domain.Review) error {
	if review.Rating < 0 || review.Rating > 5 {
		return fmt.Errorf("%w: review rating %.2f outside [0, 5]", domain.ErrInvalidRequest, review.Rating)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		err := tx.Where("id = ?", review.ProductID).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProductNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("create review: %w", err)
		}

		count := product.ReviewCount + 1
		rating := (product.RatingOrZero()*float64(product.ReviewCount) + review.Rating) / float64(count)
		return tx.Model(&domain.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]any{
				"review_count": count,
				"rating":       math.Round(rating*100) / 100,
			}).Error
	})
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
