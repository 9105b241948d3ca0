package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/platform/logger"
)

// HistoryRepo persists served recommendations and product interactions
type HistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) *HistoryRepo {
	return &HistoryRepo{db: db, log: baseLog.With("repo", "HistoryRepo")}
}

func (r *HistoryRepo) RecordRecommendations(ctx context.Context, userID, source string, recs []domain.Recommendation) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if len(recs) == 0 {
		return nil
	}

	records := make([]domain.RecommendationRecord, 0, len(recs))
	for i, rec := range recs {
		records = append(records, domain.RecommendationRecord{
			UserID:    userID,
			ProductID: rec.Product.ID,
			Source:    source,
			Score:     rec.Score,
			Rationale: rec.Rationale,
			Position:  i + 1,
		})
	}

	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("record recommendations: %w", err)
	}
	return nil
}

func (r *HistoryRepo) RecordInteraction(ctx context.Context, interaction *domain.Interaction) error {
	if interaction.UserID == "" {
		return domain.ErrUnauthorized
	}
	if !interaction.Kind.Valid() {
		return fmt.Errorf("%w: unknown interaction kind %q", domain.ErrInvalidRequest, interaction.Kind)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		err := tx.Select("id").Where("id = ?", interaction.ProductID).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProductNotFound
		}
		if err != nil {
			return err
		}
		return tx.Create(interaction).Error
	})
}

// RecommendationsForUser returns the user's most recent recommendation lines, newest first
func (r *HistoryRepo) RecommendationsForUser(ctx context.Context, userID string, limit int) ([]domain.RecommendationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []domain.RecommendationRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("position ASC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
