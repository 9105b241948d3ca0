package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/platform/logger"
)

type MilestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) *MilestoneRepo {
	return &MilestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

func (r *MilestoneRepo) ListMilestones(ctx context.Context) ([]domain.Milestone, error) {
	milestones := []domain.Milestone{}
	err := r.db.WithContext(ctx).Order("sort_order ASC").Order("id ASC").Find(&milestones).Error
	return milestones, err
}

func (r *MilestoneRepo) GetMilestone(ctx context.Context, id string) (*domain.Milestone, error) {
	var m domain.Milestone
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMilestoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
