package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"gorm.io/gorm"
)

type StakeholderRepo interface {
	Create(ctx context.Context, s *model.Stakeholder) error
	Get(ctx context.Context, stakeholderID uuid.UUID) (*model.Stakeholder, error)
	GetByProjectAndToken(ctx context.Context, projectID uuid.UUID, tokenHMAC string) (*model.Stakeholder, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Stakeholder, error)
}

type stakeholderRepo struct{ db *gorm.DB }

func NewStakeholderRepo(db *gorm.DB) StakeholderRepo {
	return &stakeholderRepo{db: db}
}

func (r *stakeholderRepo) Create(ctx context.Context, s *model.Stakeholder) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *stakeholderRepo) Get(ctx context.Context, stakeholderID uuid.UUID) (*model.Stakeholder, error) {
	var s model.Stakeholder
	if err := r.db.WithContext(ctx).Where("id = ?", stakeholderID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stakeholderRepo) GetByProjectAndToken(ctx context.Context, projectID uuid.UUID, tokenHMAC string) (*model.Stakeholder, error) {
	var s model.Stakeholder
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND access_token_hmac = ?", projectID, tokenHMAC).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stakeholderRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Stakeholder, error) {
	var out []*model.Stakeholder
	return out, r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
}
