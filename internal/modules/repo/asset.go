package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"gorm.io/gorm"
)

type AssetRepo interface {
	Create(ctx context.Context, a *model.Asset) error
	Get(ctx context.Context, assetID uuid.UUID) (*model.Asset, error)
}

type assetRepo struct{ db *gorm.DB }

func NewAssetRepo(db *gorm.DB) AssetRepo {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assetRepo) Get(ctx context.Context, assetID uuid.UUID) (*model.Asset, error) {
	var a model.Asset
	if err := r.db.WithContext(ctx).Where("id = ?", assetID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
