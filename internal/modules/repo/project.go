package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	GetOwned(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) (*model.Project, error)
	GetAggregate(ctx context.Context, projectID uuid.UUID) (*model.Project, error)
	ListOwnedWithCursor(ctx context.Context, agencyID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Project, error)
	UpdateStatus(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, status model.ProjectStatus) error
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) GetOwned(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND agency_user_id = ?", projectID, agencyID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetAggregate(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	var p model.Project
	err := withAggregate(r.db.WithContext(ctx)).
		Where("id = ?", projectID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListOwnedWithCursor(ctx context.Context, agencyID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Project, error) {
	q := r.db.WithContext(ctx).Where("agency_user_id = ?", agencyID)

	// Newest first; the cursor points at the last project already returned
	if !afterCreatedAt.IsZero() && afterID != uuid.Nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", afterCreatedAt, afterCreatedAt, afterID)
	}

	var projects []*model.Project
	return projects, withAggregate(q).Order("created_at DESC, id DESC").Limit(limit).Find(&projects).Error
}

func (r *projectRepo) UpdateStatus(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, status model.ProjectStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND agency_user_id = ?", projectID, agencyID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// withAggregate preloads assets with their comment log and approvals,
// everything oldest first.
func withAggregate(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Assets", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Assets.Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Assets.Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		})
}
