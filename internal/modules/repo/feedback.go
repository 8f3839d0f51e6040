package repo

import (
	"context"

	"github.com/signoffhq/signoff/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedbackRepo interface {
	AddComment(ctx context.Context, c *model.Comment) error
	// SubmitFeedback appends c (when non-nil) and upserts a in one transaction.
	// On return a reflects the stored row.
	SubmitFeedback(ctx context.Context, c *model.Comment, a *model.Approval) error
}

type feedbackRepo struct{ db *gorm.DB }

func NewFeedbackRepo(db *gorm.DB) FeedbackRepo {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) AddComment(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *feedbackRepo) SubmitFeedback(ctx context.Context, c *model.Comment, a *model.Approval) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c != nil {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}

		if err := upsertApproval(tx, a).Error; err != nil {
			return err
		}

		return tx.Where("asset_id = ? AND stakeholder_id = ?", a.AssetID, a.StakeholderID).First(a).Error
	})
}

// upsertApproval keeps one row per (asset_id, stakeholder_id); a repeat
// submission replaces its disposition.
func upsertApproval(tx *gorm.DB, a *model.Approval) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}, {Name: "stakeholder_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "feedback", "approved_at", "updated_at"}),
	}).Create(a)
}
