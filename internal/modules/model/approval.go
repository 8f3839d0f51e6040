package model

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	// ApprovalStatusPending is implicit: it is what a reviewer without a row sees.
	ApprovalStatusPending   ApprovalStatus = "pending"
	ApprovalStatusApproved  ApprovalStatus = "approved"
	ApprovalStatusCommented ApprovalStatus = "commented"
	ApprovalStatusRejected  ApprovalStatus = "rejected"
)

// Submittable reports whether a reviewer may move an approval into s.
func (s ApprovalStatus) Submittable() bool {
	switch s {
	case ApprovalStatusApproved, ApprovalStatusCommented, ApprovalStatusRejected:
		return true
	}
	return false
}

// Approval holds one reviewer's current disposition on one asset.
// (asset_id, stakeholder_id) is unique; writes replace the row.
type Approval struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssetID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:u_asset_stakeholder,priority:1" json:"asset_id"`
	StakeholderID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:u_asset_stakeholder,priority:2;index" json:"stakeholder_id"`
	Status        ApprovalStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	Feedback      *string        `gorm:"type:text" json:"feedback"`
	ApprovedAt    *time.Time     `json:"approved_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Approval <-> Asset
	Asset *Asset `gorm:"foreignKey:AssetID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Approval <-> Stakeholder
	Stakeholder *Stakeholder `gorm:"foreignKey:StakeholderID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Approval) TableName() string { return "approvals" }

// Apply moves the approval into status at time now. approved_at is stamped
// only when entering approved and cleared for every other status.
func (a *Approval) Apply(status ApprovalStatus, feedback string, now time.Time) {
	a.Status = status
	a.Feedback = nil
	if feedback != "" {
		f := feedback
		a.Feedback = &f
	}
	a.ApprovedAt = nil
	if status == ApprovalStatusApproved {
		t := now
		a.ApprovedAt = &t
	}
	a.UpdatedAt = now
}
