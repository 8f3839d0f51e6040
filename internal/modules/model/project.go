package model

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusSetup      ProjectStatus = "setup"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusFilming    ProjectStatus = "filming"
	ProjectStatusEditing    ProjectStatus = "editing"
	ProjectStatusInReview   ProjectStatus = "in-review"
	ProjectStatusRevisions  ProjectStatus = "revisions"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusSetup, ProjectStatusInProgress, ProjectStatusFilming, ProjectStatusEditing,
		ProjectStatusInReview, ProjectStatusRevisions, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string        `gorm:"type:text;not null" json:"name"`
	AgencyUserID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"agency_user_id"`
	ClientCompany string        `gorm:"type:text;not null" json:"client_company"`
	Status        ProjectStatus `gorm:"type:varchar(32);not null;default:setup" json:"status"`
	DueDate       *time.Time    `gorm:"type:date" json:"due_date"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Project <-> Asset
	Assets []Asset `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"assets"`

	// Project <-> Stakeholder
	Stakeholders []Stakeholder `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }
