package model

import (
	"time"

	"github.com/google/uuid"
)

// Stakeholder is a reviewer grant: one external guest on one project.
// Only an HMAC of the bearer token is persisted.
type Stakeholder struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:u_project_token,priority:1" json:"project_id"`
	Name            string    `gorm:"type:text;not null" json:"name"`
	Email           string    `gorm:"type:text;not null" json:"email"`
	Role            string    `gorm:"type:text" json:"role"`
	AccessTokenHMAC string    `gorm:"column:access_token_hmac;type:varchar(64);not null;uniqueIndex:u_project_token,priority:2" json:"-"`
	CanApprove      bool      `gorm:"not null;default:true" json:"can_approve"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Stakeholder <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Stakeholder) TableName() string { return "project_stakeholders" }
