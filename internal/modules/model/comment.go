package model

import (
	"time"

	"github.com/google/uuid"
)

type AuthorType string

const (
	AuthorTypeAgency AuthorType = "agency"
	AuthorTypeClient AuthorType = "client"
)

// Comment rows are append-only.
type Comment struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssetID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_comment_asset_created,priority:1" json:"asset_id"`
	AuthorName  string     `gorm:"type:text;not null" json:"author_name"`
	AuthorEmail string     `gorm:"type:text" json:"author_email"`
	AuthorType  AuthorType `gorm:"type:varchar(16);not null" json:"author_type"`
	Content     string     `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_comment_asset_created,priority:2" json:"created_at"`

	// Comment <-> Asset
	Asset *Asset `gorm:"foreignKey:AssetID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Comment) TableName() string { return "comments" }
