package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	FileTypeImage    = "image"
	FileTypeDocument = "document"
)

// FileTypeFromMIME maps a content type onto the coarse kind reviewers see.
func FileTypeFromMIME(mime string) string {
	if strings.HasPrefix(strings.ToLower(mime), "image/") {
		return FileTypeImage
	}
	return FileTypeDocument
}

type Asset struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"project_id"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Description *string           `gorm:"type:text" json:"description"`
	FileURL     string            `gorm:"type:text;not null" json:"file_url"`
	FileType    string            `gorm:"type:varchar(32);not null" json:"file_type"`
	FileSize    int64             `gorm:"type:bigint;not null" json:"file_size"`
	CreatedBy   uuid.UUID         `gorm:"type:uuid;not null" json:"created_by"`
	Meta        datatypes.JSONMap `gorm:"type:jsonb" swaggertype:"object" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Asset <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Asset <-> Comment
	Comments []Comment `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"comments"`

	// Asset <-> Approval
	Approvals []Approval `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"approvals"`
}

func (Asset) TableName() string { return "assets" }

// Reserved keys inside Asset.Meta describing where the binary lives.
const (
	AssetMetaBucket = "bucket"
	AssetMetaKey    = "s3_key"
	AssetMetaETag   = "etag"
	AssetMetaSHA256 = "sha256"
	AssetMetaMIME   = "mime"
)

// StorageKey returns the object key the binary was stored under, if known.
func (a *Asset) StorageKey() string {
	if a.Meta == nil {
		return ""
	}
	k, _ := a.Meta[AssetMetaKey].(string)
	return k
}
