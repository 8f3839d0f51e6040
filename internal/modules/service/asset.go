package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/infra/blob"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/repo"
	"github.com/signoffhq/signoff/internal/realtime"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// BlobStore is the object storage collaborator: bytes in, URL out.
type BlobStore interface {
	UploadFormFile(ctx context.Context, keyPrefix string, fh *multipart.FileHeader) (*blob.UploadedMeta, error)
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
	PublicURL(key string) string
}

type AssetService interface {
	Upload(ctx context.Context, in UploadAssetInput) (*model.Asset, error)
	PresignDownload(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, assetID uuid.UUID) (string, error)
}

type assetService struct {
	r        repo.AssetRepo
	projects repo.ProjectRepo
	blob     BlobStore
	cfg      *config.Config
	notifier realtime.Notifier
	log      *zap.Logger
}

func NewAssetService(r repo.AssetRepo, projects repo.ProjectRepo, blob BlobStore, cfg *config.Config, notifier realtime.Notifier, log *zap.Logger) AssetService {
	return &assetService{
		r:        r,
		projects: projects,
		blob:     blob,
		cfg:      cfg,
		notifier: notifier,
		log:      log,
	}
}

type UploadAssetInput struct {
	AgencyID    uuid.UUID
	ProjectID   uuid.UUID
	Name        string
	Description string
	File        *multipart.FileHeader
}

func (s *assetService) Upload(ctx context.Context, in UploadAssetInput) (*model.Asset, error) {
	if in.File == nil {
		return nil, validationErr("file is required")
	}
	if _, err := s.projects.GetOwned(ctx, in.AgencyID, in.ProjectID); err != nil {
		return nil, storeErr("get project", err)
	}

	meta, err := s.blob.UploadFormFile(ctx, fmt.Sprintf("projects/%s", in.ProjectID), in.File)
	if err != nil {
		return nil, &TransportError{Op: "upload asset", Err: err}
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.File.Filename
	}

	a := &model.Asset{
		ProjectID: in.ProjectID,
		Name:      name,
		FileURL:   s.blob.PublicURL(meta.Key),
		FileType:  model.FileTypeFromMIME(meta.MIME),
		FileSize:  meta.SizeB,
		CreatedBy: in.AgencyID,
		Meta: datatypes.JSONMap{
			model.AssetMetaBucket: meta.Bucket,
			model.AssetMetaKey:    meta.Key,
			model.AssetMetaETag:   meta.ETag,
			model.AssetMetaSHA256: meta.SHA256,
			model.AssetMetaMIME:   meta.MIME,
		},
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		a.Description = &d
	}

	if err := s.r.Create(ctx, a); err != nil {
		return nil, storeErr("create asset", err)
	}

	notify(ctx, s.notifier, s.log, realtime.NewChangeEvent(realtime.KindAssets, in.ProjectID, a.ID))
	return a, nil
}

func (s *assetService) PresignDownload(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, assetID uuid.UUID) (string, error) {
	if _, err := s.projects.GetOwned(ctx, agencyID, projectID); err != nil {
		return "", storeErr("get project", err)
	}
	a, err := s.r.Get(ctx, assetID)
	if err != nil {
		return "", storeErr("get asset", err)
	}
	if a.ProjectID != projectID {
		return "", ErrNotFound
	}
	return presignAsset(ctx, s.blob, s.cfg, a)
}

// presignAsset returns a time-limited URL, or the stored URL for assets whose
// object key is unknown.
func presignAsset(ctx context.Context, b BlobStore, cfg *config.Config, a *model.Asset) (string, error) {
	key := a.StorageKey()
	if key == "" || b == nil {
		return a.FileURL, nil
	}
	u, err := b.PresignGet(ctx, key, cfg.PresignExpire())
	if err != nil {
		return "", &TransportError{Op: "presign asset", Err: err}
	}
	return u, nil
}
