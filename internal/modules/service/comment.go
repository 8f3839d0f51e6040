package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/repo"
	"github.com/signoffhq/signoff/internal/realtime"
	"go.uber.org/zap"
)

type CommentService interface {
	AddAgencyComment(ctx context.Context, in AgencyCommentInput) (*model.Comment, error)
}

type commentService struct {
	r        repo.FeedbackRepo
	assets   repo.AssetRepo
	projects repo.ProjectRepo
	notifier realtime.Notifier
	log      *zap.Logger
}

func NewCommentService(r repo.FeedbackRepo, assets repo.AssetRepo, projects repo.ProjectRepo, notifier realtime.Notifier, log *zap.Logger) CommentService {
	return &commentService{
		r:        r,
		assets:   assets,
		projects: projects,
		notifier: notifier,
		log:      log,
	}
}

type AgencyCommentInput struct {
	Agency    model.Agency
	ProjectID uuid.UUID
	AssetID   uuid.UUID
	Content   string
}

func (s *commentService) AddAgencyComment(ctx context.Context, in AgencyCommentInput) (*model.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, validationErr("content is required")
	}

	if _, err := s.projects.GetOwned(ctx, in.Agency.ID, in.ProjectID); err != nil {
		return nil, storeErr("get project", err)
	}
	asset, err := s.assets.Get(ctx, in.AssetID)
	if err != nil {
		return nil, storeErr("get asset", err)
	}
	if asset.ProjectID != in.ProjectID {
		return nil, ErrNotFound
	}

	c := &model.Comment{
		AssetID:     asset.ID,
		AuthorName:  in.Agency.DisplayName(),
		AuthorEmail: in.Agency.Email,
		AuthorType:  model.AuthorTypeAgency,
		Content:     content,
	}
	if err := s.r.AddComment(ctx, c); err != nil {
		return nil, storeErr("add comment", err)
	}

	notify(ctx, s.notifier, s.log, realtime.NewChangeEvent(realtime.KindComments, in.ProjectID, c.ID))
	return c, nil
}
