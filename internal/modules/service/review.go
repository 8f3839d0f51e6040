package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/metrics"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/repo"
	"go.uber.org/zap"
)

// SnapshotCache holds read projections between reloads. Token checks never go through it.
// Get also returns the project's invalidation generation; Set refuses to store
// a projection loaded before a newer invalidation.
type SnapshotCache interface {
	Get(ctx context.Context, projectID uuid.UUID) (*model.Project, int64, error)
	Set(ctx context.Context, p *model.Project, gen int64) (bool, error)
}

// ReviewService resolves guest review sessions. Every call re-checks the token.
type ReviewService interface {
	Open(ctx context.Context, projectID uuid.UUID, token string) (*ReviewSession, error)
	PresignDownload(ctx context.Context, projectID uuid.UUID, token string, assetID uuid.UUID) (string, error)
}

type reviewService struct {
	stakeholders StakeholderService
	projects     repo.ProjectRepo
	assets       repo.AssetRepo
	snapshots    SnapshotCache
	blob         BlobStore
	cfg          *config.Config
	log          *zap.Logger
}

func NewReviewService(stakeholders StakeholderService, projects repo.ProjectRepo, assets repo.AssetRepo, snapshots SnapshotCache, blob BlobStore, cfg *config.Config, log *zap.Logger) ReviewService {
	return &reviewService{
		stakeholders: stakeholders,
		projects:     projects,
		assets:       assets,
		snapshots:    snapshots,
		blob:         blob,
		cfg:          cfg,
		log:          log,
	}
}

// ReviewSession is the read projection a guest reviewer is entitled to.
type ReviewSession struct {
	Stakeholder *model.Stakeholder `json:"stakeholder"`
	Project     *ReviewProject     `json:"project"`
}

type ReviewProject struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	ClientCompany string              `json:"client_company"`
	Status        model.ProjectStatus `json:"status"`
	DueDate       *time.Time          `json:"due_date"`
	CreatedAt     time.Time           `json:"created_at"`
	Assets        []ReviewAsset       `json:"assets"`
}

type ReviewAsset struct {
	model.Asset
	// MyStatus is the viewing stakeholder's disposition; pending when they never acted.
	MyStatus model.ApprovalStatus `json:"my_status"`
}

func (s *reviewService) Open(ctx context.Context, projectID uuid.UUID, token string) (*ReviewSession, error) {
	sh, err := s.stakeholders.Resolve(ctx, projectID, token)
	if err != nil {
		countDenied("review", err)
		return nil, err
	}

	p, err := s.loadAggregate(ctx, projectID)
	if err != nil {
		return nil, err
	}

	metrics.ReviewSessionsOpened.Inc()
	return &ReviewSession{
		Stakeholder: sh,
		Project:     projectForReviewer(p, sh.ID),
	}, nil
}

func (s *reviewService) PresignDownload(ctx context.Context, projectID uuid.UUID, token string, assetID uuid.UUID) (string, error) {
	if _, err := s.stakeholders.Resolve(ctx, projectID, token); err != nil {
		countDenied("download", err)
		return "", err
	}

	a, err := s.assets.Get(ctx, assetID)
	if err != nil {
		return "", storeErr("get asset", err)
	}
	if a.ProjectID != projectID {
		countDenied("download", ErrAccessDenied)
		return "", ErrAccessDenied
	}
	return presignAsset(ctx, s.blob, s.cfg, a)
}

func (s *reviewService) loadAggregate(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	cacheable := false
	var gen int64
	if s.snapshots != nil {
		p, g, err := s.snapshots.Get(ctx, projectID)
		if err != nil {
			s.log.Sugar().Warnw("snapshot lookup failed, reading store", "project_id", projectID, "err", err)
		} else {
			cacheable, gen = true, g
		}
		if p != nil {
			metrics.SnapshotLookups.WithLabelValues("hit").Inc()
			return p, nil
		}
		metrics.SnapshotLookups.WithLabelValues("miss").Inc()
	}

	p, err := s.projects.GetAggregate(ctx, projectID)
	if err != nil {
		return nil, storeErr("load project", err)
	}

	if cacheable {
		stored, err := s.snapshots.Set(ctx, p, gen)
		if err != nil {
			s.log.Sugar().Warnw("snapshot store failed", "project_id", projectID, "err", err)
		} else if !stored {
			s.log.Sugar().Debugw("snapshot skipped, project changed during load", "project_id", projectID)
		}
	}
	return p, nil
}

func projectForReviewer(p *model.Project, stakeholderID uuid.UUID) *ReviewProject {
	return &ReviewProject{
		ID:            p.ID,
		Name:          p.Name,
		ClientCompany: p.ClientCompany,
		Status:        p.Status,
		DueDate:       p.DueDate,
		CreatedAt:     p.CreatedAt,
		Assets: lo.Map(p.Assets, func(a model.Asset, _ int) ReviewAsset {
			if a.Comments == nil {
				a.Comments = []model.Comment{}
			}
			if a.Approvals == nil {
				a.Approvals = []model.Approval{}
			}
			return ReviewAsset{Asset: a, MyStatus: statusOf(a.Approvals, stakeholderID)}
		}),
	}
}

func statusOf(approvals []model.Approval, stakeholderID uuid.UUID) model.ApprovalStatus {
	a, ok := lo.Find(approvals, func(a model.Approval) bool {
		return a.StakeholderID == stakeholderID
	})
	if !ok {
		return model.ApprovalStatusPending
	}
	return a.Status
}
