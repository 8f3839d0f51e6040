package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/metrics"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/repo"
	"github.com/signoffhq/signoff/internal/realtime"
	"go.uber.org/zap"
)

// FeedbackService is the only write path open to guest reviewers.
type FeedbackService interface {
	Submit(ctx context.Context, in SubmitFeedbackInput) (*SubmitFeedbackOutput, error)
}

type feedbackService struct {
	r            repo.FeedbackRepo
	assets       repo.AssetRepo
	stakeholders StakeholderService
	notifier     realtime.Notifier
	log          *zap.Logger
	now          func() time.Time
}

func NewFeedbackService(r repo.FeedbackRepo, assets repo.AssetRepo, stakeholders StakeholderService, notifier realtime.Notifier, log *zap.Logger) FeedbackService {
	return &feedbackService{
		r:            r,
		assets:       assets,
		stakeholders: stakeholders,
		notifier:     notifier,
		log:          log,
		now:          time.Now,
	}
}

type SubmitFeedbackInput struct {
	ProjectID     uuid.UUID
	AssetID       uuid.UUID
	StakeholderID uuid.UUID
	Token         string
	Status        model.ApprovalStatus
	Feedback      string
}

type SubmitFeedbackOutput struct {
	// Comment is nil when no feedback text was sent.
	Comment  *model.Comment  `json:"comment"`
	Approval *model.Approval `json:"approval"`
}

func (s *feedbackService) Submit(ctx context.Context, in SubmitFeedbackInput) (*SubmitFeedbackOutput, error) {
	if !in.Status.Submittable() {
		return nil, validationErr("status must be one of approved, commented, rejected")
	}

	sh, err := s.stakeholders.Authenticate(ctx, in.StakeholderID, in.Token)
	if err != nil {
		countDenied("feedback", err)
		return nil, err
	}
	// a token bound to another project never reaches its assets
	if in.ProjectID != uuid.Nil && sh.ProjectID != in.ProjectID {
		countDenied("feedback", ErrAccessDenied)
		return nil, ErrAccessDenied
	}

	asset, err := s.assets.Get(ctx, in.AssetID)
	if err != nil {
		return nil, storeErr("get asset", err)
	}
	if asset.ProjectID != sh.ProjectID {
		countDenied("feedback", ErrAccessDenied)
		return nil, ErrAccessDenied
	}

	feedback := strings.TrimSpace(in.Feedback)
	if in.Status == model.ApprovalStatusCommented && feedback == "" {
		return nil, validationErr("feedback is required when commenting")
	}
	if !sh.CanApprove && in.Status != model.ApprovalStatusCommented {
		countDenied("feedback", ErrAccessDenied)
		return nil, ErrAccessDenied
	}

	now := s.now()
	var c *model.Comment
	if feedback != "" {
		c = &model.Comment{
			AssetID:     asset.ID,
			AuthorName:  sh.Name,
			AuthorEmail: sh.Email,
			AuthorType:  model.AuthorTypeClient,
			Content:     feedback,
			CreatedAt:   now,
		}
	}
	a := &model.Approval{
		AssetID:       asset.ID,
		StakeholderID: sh.ID,
		CreatedAt:     now,
	}
	a.Apply(in.Status, feedback, now)

	if err := s.r.SubmitFeedback(ctx, c, a); err != nil {
		return nil, storeErr("submit feedback", err)
	}

	metrics.FeedbackSubmitted.WithLabelValues(string(in.Status)).Inc()
	s.log.Sugar().Infow("feedback submitted",
		"project_id", sh.ProjectID, "asset_id", asset.ID, "stakeholder_id", sh.ID, "status", in.Status)

	if c != nil {
		notify(ctx, s.notifier, s.log, realtime.NewChangeEvent(realtime.KindComments, sh.ProjectID, c.ID))
	}
	notify(ctx, s.notifier, s.log, realtime.NewChangeEvent(realtime.KindApprovals, sh.ProjectID, a.ID))

	return &SubmitFeedbackOutput{Comment: c, Approval: a}, nil
}
