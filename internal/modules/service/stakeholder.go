package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/metrics"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/repo"
	"github.com/signoffhq/signoff/internal/pkg/utils"
	"github.com/signoffhq/signoff/internal/pkg/utils/tokens"
	"github.com/signoffhq/signoff/internal/realtime"
	"go.uber.org/zap"
)

// StakeholderService is the access token registry: it mints reviewer grants
// and resolves bearer tokens back to them.
type StakeholderService interface {
	Grant(ctx context.Context, in GrantInput) (*GrantOutput, error)
	Resolve(ctx context.Context, projectID uuid.UUID, token string) (*model.Stakeholder, error)
	Authenticate(ctx context.Context, stakeholderID uuid.UUID, token string) (*model.Stakeholder, error)
	List(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) ([]*model.Stakeholder, error)
}

type stakeholderService struct {
	r        repo.StakeholderRepo
	projects repo.ProjectRepo
	cfg      *config.Config
	notifier realtime.Notifier
	log      *zap.Logger
}

func NewStakeholderService(r repo.StakeholderRepo, projects repo.ProjectRepo, cfg *config.Config, notifier realtime.Notifier, log *zap.Logger) StakeholderService {
	return &stakeholderService{
		r:        r,
		projects: projects,
		cfg:      cfg,
		notifier: notifier,
		log:      log,
	}
}

type GrantInput struct {
	AgencyID   uuid.UUID
	ProjectID  uuid.UUID
	Name       string
	Email      string
	Role       string
	CanApprove *bool
}

type GrantOutput struct {
	Stakeholder *model.Stakeholder `json:"stakeholder"`
	// AccessToken is only ever returned here.
	AccessToken string `json:"access_token"`
	ReviewURL   string `json:"review_url"`
}

func (s *stakeholderService) Grant(ctx context.Context, in GrantInput) (*GrantOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" {
		return nil, validationErr("name is required")
	}
	if email == "" {
		return nil, validationErr("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationErr("email %q is invalid", email)
	}

	if _, err := s.projects.GetOwned(ctx, in.AgencyID, in.ProjectID); err != nil {
		return nil, storeErr("get project", err)
	}

	token, err := utils.GenerateKey(s.cfg.Review.TokenPrefix)
	if err != nil {
		return nil, &TransportError{Op: "generate token", Err: err}
	}

	canApprove := true
	if in.CanApprove != nil {
		canApprove = *in.CanApprove
	}

	sh := &model.Stakeholder{
		ProjectID:       in.ProjectID,
		Name:            name,
		Email:           email,
		Role:            strings.TrimSpace(in.Role),
		AccessTokenHMAC: s.digest(token),
		CanApprove:      canApprove,
	}
	if err := s.r.Create(ctx, sh); err != nil {
		return nil, storeErr("create stakeholder", err)
	}

	s.log.Sugar().Infow("stakeholder granted",
		"project_id", in.ProjectID, "stakeholder_id", sh.ID)
	notify(ctx, s.notifier, s.log, realtime.NewChangeEvent(realtime.KindProjects, in.ProjectID, sh.ID))

	return &GrantOutput{
		Stakeholder: sh,
		AccessToken: token,
		ReviewURL:   ReviewURL(s.cfg, in.ProjectID, token),
	}, nil
}

// Resolve looks a token up within one project. Wrong project, wrong token and
// malformed token are all ErrAccessDenied.
func (s *stakeholderService) Resolve(ctx context.Context, projectID uuid.UUID, token string) (*model.Stakeholder, error) {
	if _, ok := tokens.ParseToken(token, s.cfg.Review.TokenPrefix); !ok {
		tokens.BurnCompare(s.digest(token))
		return nil, ErrAccessDenied
	}
	digest := s.digest(token)

	sh, err := s.r.GetByProjectAndToken(ctx, projectID, digest)
	if err != nil {
		tokens.BurnCompare(digest)
		return nil, s.deny("resolve", err)
	}
	if sh.ProjectID != projectID || !tokens.Equal(sh.AccessTokenHMAC, digest) {
		return nil, ErrAccessDenied
	}
	return sh, nil
}

// Authenticate checks that token belongs to stakeholderID. Called on every
// write; an earlier successful read grants nothing.
func (s *stakeholderService) Authenticate(ctx context.Context, stakeholderID uuid.UUID, token string) (*model.Stakeholder, error) {
	digest := s.digest(token)
	if _, ok := tokens.ParseToken(token, s.cfg.Review.TokenPrefix); !ok {
		tokens.BurnCompare(digest)
		return nil, ErrAccessDenied
	}

	sh, err := s.r.Get(ctx, stakeholderID)
	if err != nil {
		tokens.BurnCompare(digest)
		return nil, s.deny("authenticate", err)
	}
	if !tokens.Equal(sh.AccessTokenHMAC, digest) {
		return nil, ErrAccessDenied
	}
	return sh, nil
}

func (s *stakeholderService) List(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) ([]*model.Stakeholder, error) {
	if _, err := s.projects.GetOwned(ctx, agencyID, projectID); err != nil {
		return nil, storeErr("get project", err)
	}
	out, err := s.r.ListByProject(ctx, projectID)
	if err != nil {
		return nil, storeErr("list stakeholders", err)
	}
	return out, nil
}

func (s *stakeholderService) digest(token string) string {
	return tokens.HMAC256Hex(s.cfg.Review.TokenPepper, token)
}

// deny maps a lookup failure: a miss is access denied, anything else is a
// transport failure the caller may retry.
func (s *stakeholderService) deny(op string, err error) error {
	var te *TransportError
	if e := storeErr(op, err); errors.As(e, &te) {
		return te
	}
	return ErrAccessDenied
}

// ReviewURL renders the shareable link that carries the token.
func ReviewURL(cfg *config.Config, projectID uuid.UUID, token string) string {
	base := strings.TrimRight(cfg.Review.BaseURL, "/")
	path := strings.Trim(cfg.Review.Path, "/")
	return base + "/" + path + "/" + projectID.String() + "/" + token
}

func notify(ctx context.Context, n realtime.Notifier, log *zap.Logger, ev realtime.ChangeEvent) {
	if n == nil {
		return
	}
	// the write already committed; a lost nudge only delays a reload
	if err := n.NotifyChanged(ctx, ev); err != nil {
		log.Sugar().Warnw("notify changed", "kind", ev.Kind, "project_id", ev.ProjectID, "err", err)
	}
}

func countDenied(op string, err error) {
	if errors.Is(err, ErrAccessDenied) {
		metrics.AccessDenied.WithLabelValues(op).Inc()
	}
}
