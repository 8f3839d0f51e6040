package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/repo"
	"github.com/signoffhq/signoff/internal/pkg/paging"
	"github.com/signoffhq/signoff/internal/realtime"
	"go.uber.org/zap"
)

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput) (*model.Project, error)
	List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error)
	Get(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) (*model.Project, error)
	// CheckOwned fails with ErrNotFound unless agencyID owns the project. Nothing is preloaded.
	CheckOwned(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) error
	UpdateStatus(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, status model.ProjectStatus) error
}

type projectService struct {
	r        repo.ProjectRepo
	notifier realtime.Notifier
	log      *zap.Logger
}

func NewProjectService(r repo.ProjectRepo, notifier realtime.Notifier, log *zap.Logger) ProjectService {
	return &projectService{r: r, notifier: notifier, log: log}
}

type CreateProjectInput struct {
	AgencyID      uuid.UUID
	Name          string
	ClientCompany string
	DueDate       *time.Time
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput) (*model.Project, error) {
	name := strings.TrimSpace(in.Name)
	client := strings.TrimSpace(in.ClientCompany)
	if name == "" {
		return nil, validationErr("name is required")
	}
	if client == "" {
		return nil, validationErr("client_company is required")
	}

	p := &model.Project{
		Name:          name,
		AgencyUserID:  in.AgencyID,
		ClientCompany: client,
		Status:        model.ProjectStatusSetup,
		DueDate:       in.DueDate,
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, storeErr("create project", err)
	}

	notify(ctx, s.notifier, s.log, realtime.NewChangeEvent(realtime.KindProjects, p.ID, p.ID))
	return p, nil
}

type ListProjectsInput struct {
	AgencyID uuid.UUID `json:"agency_id"`
	Limit    int       `json:"limit"`
	Cursor   string    `json:"cursor"`
}

type ListProjectsOutput struct {
	Items      []*model.Project `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

func (s *projectService) List(ctx context.Context, in ListProjectsInput) (*ListProjectsOutput, error) {
	// Parse cursor (created_at, id); an empty cursor starts from the newest
	var afterT time.Time
	var afterID uuid.UUID
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, validationErr("cursor is invalid")
		}
	}
	if in.Limit <= 0 {
		in.Limit = 20
	}

	// Query limit+1 is used to determine has_more
	projects, err := s.r.ListOwnedWithCursor(ctx, in.AgencyID, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, storeErr("list projects", err)
	}

	out := &ListProjectsOutput{Items: projects}
	if len(projects) > in.Limit {
		out.HasMore = true
		out.Items = projects[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.CreatedAt, last.ID)
	}
	if out.Items == nil {
		out.Items = []*model.Project{}
	}
	return out, nil
}

func (s *projectService) Get(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	if _, err := s.r.GetOwned(ctx, agencyID, projectID); err != nil {
		return nil, storeErr("get project", err)
	}
	p, err := s.r.GetAggregate(ctx, projectID)
	if err != nil {
		return nil, storeErr("load project", err)
	}
	return p, nil
}

func (s *projectService) CheckOwned(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) error {
	if _, err := s.r.GetOwned(ctx, agencyID, projectID); err != nil {
		return storeErr("get project", err)
	}
	return nil
}

func (s *projectService) UpdateStatus(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, status model.ProjectStatus) error {
	if !status.Valid() {
		return validationErr("status %q is not a project status", status)
	}
	if err := s.r.UpdateStatus(ctx, agencyID, projectID, status); err != nil {
		return storeErr("update project status", err)
	}
	notify(ctx, s.notifier, s.log, realtime.NewChangeEvent(realtime.KindProjects, projectID, projectID))
	return nil
}
