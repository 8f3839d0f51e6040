package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/realtime"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the database. It keeps the one
// behaviour tests care about: approvals upsert on (asset, stakeholder) and
// comments only append.
type memStore struct {
	mu           sync.Mutex
	clock        time.Time
	projects     map[uuid.UUID]*model.Project
	assets       map[uuid.UUID]*model.Asset
	stakeholders map[uuid.UUID]*model.Stakeholder
	comments     []model.Comment
	approvals    []*model.Approval
	writes       int
}

func newMemStore() *memStore {
	return &memStore{
		clock:        time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		projects:     map[uuid.UUID]*model.Project{},
		assets:       map[uuid.UUID]*model.Asset{},
		stakeholders: map[uuid.UUID]*model.Stakeholder{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) projectRepo() *memProjects         { return &memProjects{m} }
func (m *memStore) assetRepo() *memAssets             { return &memAssets{m} }
func (m *memStore) stakeholderRepo() *memStakeholders { return &memStakeholders{m} }
func (m *memStore) feedbackRepo() *memFeedback        { return &memFeedback{m} }

func (m *memStore) commentsFor(assetID uuid.UUID) []model.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Comment{}
	for _, c := range m.comments {
		if c.AssetID == assetID {
			out = append(out, c)
		}
	}
	return out
}

func (m *memStore) approvalsFor(assetID uuid.UUID) []model.Approval {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Approval{}
	for _, a := range m.approvals {
		if a.AssetID == assetID {
			out = append(out, *a)
		}
	}
	return out
}

type memProjects struct{ *memStore }

func (r *memProjects) Create(_ context.Context, p *model.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = model.ProjectStatusSetup
	}
	p.CreatedAt = r.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.projects[p.ID] = &cp
	r.writes++
	return nil
}

func (r *memProjects) GetOwned(_ context.Context, agencyID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok || p.AgencyUserID != agencyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProjects) GetAggregate(_ context.Context, projectID uuid.UUID) (*model.Project, error) {
	r.mu.Lock()
	p, ok := r.projects[projectID]
	if !ok {
		r.mu.Unlock()
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	var assets []model.Asset
	for _, a := range r.assets {
		if a.ProjectID == projectID {
			assets = append(assets, *a)
		}
	}
	r.mu.Unlock()

	sort.Slice(assets, func(i, j int) bool { return assets[i].CreatedAt.Before(assets[j].CreatedAt) })
	for i := range assets {
		assets[i].Comments = r.commentsFor(assets[i].ID)
		assets[i].Approvals = r.approvalsFor(assets[i].ID)
	}
	cp.Assets = assets
	return &cp, nil
}

func (r *memProjects) ListOwnedWithCursor(_ context.Context, agencyID uuid.UUID, afterT time.Time, afterID uuid.UUID, limit int) ([]*model.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Project
	for _, p := range r.projects {
		if p.AgencyUserID != agencyID {
			continue
		}
		if !afterT.IsZero() && !p.CreatedAt.Before(afterT) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memProjects) UpdateStatus(_ context.Context, agencyID uuid.UUID, projectID uuid.UUID, status model.ProjectStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok || p.AgencyUserID != agencyID {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	r.writes++
	return nil
}

type memAssets struct{ *memStore }

func (r *memAssets) Create(_ context.Context, a *model.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = r.tick()
	cp := *a
	r.assets[a.ID] = &cp
	r.writes++
	return nil
}

func (r *memAssets) Get(_ context.Context, assetID uuid.UUID) (*model.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[assetID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

type memStakeholders struct{ *memStore }

func (r *memStakeholders) Create(_ context.Context, s *model.Stakeholder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = r.tick()
	cp := *s
	r.stakeholders[s.ID] = &cp
	r.writes++
	return nil
}

func (r *memStakeholders) Get(_ context.Context, id uuid.UUID) (*model.Stakeholder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stakeholders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memStakeholders) GetByProjectAndToken(_ context.Context, projectID uuid.UUID, tokenHMAC string) (*model.Stakeholder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stakeholders {
		if s.ProjectID == projectID && s.AccessTokenHMAC == tokenHMAC {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memStakeholders) ListByProject(_ context.Context, projectID uuid.UUID) ([]*model.Stakeholder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Stakeholder
	for _, s := range r.stakeholders {
		if s.ProjectID == projectID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memFeedback struct{ *memStore }

func (r *memFeedback) AddComment(_ context.Context, c *model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendComment(c)
	return nil
}

func (r *memFeedback) appendComment(c *model.Comment) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.tick()
	}
	r.comments = append(r.comments, *c)
	r.writes++
}

func (r *memFeedback) SubmitFeedback(_ context.Context, c *model.Comment, a *model.Approval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c != nil {
		r.appendComment(c)
	}
	r.writes++
	for _, existing := range r.approvals {
		if existing.AssetID == a.AssetID && existing.StakeholderID == a.StakeholderID {
			existing.Status = a.Status
			existing.Feedback = a.Feedback
			existing.ApprovedAt = a.ApprovedAt
			existing.UpdatedAt = a.UpdatedAt
			*a = *existing
			return nil
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.approvals = append(r.approvals, &cp)
	return nil
}

// recorder collects change events.
type recorder struct {
	mu     sync.Mutex
	events []realtime.ChangeEvent
}

func (r *recorder) NotifyChanged(_ context.Context, ev realtime.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) kinds() []realtime.ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.ChangeKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Review: config.ReviewCfg{
			BaseURL:     "https://app.signoff.test",
			Path:        "client-review",
			TokenPrefix: "rv_",
			TokenPepper: "test-pepper",
		},
	}
}
