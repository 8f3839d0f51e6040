package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockStakeholderRepo is a mock implementation of StakeholderRepo
type MockStakeholderRepo struct {
	mock.Mock
}

func (m *MockStakeholderRepo) Create(ctx context.Context, s *model.Stakeholder) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStakeholderRepo) Get(ctx context.Context, id uuid.UUID) (*model.Stakeholder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stakeholder), args.Error(1)
}

func (m *MockStakeholderRepo) GetByProjectAndToken(ctx context.Context, projectID uuid.UUID, tokenHMAC string) (*model.Stakeholder, error) {
	args := m.Called(ctx, projectID, tokenHMAC)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stakeholder), args.Error(1)
}

func (m *MockStakeholderRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Stakeholder, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Stakeholder), args.Error(1)
}

type fixture struct {
	store    *memStore
	events   *recorder
	agency   model.Agency
	project  *model.Project
	asset    *model.Asset
	projects ProjectService
	grants   StakeholderService
	review   ReviewService
	feedback FeedbackService
	comments CommentService
}

// newFixture seeds one agency project with one image asset and no reviewers.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()
	events := &recorder{}
	cfg := testConfig()
	log := zap.NewNop()

	f := &fixture{
		store:  store,
		events: events,
		agency: model.Agency{ID: uuid.New(), Email: "studio@agency.test", FullName: "Sam Studio"},
	}
	f.projects = NewProjectService(store.projectRepo(), events, log)
	f.grants = NewStakeholderService(store.stakeholderRepo(), store.projectRepo(), cfg, events, log)
	f.review = NewReviewService(f.grants, store.projectRepo(), store.assetRepo(), nil, nil, cfg, log)
	f.feedback = NewFeedbackService(store.feedbackRepo(), store.assetRepo(), f.grants, events, log)
	f.comments = NewCommentService(store.feedbackRepo(), store.assetRepo(), store.projectRepo(), events, log)

	p, err := f.projects.Create(ctx, CreateProjectInput{AgencyID: f.agency.ID, Name: "Acme Launch", ClientCompany: "Acme Corp"})
	require.NoError(t, err)
	f.project = p

	f.asset = &model.Asset{
		ProjectID: p.ID,
		Name:      "Hero Banner",
		FileURL:   "https://cdn.signoff.test/projects/hero.png",
		FileType:  model.FileTypeImage,
		FileSize:  2048,
		CreatedBy: f.agency.ID,
	}
	require.NoError(t, store.assetRepo().Create(ctx, f.asset))
	return f
}

func (f *fixture) grant(t *testing.T, name, email string, canApprove bool) *GrantOutput {
	t.Helper()
	out, err := f.grants.Grant(context.Background(), GrantInput{
		AgencyID:   f.agency.ID,
		ProjectID:  f.project.ID,
		Name:       name,
		Email:      email,
		Role:       "Marketing Lead",
		CanApprove: &canApprove,
	})
	require.NoError(t, err)
	return out
}

func TestStakeholderService_Grant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out := f.grant(t, "Jane Doe", "jane@acme.test", true)

	assert.True(t, strings.HasPrefix(out.AccessToken, "rv_"))
	assert.Equal(t, "https://app.signoff.test/client-review/"+f.project.ID.String()+"/"+out.AccessToken, out.ReviewURL)
	assert.True(t, out.Stakeholder.CanApprove)
	// only the digest is kept
	assert.NotContains(t, out.Stakeholder.AccessTokenHMAC, out.AccessToken)
	assert.Len(t, out.Stakeholder.AccessTokenHMAC, 64)

	second := f.grant(t, "John Roe", "john@acme.test", false)
	assert.NotEqual(t, out.AccessToken, second.AccessToken)

	list, err := f.grants.List(ctx, f.agency.ID, f.project.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Jane Doe", list[0].Name)
	assert.False(t, list[1].CanApprove)

	assert.Contains(t, f.events.kinds(), realtime.KindProjects)
}

func TestStakeholderService_TokensStayOutOfLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	svc := NewStakeholderService(f.store.stakeholderRepo(), f.store.projectRepo(), testConfig(), nil, zap.New(core))

	out, err := svc.Grant(ctx, GrantInput{AgencyID: f.agency.ID, ProjectID: f.project.ID, Name: "Jane Doe", Email: "jane@acme.test"})
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, f.project.ID, out.AccessToken)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, uuid.New(), out.AccessToken)
	require.Error(t, err)

	secret := strings.TrimPrefix(out.AccessToken, "rv_")[:12]
	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, secret)
		for k, v := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), secret, "field %s", k)
		}
	}
}

func TestStakeholderService_GrantValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   GrantInput
		wantErr error
	}{
		{
			name:    "missing name",
			input:   GrantInput{AgencyID: f.agency.ID, ProjectID: f.project.ID, Email: "jane@acme.test"},
			wantErr: ErrValidation,
		},
		{
			name:    "bad email",
			input:   GrantInput{AgencyID: f.agency.ID, ProjectID: f.project.ID, Name: "Jane", Email: "not-an-email"},
			wantErr: ErrValidation,
		},
		{
			name:    "project of another agency",
			input:   GrantInput{AgencyID: uuid.New(), ProjectID: f.project.ID, Name: "Jane", Email: "jane@acme.test"},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.grants.Grant(ctx, tt.input)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStakeholderService_Resolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jane := f.grant(t, "Jane Doe", "jane@acme.test", true)
	john := f.grant(t, "John Roe", "john@acme.test", true)

	other, err := f.projects.Create(ctx, CreateProjectInput{AgencyID: f.agency.ID, Name: "Other", ClientCompany: "Other Co"})
	require.NoError(t, err)

	sh, err := f.grants.Resolve(ctx, f.project.ID, jane.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, jane.Stakeholder.ID, sh.ID)

	sh, err = f.grants.Resolve(ctx, f.project.ID, john.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, john.Stakeholder.ID, sh.ID)

	denied := []struct {
		name      string
		projectID uuid.UUID
		token     string
	}{
		{"token of another project", other.ID, jane.AccessToken},
		{"unknown project", uuid.New(), jane.AccessToken},
		{"well formed unknown token", f.project.ID, "rv_" + strings.Repeat("a", 48)},
		{"one character off", f.project.ID, jane.AccessToken[:len(jane.AccessToken)-1] + flip(jane.AccessToken[len(jane.AccessToken)-1])},
		{"missing prefix", f.project.ID, strings.TrimPrefix(jane.AccessToken, "rv_")},
		{"empty", f.project.ID, ""},
		{"garbage", f.project.ID, "rv_../../etc/passwd"},
	}
	for _, tt := range denied {
		t.Run(tt.name, func(t *testing.T) {
			sh, err := f.grants.Resolve(ctx, tt.projectID, tt.token)
			assert.Nil(t, sh)
			// the same error value whatever failed
			assert.Same(t, ErrAccessDenied, err)
		})
	}
}

func TestStakeholderService_ResolveTransportFailure(t *testing.T) {
	repo := &MockStakeholderRepo{}
	projectID := uuid.New()
	repo.On("GetByProjectAndToken", mock.Anything, projectID, mock.Anything).Return(nil, errors.New("connection refused"))

	s := NewStakeholderService(repo, nil, testConfig(), nil, zap.NewNop())
	_, err := s.Resolve(context.Background(), projectID, "rv_"+strings.Repeat("b", 48))

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "resolve", te.Op)
	assert.NotErrorIs(t, err, ErrAccessDenied)
	repo.AssertExpectations(t)
}

func TestStakeholderService_Authenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	jane := f.grant(t, "Jane Doe", "jane@acme.test", true)
	john := f.grant(t, "John Roe", "john@acme.test", true)

	sh, err := f.grants.Authenticate(ctx, jane.Stakeholder.ID, jane.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", sh.Name)

	_, err = f.grants.Authenticate(ctx, jane.Stakeholder.ID, john.AccessToken)
	assert.Same(t, ErrAccessDenied, err)

	_, err = f.grants.Authenticate(ctx, uuid.New(), jane.AccessToken)
	assert.Same(t, ErrAccessDenied, err)
}

func TestReviewURL(t *testing.T) {
	cfg := testConfig()
	cfg.Review.BaseURL = "https://app.signoff.test/"
	cfg.Review.Path = "/client-review/"
	id := uuid.MustParse("6f1c1f3e-6f56-4d0a-8d43-2f6f7d0a1b2c")

	assert.Equal(t, "https://app.signoff.test/client-review/6f1c1f3e-6f56-4d0a-8d43-2f6f7d0a1b2c/rv_x", ReviewURL(cfg, id, "rv_x"))
}

func flip(c byte) string {
	if c == 'a' {
		return "b"
	}
	return "a"
}
