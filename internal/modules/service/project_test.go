package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/pkg/paging"
	"github.com/signoffhq/signoff/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockProjectRepo is a mock implementation of ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) GetOwned(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, agencyID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) GetAggregate(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListOwnedWithCursor(ctx context.Context, agencyID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int) ([]*model.Project, error) {
	args := m.Called(ctx, agencyID, afterCreatedAt, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectRepo) UpdateStatus(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, status model.ProjectStatus) error {
	args := m.Called(ctx, agencyID, projectID, status)
	return args.Error(0)
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	agencyID := uuid.New()
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   CreateProjectInput
		setup   func(*MockProjectRepo)
		wantErr error
	}{
		{
			name:  "successful creation",
			input: CreateProjectInput{AgencyID: agencyID, Name: " Acme Launch ", ClientCompany: "Acme Co", DueDate: &due},
			setup: func(repo *MockProjectRepo) {
				repo.On("Create", ctx, mock.MatchedBy(func(p *model.Project) bool {
					return p.Name == "Acme Launch" && p.AgencyUserID == agencyID &&
						p.Status == model.ProjectStatusSetup && p.DueDate == &due
				})).Return(nil)
			},
		},
		{
			name:    "missing name",
			input:   CreateProjectInput{AgencyID: agencyID, ClientCompany: "Acme Co"},
			setup:   func(repo *MockProjectRepo) {},
			wantErr: ErrValidation,
		},
		{
			name:    "missing client",
			input:   CreateProjectInput{AgencyID: agencyID, Name: "Acme Launch"},
			setup:   func(repo *MockProjectRepo) {},
			wantErr: ErrValidation,
		},
		{
			name:  "store failure",
			input: CreateProjectInput{AgencyID: agencyID, Name: "Acme Launch", ClientCompany: "Acme Co"},
			setup: func(repo *MockProjectRepo) {
				repo.On("Create", ctx, mock.Anything).Return(errors.New("database error"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockProjectRepo{}
			tt.setup(repo)
			events := &recorder{}
			svc := NewProjectService(repo, events, zap.NewNop())

			p, err := svc.Create(ctx, tt.input)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
			case tt.name == "store failure":
				var te *TransportError
				assert.ErrorAs(t, err, &te)
				assert.Empty(t, events.kinds())
			default:
				require.NoError(t, err)
				assert.Equal(t, []realtime.ChangeKind{realtime.KindProjects}, events.kinds())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestProjectService_List(t *testing.T) {
	ctx := context.Background()
	agencyID := uuid.New()
	t0 := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	mk := func(i int) *model.Project {
		return &model.Project{ID: uuid.New(), AgencyUserID: agencyID, CreatedAt: t0.Add(-time.Duration(i) * time.Hour)}
	}
	three := []*model.Project{mk(0), mk(1), mk(2)}

	t.Run("has more", func(t *testing.T) {
		repo := &MockProjectRepo{}
		repo.On("ListOwnedWithCursor", ctx, agencyID, time.Time{}, uuid.UUID{}, 3).Return(three, nil)

		out, err := NewProjectService(repo, nil, zap.NewNop()).List(ctx, ListProjectsInput{AgencyID: agencyID, Limit: 2})
		require.NoError(t, err)
		assert.True(t, out.HasMore)
		assert.Len(t, out.Items, 2)

		afterT, afterID, err := paging.DecodeCursor(out.NextCursor)
		require.NoError(t, err)
		assert.True(t, three[1].CreatedAt.Equal(afterT))
		assert.Equal(t, three[1].ID, afterID)
	})

	t.Run("follows cursor", func(t *testing.T) {
		cursor := paging.EncodeCursor(three[1].CreatedAt, three[1].ID)
		repo := &MockProjectRepo{}
		repo.On("ListOwnedWithCursor", ctx, agencyID, three[1].CreatedAt, three[1].ID, 3).Return(three[2:], nil)

		out, err := NewProjectService(repo, nil, zap.NewNop()).List(ctx, ListProjectsInput{AgencyID: agencyID, Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		assert.False(t, out.HasMore)
		assert.Empty(t, out.NextCursor)
		assert.Len(t, out.Items, 1)
		repo.AssertExpectations(t)
	})

	t.Run("empty list", func(t *testing.T) {
		repo := &MockProjectRepo{}
		repo.On("ListOwnedWithCursor", ctx, agencyID, time.Time{}, uuid.UUID{}, 21).Return(nil, nil)

		out, err := NewProjectService(repo, nil, zap.NewNop()).List(ctx, ListProjectsInput{AgencyID: agencyID})
		require.NoError(t, err)
		assert.NotNil(t, out.Items)
		assert.Empty(t, out.Items)
	})

	t.Run("bad cursor", func(t *testing.T) {
		repo := &MockProjectRepo{}
		_, err := NewProjectService(repo, nil, zap.NewNop()).List(ctx, ListProjectsInput{AgencyID: agencyID, Cursor: "%%%"})
		assert.ErrorIs(t, err, ErrValidation)
		repo.AssertNotCalled(t, "ListOwnedWithCursor", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProjectService_Get(t *testing.T) {
	ctx := context.Background()
	agencyID := uuid.New()
	projectID := uuid.New()

	repo := &MockProjectRepo{}
	repo.On("GetOwned", ctx, agencyID, projectID).Return(&model.Project{ID: projectID}, nil)
	repo.On("GetAggregate", ctx, projectID).Return(&model.Project{ID: projectID, Assets: []model.Asset{{Name: "Hero Banner"}}}, nil)
	other := uuid.New()
	repo.On("GetOwned", ctx, other, projectID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewProjectService(repo, nil, zap.NewNop())
	p, err := svc.Get(ctx, agencyID, projectID)
	require.NoError(t, err)
	assert.Len(t, p.Assets, 1)

	_, err = svc.Get(ctx, other, projectID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectService_CheckOwned(t *testing.T) {
	ctx := context.Background()
	agencyID := uuid.New()
	projectID := uuid.New()
	other := uuid.New()

	repo := &MockProjectRepo{}
	repo.On("GetOwned", ctx, agencyID, projectID).Return(&model.Project{ID: projectID}, nil)
	repo.On("GetOwned", ctx, other, projectID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewProjectService(repo, nil, zap.NewNop())
	assert.NoError(t, svc.CheckOwned(ctx, agencyID, projectID))
	assert.ErrorIs(t, svc.CheckOwned(ctx, other, projectID), ErrNotFound)
	repo.AssertNotCalled(t, "GetAggregate", mock.Anything, mock.Anything)
}

func TestProjectService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	agencyID := uuid.New()
	projectID := uuid.New()

	repo := &MockProjectRepo{}
	repo.On("UpdateStatus", ctx, agencyID, projectID, model.ProjectStatusInReview).Return(nil)
	repo.On("UpdateStatus", ctx, agencyID, projectID, model.ProjectStatusCompleted).Return(gorm.ErrRecordNotFound)
	events := &recorder{}
	svc := NewProjectService(repo, events, zap.NewNop())

	require.NoError(t, svc.UpdateStatus(ctx, agencyID, projectID, model.ProjectStatusInReview))
	assert.ErrorIs(t, svc.UpdateStatus(ctx, agencyID, projectID, model.ProjectStatusCompleted), ErrNotFound)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, agencyID, projectID, "shipped"), ErrValidation)
	assert.Equal(t, []realtime.ChangeKind{realtime.KindProjects}, events.kinds())
	repo.AssertExpectations(t)
}
