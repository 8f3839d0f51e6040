package handler

import (
	"context"
	"io"
	"net/http/httptest"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/serializer"
	"github.com/signoffhq/signoff/internal/modules/service"
	"github.com/stretchr/testify/mock"
)

// MockProjectService is a mock implementation of ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, in service.CreateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, in service.ListProjectsInput) (*service.ListProjectsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListProjectsOutput), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, agencyID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) CheckOwned(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) error {
	args := m.Called(ctx, agencyID, projectID)
	return args.Error(0)
}

func (m *MockProjectService) UpdateStatus(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, status model.ProjectStatus) error {
	args := m.Called(ctx, agencyID, projectID, status)
	return args.Error(0)
}

// MockStakeholderService is a mock implementation of StakeholderService
type MockStakeholderService struct {
	mock.Mock
}

func (m *MockStakeholderService) Grant(ctx context.Context, in service.GrantInput) (*service.GrantOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GrantOutput), args.Error(1)
}

func (m *MockStakeholderService) Resolve(ctx context.Context, projectID uuid.UUID, token string) (*model.Stakeholder, error) {
	args := m.Called(ctx, projectID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stakeholder), args.Error(1)
}

func (m *MockStakeholderService) Authenticate(ctx context.Context, stakeholderID uuid.UUID, token string) (*model.Stakeholder, error) {
	args := m.Called(ctx, stakeholderID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Stakeholder), args.Error(1)
}

func (m *MockStakeholderService) List(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID) ([]*model.Stakeholder, error) {
	args := m.Called(ctx, agencyID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Stakeholder), args.Error(1)
}

// MockReviewService is a mock implementation of ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Open(ctx context.Context, projectID uuid.UUID, token string) (*service.ReviewSession, error) {
	args := m.Called(ctx, projectID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReviewSession), args.Error(1)
}

func (m *MockReviewService) PresignDownload(ctx context.Context, projectID uuid.UUID, token string, assetID uuid.UUID) (string, error) {
	args := m.Called(ctx, projectID, token, assetID)
	return args.String(0), args.Error(1)
}

// MockFeedbackService is a mock implementation of FeedbackService
type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) Submit(ctx context.Context, in service.SubmitFeedbackInput) (*service.SubmitFeedbackOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitFeedbackOutput), args.Error(1)
}

// MockAssetService is a mock implementation of AssetService
type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) Upload(ctx context.Context, in service.UploadAssetInput) (*model.Asset, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetService) PresignDownload(ctx context.Context, agencyID uuid.UUID, projectID uuid.UUID, assetID uuid.UUID) (string, error) {
	args := m.Called(ctx, agencyID, projectID, assetID)
	return args.String(0), args.Error(1)
}

// MockCommentService is a mock implementation of CommentService
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) AddAgencyComment(ctx context.Context, in service.AgencyCommentInput) (*model.Comment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asAgency stands in for the auth middleware.
func asAgency(a *model.Agency) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(model.AgencyContextKey, a)
		c.Next()
	}
}

func decodeResponse(w *httptest.ResponseRecorder) (serializer.Response, error) {
	var resp serializer.Response
	raw, err := io.ReadAll(w.Body)
	if err != nil {
		return resp, err
	}
	return resp, sonic.Unmarshal(raw, &resp)
}
