package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/serializer"
	"github.com/signoffhq/signoff/internal/modules/service"
)

// ReviewHandler serves the guest review link. Nothing here needs a login; the
// token in the path is checked on every request.
type ReviewHandler struct {
	review   service.ReviewService
	feedback service.FeedbackService
}

func NewReviewHandler(review service.ReviewService, feedback service.FeedbackService) *ReviewHandler {
	return &ReviewHandler{review: review, feedback: feedback}
}

// reviewProjectID parses the project in a review link. A malformed id is
// answered like any other bad link.
func reviewProjectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		writeErr(c, service.ErrAccessDenied)
		return uuid.Nil, false
	}
	return id, true
}

// GetReview godoc
//
//	@Summary		Open review session
//	@Description	Resolve a review link into the project, its assets with comments and approvals, and the reviewer
//	@Tags			review
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Param			token		path	string	true	"Review token"
//	@Success		200	{object}	serializer.Response{data=service.ReviewSession}
//	@Failure		403	{object}	serializer.Response
//	@Router			/review/{project_id}/{token} [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	projectID, ok := reviewProjectID(c)
	if !ok {
		return
	}

	session, err := h.review.Open(c.Request.Context(), projectID, c.Param("token"))
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: session})
}

type SubmitFeedbackReq struct {
	AssetID       string               `form:"asset_id" json:"asset_id" binding:"required,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
	StakeholderID string               `form:"stakeholder_id" json:"stakeholder_id" binding:"required,uuid" example:"123e4567-e89b-12d3-a456-426614174001"`
	Status        model.ApprovalStatus `form:"status" json:"status" binding:"required" example:"approved"`
	Feedback      string               `form:"feedback" json:"feedback" example:"Looks great, ship it"`
}

// SubmitFeedback godoc
//
//	@Summary		Submit feedback
//	@Description	Approve, reject or comment on an asset. Non-empty feedback is also appended to the asset's comment thread.
//	@Tags			review
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	Format(uuid)
//	@Param			token		path	string						true	"Review token"
//	@Param			payload		body	handler.SubmitFeedbackReq	true	"SubmitFeedback payload"
//	@Success		201	{object}	serializer.Response{data=service.SubmitFeedbackOutput}
//	@Failure		403	{object}	serializer.Response
//	@Router			/review/{project_id}/{token}/feedback [post]
func (h *ReviewHandler) SubmitFeedback(c *gin.Context) {
	projectID, ok := reviewProjectID(c)
	if !ok {
		return
	}
	req := SubmitFeedbackReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	out, err := h.feedback.Submit(c.Request.Context(), service.SubmitFeedbackInput{
		ProjectID:     projectID,
		AssetID:       uuid.MustParse(req.AssetID),
		StakeholderID: uuid.MustParse(req.StakeholderID),
		Token:         c.Param("token"),
		Status:        req.Status,
		Feedback:      req.Feedback,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}

// DownloadReviewAsset godoc
//
//	@Summary		Get asset download URL (reviewer)
//	@Description	Get a time-limited download URL for an asset of the reviewed project
//	@Tags			review
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Param			token		path	string	true	"Review token"
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Success		200	{object}	serializer.Response{data=handler.DownloadURLResp}
//	@Failure		403	{object}	serializer.Response
//	@Router			/review/{project_id}/{token}/assets/{asset_id}/download [get]
func (h *ReviewHandler) DownloadReviewAsset(c *gin.Context) {
	projectID, ok := reviewProjectID(c)
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}

	u, err := h.review.PresignDownload(c.Request.Context(), projectID, c.Param("token"), assetID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: DownloadURLResp{URL: u}})
}
