package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signoffhq/signoff/internal/modules/serializer"
	"github.com/signoffhq/signoff/internal/modules/service"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(s service.CommentService) *CommentHandler {
	return &CommentHandler{svc: s}
}

type CreateCommentReq struct {
	Content string `form:"content" json:"content" binding:"required" example:"New cut uploaded, see v2"`
}

// CreateComment godoc
//
//	@Summary		Comment on asset
//	@Description	Append an agency comment to an asset's thread
//	@Tags			comment
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string					true	"Project ID"	Format(uuid)
//	@Param			asset_id	path	string					true	"Asset ID"		Format(uuid)
//	@Param			payload		body	handler.CreateCommentReq	true	"CreateComment payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Comment}
//	@Router			/projects/{project_id}/assets/{asset_id}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}
	req := CreateCommentReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	comment, err := h.svc.AddAgencyComment(c.Request.Context(), service.AgencyCommentInput{
		Agency:    *agency,
		ProjectID: projectID,
		AssetID:   assetID,
		Content:   req.Content,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: comment})
}
