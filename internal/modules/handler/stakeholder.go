package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signoffhq/signoff/internal/modules/serializer"
	"github.com/signoffhq/signoff/internal/modules/service"
)

type StakeholderHandler struct {
	svc service.StakeholderService
}

func NewStakeholderHandler(s service.StakeholderService) *StakeholderHandler {
	return &StakeholderHandler{svc: s}
}

type CreateStakeholderReq struct {
	Name       string `form:"name" json:"name" binding:"required" example:"Jane Doe"`
	Email      string `form:"email" json:"email" binding:"required" example:"jane@acme.co"`
	Role       string `form:"role" json:"role" example:"CMO"`
	CanApprove *bool  `form:"can_approve" json:"can_approve" example:"true"`
}

// CreateStakeholder godoc
//
//	@Summary		Invite reviewer
//	@Description	Grant an external reviewer access to a project. The access token is returned once, inside review_url.
//	@Tags			stakeholder
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string							true	"Project ID"	Format(uuid)
//	@Param			payload		body	handler.CreateStakeholderReq	true	"CreateStakeholder payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=service.GrantOutput}
//	@Router			/projects/{project_id}/stakeholders [post]
func (h *StakeholderHandler) CreateStakeholder(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := CreateStakeholderReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	out, err := h.svc.Grant(c.Request.Context(), service.GrantInput{
		AgencyID:   agency.ID,
		ProjectID:  projectID,
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		CanApprove: req.CanApprove,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}

// ListStakeholders godoc
//
//	@Summary		List reviewers
//	@Description	List the reviewers granted on a project
//	@Tags			stakeholder
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Stakeholder}
//	@Router			/projects/{project_id}/stakeholders [get]
func (h *StakeholderHandler) ListStakeholders(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	out, err := h.svc.List(c.Request.Context(), agency.ID, projectID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}
