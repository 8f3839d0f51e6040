package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signoffhq/signoff/internal/modules/model"
	"github.com/signoffhq/signoff/internal/modules/serializer"
	"github.com/signoffhq/signoff/internal/modules/service"
)

type ProjectHandler struct {
	svc service.ProjectService
}

func NewProjectHandler(s service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: s}
}

type CreateProjectReq struct {
	Name          string `form:"name" json:"name" binding:"required" example:"Acme Launch"`
	ClientCompany string `form:"client_company" json:"client_company" binding:"required" example:"Acme Co"`
	DueDate       string `form:"due_date" json:"due_date" example:"2026-12-01"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a new project owned by the calling agency. It starts in status setup.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateProjectReq	true	"CreateProject payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Project}
//	@Router			/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	in := service.CreateProjectInput{
		AgencyID:      agency.ID,
		Name:          req.Name,
		ClientCompany: req.ClientCompany,
	}
	if req.DueDate != "" {
		due, err := time.Parse(time.DateOnly, req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("due_date must be YYYY-MM-DD", err))
			return
		}
		in.DueDate = &due
	}

	project, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: project})
}

type ListProjectsReq struct {
	Limit  int    `form:"limit,default=20" json:"limit" binding:"required,min=1,max=200" example:"20"`
	Cursor string `form:"cursor" json:"cursor" example:"MTc2MDc3ODAwMDAwMDAwMDAwMHw2ZjFjMWYzZS02ZjU2LTRkMGEtOGQ0My0yZjZmN2QwYTFiMmM"`
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List the agency's projects, newest first, each with its assets, comments and approvals
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			limit	query	integer	false	"Limit of projects to return, default 20. Max 200."
//	@Param			cursor	query	string	false	"Cursor for pagination. Use the cursor from the previous response to get the next page."
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.ListProjectsOutput}
//	@Router			/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	req := ListProjectsReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	out, err := h.svc.List(c.Request.Context(), service.ListProjectsInput{
		AgencyID: agency.ID,
		Limit:    req.Limit,
		Cursor:   req.Cursor,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Description	Get one project with its assets, comments and approvals
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Project}
//	@Router			/projects/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	project, err := h.svc.Get(c.Request.Context(), agency.ID, projectID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: project})
}

type UpdateProjectStatusReq struct {
	Status model.ProjectStatus `form:"status" json:"status" binding:"required" example:"in-review"`
}

// UpdateProjectStatus godoc
//
//	@Summary		Update project status
//	@Description	Move a project to another workflow status
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string							true	"Project ID"	Format(uuid)
//	@Param			payload		body	handler.UpdateProjectStatusReq	true	"UpdateProjectStatus payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/projects/{project_id}/status [put]
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := UpdateProjectStatusReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	if err := h.svc.UpdateStatus(c.Request.Context(), agency.ID, projectID, req.Status); err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}
