package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signoffhq/signoff/internal/modules/serializer"
	"github.com/signoffhq/signoff/internal/modules/service"
)

type AssetHandler struct {
	svc service.AssetService
}

func NewAssetHandler(s service.AssetService) *AssetHandler {
	return &AssetHandler{svc: s}
}

type UploadAssetReq struct {
	Name        string `form:"name" json:"name" example:"Hero Banner"`
	Description string `form:"description" json:"description" example:"Homepage hero, desktop crop"`
}

// UploadAsset godoc
//
//	@Summary		Upload asset
//	@Description	Upload a deliverable for review. The name defaults to the file name.
//	@Tags			asset
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			project_id	path		string	true	"Project ID"	Format(uuid)
//	@Param			file		formData	file	true	"Asset file"
//	@Param			name		formData	string	false	"Display name"
//	@Param			description	formData	string	false	"Description"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Asset}
//	@Router			/projects/{project_id}/assets [post]
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := UploadAssetReq{}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("file is required", err))
		return
	}
	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	asset, err := h.svc.Upload(c.Request.Context(), service.UploadAssetInput{
		AgencyID:    agency.ID,
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		File:        fh,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: asset})
}

type DownloadURLResp struct {
	URL string `json:"url"`
}

// DownloadAsset godoc
//
//	@Summary		Get asset download URL
//	@Description	Get a time-limited download URL for an asset
//	@Tags			asset
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Param			asset_id	path	string	true	"Asset ID"		Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.DownloadURLResp}
//	@Router			/projects/{project_id}/assets/{asset_id}/download [get]
func (h *AssetHandler) DownloadAsset(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}
	agency, ok := agencyFrom(c)
	if !ok {
		return
	}

	u, err := h.svc.PresignDownload(c.Request.Context(), agency.ID, projectID, assetID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: DownloadURLResp{URL: u}})
}
