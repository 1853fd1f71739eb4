package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbetancur/basinview/internal/api/middleware"
	"github.com/mbetancur/basinview/internal/delineate"
	"github.com/mbetancur/basinview/internal/export"
	"github.com/mbetancur/basinview/internal/session"
	"github.com/mbetancur/basinview/pkg/types"
)

type ExportHandler struct {
	manager *delineate.Manager
}

func NewExportHandler(manager *delineate.Manager) *ExportHandler {
	return &ExportHandler{manager: manager}
}

// ExportGeoPackage handles GET /v1/session/export/gpkg
func (h *ExportHandler) ExportGeoPackage(c *gin.Context) {
	h.serve(c, export.Raw)
}

// ExportGeoJSON handles GET /v1/session/export/geojson
func (h *ExportHandler) ExportGeoJSON(c *gin.Context) {
	h.serve(c, export.PrimaryGeoJSON)
}

func (h *ExportHandler) serve(c *gin.Context, fn func(st session.State) *export.Download) {
	sessionID, _ := middleware.GetSessionID(c)
	sess := h.manager.GetOrCreate(sessionID)

	download := fn(sess.Store.Get())
	if download == nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "no delineation result available"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Data(http.StatusOK, download.ContentType, download.Data)
}
