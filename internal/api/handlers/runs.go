package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mbetancur/basinview/internal/api/middleware"
	"github.com/mbetancur/basinview/internal/database"
	"github.com/mbetancur/basinview/internal/delineate"
	"github.com/mbetancur/basinview/internal/session"
	"github.com/mbetancur/basinview/pkg/types"
)

type RunHandler struct {
	manager *delineate.Manager
	db      *database.DB
}

func NewRunHandler(manager *delineate.Manager, db *database.DB) *RunHandler {
	return &RunHandler{
		manager: manager,
		db:      db,
	}
}

// DelineateResponse acknowledges an accepted run.
type DelineateResponse struct {
	RunID  string         `json:"runId"`
	Status session.Status `json:"status"`
}

// RunHistoryEntry is one persisted run in API responses.
type RunHistoryEntry struct {
	ID           string               `json:"id"`
	WatershedID  string               `json:"watershedId"`
	Lat          float64              `json:"lat"`
	Lon          float64              `json:"lon"`
	KnownAreaKm2 *float64             `json:"knownAreaKm2,omitempty"`
	ArtifactPath string               `json:"artifactPath"`
	LayerErrors  []session.LayerError `json:"layerErrors"`
	CreatedAt    int64                `json:"createdAt"`
}

// Delineate handles POST /v1/session/delineate
func (h *RunHandler) Delineate(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	sess := h.manager.GetOrCreate(sessionID)

	runID, err := sess.Invoker.Start()
	switch {
	case errors.Is(err, delineate.ErrNoPointSelected):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "click an outlet point on the map first"})
		return
	case errors.Is(err, delineate.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: "already_running"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, DelineateResponse{RunID: runID, Status: session.StatusRunning})
}

// GetRun handles GET /v1/session/run
func (h *RunHandler) GetRun(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	sess := h.manager.GetOrCreate(sessionID)

	st := sess.Store.Get()
	rs := sess.Invoker.Status()

	resp := gin.H{
		"status":    session.DeriveStatus(st, rs.Running, rs.LastError),
		"runId":     rs.RunID,
		"lastError": rs.LastError,
	}
	if st.Run != nil {
		resp["run"] = toRunSummary(st.Run)
	}
	c.JSON(http.StatusOK, resp)
}

// ListRuns handles GET /v1/session/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	// Get limit parameter
	limit := int64(50)
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.ParseInt(limitStr, 10, 64); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	runs, err := h.db.ListRuns(c.Request.Context(), sessionID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to list runs"})
		return
	}

	response := make([]RunHistoryEntry, len(runs))
	for i, run := range runs {
		layerErrors := run.LayerErrors
		if layerErrors == nil {
			layerErrors = []session.LayerError{}
		}
		response[i] = RunHistoryEntry{
			ID:           run.ID,
			WatershedID:  run.WatershedID,
			Lat:          run.Lat,
			Lon:          run.Lon,
			KnownAreaKm2: run.KnownAreaKm2,
			ArtifactPath: run.ArtifactPath,
			LayerErrors:  layerErrors,
			CreatedAt:    run.CreatedAt.UnixMilli(),
		}
	}

	c.JSON(http.StatusOK, gin.H{"runs": response})
}
