package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mbetancur/basinview/internal/api/middleware"
	"github.com/mbetancur/basinview/internal/crypto"
	"github.com/mbetancur/basinview/internal/delineate"
	"github.com/mbetancur/basinview/internal/geo"
	"github.com/mbetancur/basinview/internal/session"
	"github.com/mbetancur/basinview/pkg/types"
)

type SessionHandler struct {
	manager *delineate.Manager
	jwt     *crypto.JWTManager
	updates delineate.UpdateEmitter
}

func NewSessionHandler(manager *delineate.Manager, jwt *crypto.JWTManager, updates delineate.UpdateEmitter) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		jwt:     jwt,
		updates: updates,
	}
}

// CreateSessionResponse carries the new session's id and its access token.
type CreateSessionResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// SessionResponse represents the session state in API responses
type SessionResponse struct {
	ID         string            `json:"id"`
	Status     session.Status    `json:"status"`
	LastClick  *geo.Coordinate   `json:"lastClick,omitempty"`
	Parameters session.RunParams `json:"parameters"`
	Run        *RunSummary       `json:"run,omitempty"`
	LastError  string            `json:"lastError,omitempty"`
}

// RunSummary is the API view of a completed run.
type RunSummary struct {
	ID           string                       `json:"id"`
	ArtifactPath string                       `json:"artifactPath"`
	Overlays     map[session.OverlayKind]bool `json:"overlays"`
	LayerErrors  []session.LayerError         `json:"layerErrors"`
	Viewport     *geo.Viewport                `json:"viewport,omitempty"`
}

// ClickRequest is a map click reported by the frontend. No binding
// constraints: zero is a legitimate coordinate and range validation is the
// selector's job.
type ClickRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ClickResponse reports whether the click was accepted.
type ClickResponse struct {
	Accepted  bool            `json:"accepted"`
	LastClick *geo.Coordinate `json:"lastClick,omitempty"`
}

// ParametersRequest updates the user-supplied run configuration.
type ParametersRequest struct {
	WatershedID  string   `json:"watershedId"`
	KnownAreaKm2 *float64 `json:"knownAreaKm2"`
}

// CreateSession handles POST /v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	id := uuid.NewString()
	h.manager.GetOrCreate(id)

	token, err := h.jwt.CreateToken(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to create session token"})
		return
	}

	c.JSON(http.StatusOK, CreateSessionResponse{ID: id, Token: token})
}

// GetSession handles GET /v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	sess := h.session(c)
	c.JSON(http.StatusOK, h.toSessionResponse(sess))
}

// ResetSession handles POST /v1/session/reset
func (h *SessionHandler) ResetSession(c *gin.Context) {
	sess := h.session(c)
	sess.Store.Reset()
	sess.Invoker.ClearLastError()
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// Click handles POST /v1/session/click
func (h *SessionHandler) Click(c *gin.Context) {
	sess := h.session(c)

	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	accepted := sess.Selector.Select(geo.Coordinate{Lat: req.Lat, Lon: req.Lon})
	if accepted && h.updates != nil {
		h.updates.EmitToSession(sess.ID, types.ClickEvent{
			Type: types.EventClickRecorded,
			Lat:  req.Lat,
			Lon:  req.Lon,
		})
	}

	st := sess.Store.Get()
	c.JSON(http.StatusOK, ClickResponse{Accepted: accepted, LastClick: st.LastClick})
}

// UpdateParameters handles POST /v1/session/parameters
func (h *SessionHandler) UpdateParameters(c *gin.Context) {
	sess := h.session(c)

	var req ParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	sess.Store.Apply(func(st *session.State) {
		st.Params = session.RunParams{
			WatershedID:  req.WatershedID,
			KnownAreaKm2: req.KnownAreaKm2,
		}
	})

	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

func (h *SessionHandler) session(c *gin.Context) *delineate.Session {
	sessionID, _ := middleware.GetSessionID(c)
	return h.manager.GetOrCreate(sessionID)
}

func (h *SessionHandler) toSessionResponse(sess *delineate.Session) SessionResponse {
	st := sess.Store.Get()
	rs := sess.Invoker.Status()

	resp := SessionResponse{
		ID:         sess.ID,
		Status:     session.DeriveStatus(st, rs.Running, rs.LastError),
		LastClick:  st.LastClick,
		Parameters: st.Params,
		LastError:  rs.LastError,
	}
	if st.Run != nil {
		resp.Run = toRunSummary(st.Run)
	}
	return resp
}

func toRunSummary(run *session.RunResult) *RunSummary {
	overlays := make(map[session.OverlayKind]bool, len(run.Overlays))
	for _, kind := range []session.OverlayKind{session.OverlayStreams, session.OverlaySnapPoint, session.OverlayRequestedPoint} {
		overlays[kind] = run.Overlays[kind] != nil
	}
	layerErrors := run.LayerErrors
	if layerErrors == nil {
		layerErrors = []session.LayerError{}
	}
	return &RunSummary{
		ID:           run.ID,
		ArtifactPath: run.ArtifactPath,
		Overlays:     overlays,
		LayerErrors:  layerErrors,
		Viewport:     run.Viewport,
	}
}
