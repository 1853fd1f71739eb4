package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbetancur/basinview/internal/api/middleware"
	"github.com/mbetancur/basinview/internal/delineate"
	"github.com/mbetancur/basinview/internal/scene"
)

type SceneHandler struct {
	manager *delineate.Manager
}

func NewSceneHandler(manager *delineate.Manager) *SceneHandler {
	return &SceneHandler{manager: manager}
}

// GetScene handles GET /v1/session/scene
func (h *SceneHandler) GetScene(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)
	sess := h.manager.GetOrCreate(sessionID)

	c.JSON(http.StatusOK, scene.Compose(sess.Store.Get(), sess.Status()))
}
