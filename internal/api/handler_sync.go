package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printer-fleet-backend/internal/model"
)

// StartSync handles POST /api/sync: dispatch a manual poll of the whole
// fleet. The response carries the batch record; progress is tracked through
// GET /api/sync/history.
func (h *Handler) StartSync(c *gin.Context) {
	batch, err := h.dispatcher.SyncAll(c.Request.Context(), model.SyncTypeManual)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start sync"})
		return
	}
	c.JSON(http.StatusAccepted, batch)
}

// ListSyncHistory handles GET /api/sync/history?limit=N.
func (h *Handler) ListSyncHistory(c *gin.Context) {
	batches, err := h.store.ListSyncHistory(c.Request.Context(), queryLimit(c, 20))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sync history"})
		return
	}
	c.JSON(http.StatusOK, batches)
}
