package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/store"
)

// ListAlerts handles GET /api/alerts?status=open.
func (h *Handler) ListAlerts(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", model.AlertStatusOpen, model.AlertStatusAcknowledged, model.AlertStatusResolved:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unknown alert status"})
		return
	}
	alerts, err := h.store.ListAlerts(c.Request.Context(), status)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alerts"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// AcknowledgeAlert handles POST /api/alerts/{uuid}/acknowledge. Once
// acknowledged, automated evaluation leaves the alert alone until a human
// resolves it.
func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	alert, ok := h.loadAlert(c)
	if !ok {
		return
	}
	if alert.Status != model.AlertStatusOpen {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Only open alerts can be acknowledged"})
		return
	}
	now := time.Now().UTC()
	alert.Status = model.AlertStatusAcknowledged
	alert.AcknowledgedAt = &now
	if err := h.store.SaveAlert(c.Request.Context(), alert); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

// ResolveAlert handles POST /api/alerts/{uuid}/resolve.
func (h *Handler) ResolveAlert(c *gin.Context) {
	alert, ok := h.loadAlert(c)
	if !ok {
		return
	}
	if alert.Status == model.AlertStatusResolved {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Alert is already resolved"})
		return
	}
	now := time.Now().UTC()
	alert.Status = model.AlertStatusResolved
	alert.ResolvedAt = &now
	if err := h.store.SaveAlert(c.Request.Context(), alert); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update alert"})
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (h *Handler) loadAlert(c *gin.Context) (*model.Alert, bool) {
	alert, err := h.store.GetAlertByUUID(c.Request.Context(), c.Param("uuid"))
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return nil, false
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve alert"})
		return nil, false
	}
	return alert, true
}
