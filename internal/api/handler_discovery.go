package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printer-fleet-backend/internal/discovery"
)

type discoveryRequest struct {
	Target string `json:"target" binding:"required"`
	Async  bool   `json:"async"`
}

// RunDiscovery handles POST /api/discovery. By default the scan runs within
// the request and returns the identities of every device that answered;
// persisting them as printers is a separate, explicit step for the caller.
// With async set the scan is queued fire-and-forget and a 202 is returned.
func (h *Handler) RunDiscovery(c *gin.Context) {
	var req discoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "A scan target is required"})
		return
	}

	if req.Async {
		// Validate the target up front so a typo fails the request, not a
		// background goroutine.
		if _, err := discovery.ExpandTarget(req.Target); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !h.dispatcher.EnqueueDiscovery(req.Target) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Discovery is not available"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "Discovery scan queued", "target": req.Target})
		return
	}

	report, err := h.discoverer.Scan(c.Request.Context(), req.Target)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
