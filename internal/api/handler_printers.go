package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"printer-fleet-backend/internal/model"
	"printer-fleet-backend/internal/store"
)

// ListPrinters handles GET /api/printers.
func (h *Handler) ListPrinters(c *gin.Context) {
	printers, err := h.store.ListPrinters(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve printers"})
		return
	}
	c.JSON(http.StatusOK, printers)
}

// GetPrinter handles GET /api/printers/{uuid}. The latest snapshot is
// embedded so one request answers the common dashboard question.
func (h *Handler) GetPrinter(c *gin.Context) {
	printer, ok := h.loadPrinter(c)
	if !ok {
		return
	}

	response := gin.H{"printer": printer}
	snap, err := h.store.LatestSnapshot(c.Request.Context(), printer.ID)
	if err == nil {
		response["latest_snapshot"] = snap
	} else if !errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve snapshot"})
		return
	}
	c.JSON(http.StatusOK, response)
}

// ListSnapshots handles GET /api/printers/{uuid}/snapshots?limit=N.
func (h *Handler) ListSnapshots(c *gin.Context) {
	printer, ok := h.loadPrinter(c)
	if !ok {
		return
	}
	snaps, err := h.store.RecentSnapshots(c.Request.Context(), printer.ID, queryLimit(c, 20))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve snapshots"})
		return
	}
	c.JSON(http.StatusOK, snaps)
}

// ListPrintLogs handles GET /api/printers/{uuid}/logs?limit=N.
func (h *Handler) ListPrintLogs(c *gin.Context) {
	printer, ok := h.loadPrinter(c)
	if !ok {
		return
	}
	logs, err := h.store.ListPrintLogs(c.Request.Context(), printer.ID, queryLimit(c, 50))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve print logs"})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// PollPrinter handles POST /api/printers/{uuid}/poll. The poll itself runs
// on the worker pool; the request only queues it.
func (h *Handler) PollPrinter(c *gin.Context) {
	printer, ok := h.loadPrinter(c)
	if !ok {
		return
	}
	if !printer.Pollable() {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Printer does not support SNMP polling"})
		return
	}
	if !h.dispatcher.EnqueuePoll(printer.ID) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "A poll for this printer is already queued"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// ListOidEntries handles GET /api/oids?category=consumable.
func (h *Handler) ListOidEntries(c *gin.Context) {
	entries, err := h.store.ListOidEntries(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve oid catalog"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) loadPrinter(c *gin.Context) (*model.Printer, bool) {
	printer, err := h.store.GetPrinterByUUID(c.Request.Context(), c.Param("uuid"))
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Printer not found"})
		return nil, false
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve printer"})
		return nil, false
	}
	return printer, true
}

func queryLimit(c *gin.Context, fallback int) int {
	raw := c.Query("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return fallback
	}
	return limit
}
