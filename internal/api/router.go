package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"printer-fleet-backend/config"
	"printer-fleet-backend/internal/mw"
	"printer-fleet-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, dispatcher Dispatcher, discoverer Discoverer) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(cfg, s, dispatcher, discoverer)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), int(cfg.Server.RateLimitPerSec))

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/printers", caching, handler.ListPrinters)
		api.GET("/printers/:uuid", handler.GetPrinter)
		api.GET("/printers/:uuid/snapshots", handler.ListSnapshots)
		api.GET("/printers/:uuid/logs", handler.ListPrintLogs)
		api.POST("/printers/:uuid/poll", handler.PollPrinter)

		api.GET("/alerts", handler.ListAlerts)
		api.POST("/alerts/:uuid/acknowledge", handler.AcknowledgeAlert)
		api.POST("/alerts/:uuid/resolve", handler.ResolveAlert)

		api.POST("/sync", handler.StartSync)
		api.GET("/sync/history", handler.ListSyncHistory)

		api.POST("/discovery", handler.RunDiscovery)

		api.GET("/oids", caching, handler.ListOidEntries)
	}

	return r
}
