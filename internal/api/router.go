package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"module-registry-backend/config"
	"module-registry-backend/internal/mw"
	"module-registry-backend/internal/registry"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, svc *registry.Service) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(svc)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5)

	ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/modules", caching, handler.ListModules)
		api.POST("/modules", handler.RegisterModule)
		api.POST("/modules/:id/retire", handler.RetireModule)
		api.POST("/modules/:id/indoor-periods", handler.MarkIndoor)

		api.GET("/groups/:group/metadata", caching, handler.GetGroupMetadata)
		api.GET("/groups/:group/site", caching, handler.GetGroupSite)

		api.POST("/exclusions", handler.AddExclusion)
		api.POST("/snow-days", handler.AddSnowDay)
		api.POST("/sync", handler.Sync)
	}

	return r
}
