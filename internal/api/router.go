package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"officehours-backend/config"
	"officehours-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(mw.Logger(h.log), gin.Recovery())

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// The catalog only changes on restart.
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/catalog", caching, h.GetCatalog)

		api.GET("/offices", h.GetOffices)
		api.PUT("/offices/:id/enabled", h.PutOfficeEnabled)
		api.PUT("/offices/:id/notifications/:event", h.PutNotificationTime)

		api.GET("/reminders", h.GetReminders)
		api.POST("/reminders/resync", h.PostResync)
		api.POST("/reminders/test", h.PostTestNotification)
		api.POST("/reminders/test/daily", h.PostDailyTestNotification)
		api.POST("/reminders/test/series", h.PostTestSeries)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
