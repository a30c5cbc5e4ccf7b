package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/noah-isme/pemira/config"
	"github.com/noah-isme/pemira/internal/mw"
	"github.com/noah-isme/pemira/internal/panel"
)

// NewRouter creates and configures the panel's Gin router.
func NewRouter(cfg *config.Config, p *panel.Panel, db *gorm.DB, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(p, db, webpushOptions, cfg.Station.ID)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.Server.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		pg := api.Group("/panel")

		pg.GET("", caching, handler.GetPanel)
		pg.GET("/queue", caching, handler.GetQueue)
		pg.GET("/token", handler.GetToken)
		pg.GET("/logs", handler.GetLogs)
		pg.GET("/history", handler.GetHistory)
		pg.GET("/notification", handler.GetNotification)
		pg.DELETE("/notification", handler.DismissNotification)

		pg.POST("/checkin/scan", handler.ScanCheckin)
		pg.POST("/checkin/manual", handler.ManualCheckin)
		pg.POST("/queue/:entry_id/status", handler.TransitionEntry)
		pg.POST("/queue/:entry_id/approve", handler.ApproveEntry)
		pg.POST("/queue/:entry_id/reject", handler.RejectEntry)
		pg.DELETE("/queue/:entry_id", handler.RemoveEntry)

		pg.POST("/token/rotate", handler.RotateToken)
		pg.POST("/token/pause", handler.PauseToken)
		pg.POST("/token/resume", handler.ResumeToken)
		pg.POST("/sync", handler.Sync)
		pg.POST("/status", handler.SetStatus)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
