package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the gin engine with every route mounted.
func (h *Handler) Router(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", maintenanceHeader},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/student/register", h.RegisterStudent)
		auth.POST("/student/login", h.LoginStudent)
		auth.POST("/admin/login", h.LoginAdmin)

		api.POST("/maintenance/cleanup-resolved-complaints", h.CleanupResolved)
		api.GET("/labels", h.Labels)
	}

	authed := api.Group("", h.Authenticate())
	{
		authed.GET("/me", h.Me)

		authed.POST("/complaints", h.CreateComplaint)
		authed.GET("/complaints", h.ListComplaints)
		authed.GET("/complaints/stats", h.ComplaintStats)
		authed.GET("/complaints/:id", h.GetComplaint)
		authed.PATCH("/complaints/:id/status", h.UpdateComplaintStatus)
		authed.GET("/complaints/:id/messages", h.ListThread)
		authed.POST("/complaints/:id/messages", h.PostMessage)
		authed.POST("/messages/:id/read", h.MarkRead)

		authed.GET("/notifications", h.ListNotifications)
		authed.POST("/notifications/:id/open", h.OpenNotification)

		authed.GET("/live", h.ServeLive)
		authed.GET("/notifications/live", h.ServeNotificationFeed)
	}

	return r
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Health != nil {
		if err := h.Health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
