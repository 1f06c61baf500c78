package handler

import (
	"log/slog"
	"strings"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const principalKey = "complaintdesk_principal"

// Authenticate resolves the bearer token into a principal. WebSocket upgrades
// may pass the token as ?access_token= since browsers cannot set headers on them.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respondError(c, apperr.Unauthenticated("Authorization token missing"))
			return
		}
		p, err := h.Identity.Resolve(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if websocket.IsWebSocketUpgrade(c.Request) {
		return c.Query("access_token")
	}
	return ""
}

// principal returns the caller set by Authenticate.
func principal(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Principal{}
}

// RequestLogger logs one line per request through slog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
