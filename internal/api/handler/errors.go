package handler

import (
	"log/slog"

	"complaintdesk/backend/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError renders err as {"error", "code", "fields"} and aborts the chain.
func respondError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Code == apperr.CodeInternal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}

	body := gin.H{"error": e.Message, "code": e.Code}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	c.AbortWithStatusJSON(e.HTTPStatus(), body)
}

// bindJSON decodes the request body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Validation("Invalid request body", nil))
		return false
	}
	return true
}

func (h *Handler) notice(c *gin.Context, key string) string {
	if h.Localizer == nil {
		return ""
	}
	return h.Localizer.GetString(h.Localizer.Language(c.GetHeader("Accept-Language")), key)
}
