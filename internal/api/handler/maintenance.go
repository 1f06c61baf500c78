package handler

import (
	"crypto/subtle"
	"net/http"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/localization"

	"github.com/gin-gonic/gin"
)

const maintenanceHeader = "X-Maintenance-Token"

// CleanupResolved runs one retention sweep. The endpoint is disabled when no
// maintenance token is configured.
func (h *Handler) CleanupResolved(c *gin.Context) {
	token := c.GetHeader(maintenanceHeader)
	if h.MaintenanceToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.MaintenanceToken)) != 1 {
		respondError(c, apperr.Unauthenticated("Invalid maintenance token"))
		return
	}

	res, err := h.Sweeper.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": apperr.As(err).Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": h.notice(c, localization.NoticeCleanupDone),
		"deleted": res.Deleted,
	})
}
