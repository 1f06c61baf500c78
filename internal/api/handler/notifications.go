package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	page, err := h.Notifications.Unread(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// OpenNotification marks the message read and tells the client which complaint to open.
func (h *Handler) OpenNotification(c *gin.Context) {
	complaintID, err := h.Notifications.Open(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint_id": complaintID})
}
