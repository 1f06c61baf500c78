package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type postMessageRequest struct {
	Message string `json:"message"`
}

func (h *Handler) ListThread(c *gin.Context) {
	thread, err := h.Messages.Thread(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": thread})
}

func (h *Handler) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	posted, err := h.Messages.Post(c.Request.Context(), principal(c), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": posted})
}

func (h *Handler) MarkRead(c *gin.Context) {
	m, err := h.Messages.MarkRead(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": m})
}
