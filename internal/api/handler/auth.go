package handler

import (
	"net/http"

	"complaintdesk/backend/internal/identity"
	"complaintdesk/backend/internal/localization"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterStudent(c *gin.Context) {
	var req identity.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.Identity.RegisterStudent(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.session(c, http.StatusCreated, sess, localization.NoticeRegistered)
}

func (h *Handler) LoginStudent(c *gin.Context) {
	var req identity.StudentLogin
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.Identity.LoginStudent(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.session(c, http.StatusOK, sess, localization.NoticeLoginSuccess)
}

func (h *Handler) LoginAdmin(c *gin.Context) {
	var req identity.AdminLogin
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.Identity.LoginAdmin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.session(c, http.StatusOK, sess, localization.NoticeAdminLogin)
}

// Me повертає профіль поточного користувача.
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.Identity.Profile(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) session(c *gin.Context, status int, sess *identity.Session, notice string) {
	c.JSON(status, gin.H{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"profile":    sess.Profile,
		"notice":     h.notice(c, notice),
	})
}
