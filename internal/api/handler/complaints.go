package handler

import (
	"net/http"

	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/localization"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateComplaint(c *gin.Context) {
	var req complaint.CreateInput
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.Complaints.Create(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	notice := localization.NoticeComplaintCreated
	if req.Emergency {
		notice = localization.NoticeEmergencyCreated
	}
	c.JSON(http.StatusCreated, gin.H{"complaint": created, "notice": h.notice(c, notice)})
}

// ListComplaints supports ?status= and, for admins, ?student_id=.
func (h *Handler) ListComplaints(c *gin.Context) {
	views, err := h.Complaints.List(c.Request.Context(), principal(c), complaint.ListFilter{
		StudentID: c.Query("student_id"),
		Status:    c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": views})
}

func (h *Handler) ComplaintStats(c *gin.Context) {
	counts, err := h.Complaints.CountByStatus(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts, "total": counts.Total()})
}

func (h *Handler) GetComplaint(c *gin.Context) {
	found, err := h.Complaints.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	var req complaint.StatusInput
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.Complaints.UpdateStatus(c.Request.Context(), principal(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint": updated, "notice": h.notice(c, localization.NoticeComplaintUpdated)})
}

// Labels returns display labels for categories and statuses in the request language.
func (h *Handler) Labels(c *gin.Context) {
	if h.Localizer == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	lang := h.Localizer.Language(c.GetHeader("Accept-Language"))
	c.JSON(http.StatusOK, gin.H{"language": lang, "labels": h.Localizer.Labels(lang)})
}
