package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/dentest-backend/internal/http/response"
	"github.com/yungbote/dentest-backend/internal/services"
)

type ProgressHandler struct {
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GET /api/user-progress
func (h *ProgressHandler) UserProgress(c *gin.Context) {
	out, err := h.progressService.UserProgress(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// POST /api/subjects/progress
func (h *ProgressHandler) SubjectsProgress(c *gin.Context) {
	var req struct {
		SubjectIDs []string `json:"subject_ids" binding:"required,min=1,dive,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	out, err := h.progressService.SubjectsProgress(c.Request.Context(), parseIDs(req.SubjectIDs))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/sections/:section/progress
func (h *ProgressHandler) SectionProgress(c *gin.Context) {
	sectionID, ok := uuidParam(c, "section")
	if !ok {
		return
	}
	out, err := h.progressService.SectionProgress(c.Request.Context(), sectionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}
