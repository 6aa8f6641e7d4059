package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/http/response"
	"github.com/yungbote/dentest-backend/internal/services"
)

type StatusHandler struct {
	statusService services.StatusService
}

func NewStatusHandler(statusService services.StatusService) *StatusHandler {
	return &StatusHandler{statusService: statusService}
}

// POST /api/user-question-status/update
func (h *StatusHandler) Update(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required,uuid"`
		Selected   string `json:"selected" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	_, correct, err := h.statusService.RecordAnswer(c.Request.Context(), uuid.MustParse(req.QuestionID), req.Selected)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"detail": "Saved", "is_correct": correct})
}

// GET /api/user-question-status/subject/:id
func (h *StatusHandler) ListBySubject(c *gin.Context) {
	subjectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.statusService.ListBySubject(c.Request.Context(), subjectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/user-question-status/all
func (h *StatusHandler) ListAll(c *gin.Context) {
	rows, err := h.statusService.ListAll(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, rows)
}
