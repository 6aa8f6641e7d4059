package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/dentest-backend/internal/http/response"
	"github.com/yungbote/dentest-backend/internal/services"
)

type QuizSessionHandler struct {
	quizSessionService services.QuizSessionService
}

func NewQuizSessionHandler(quizSessionService services.QuizSessionService) *QuizSessionHandler {
	return &QuizSessionHandler{quizSessionService: quizSessionService}
}

// POST /api/quiz-sessions/subject/:id
func (h *QuizSessionHandler) StartSubject(c *gin.Context) {
	subjectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.quizSessionService.StartSubject(c.Request.Context(), subjectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// POST /api/quiz-sessions/custom
// body: { "subject_ids": [...], "filter": "...", "limit": 20 }
func (h *QuizSessionHandler) StartCustom(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	view, err := h.quizSessionService.StartCustom(c.Request.Context(), req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// GET /api/quiz-sessions/active
func (h *QuizSessionHandler) Active(c *gin.Context) {
	view, err := h.quizSessionService.Active(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/quiz-sessions/:id?question_id=
func (h *QuizSessionHandler) View(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := optionalUUIDQuery(c, "question_id")
	if !ok {
		return
	}
	view, err := h.quizSessionService.View(c.Request.Context(), sessionID, questionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/quiz-sessions/:id/check
// body: { "question_id": "...", "selected": "option2" }; question_id defaults to the current question.
func (h *QuizSessionHandler) Check(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		QuestionID string `json:"question_id" binding:"omitempty,uuid"`
		Selected   string `json:"selected" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	questionID := uuid.Nil
	if req.QuestionID != "" {
		questionID = uuid.MustParse(req.QuestionID)
	}
	res, err := h.quizSessionService.Check(c.Request.Context(), sessionID, questionID, req.Selected)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/quiz-sessions/:id/next
func (h *QuizSessionHandler) Next(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	step, err := h.quizSessionService.Next(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, step)
}

// POST /api/quiz-sessions/:id/finish
func (h *QuizSessionHandler) Finish(c *gin.Context) {
	sessionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.quizSessionService.Finish(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/quiz-attempts?limit=
func (h *QuizSessionHandler) ListAttempts(c *gin.Context) {
	attempts, err := h.quizSessionService.ListAttempts(c.Request.Context(), intQuery(c, "limit", 0))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, attempts)
}

// GET /api/quiz-attempts/:id
func (h *QuizSessionHandler) GetAttempt(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.quizSessionService.GetAttempt(c.Request.Context(), attemptID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
