package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/dentest-backend/internal/http/response"
	"github.com/yungbote/dentest-backend/internal/services"
)

type CustomQuizHandler struct {
	customQuizService  services.CustomQuizService
	quizSessionService services.QuizSessionService
}

func NewCustomQuizHandler(customQuizService services.CustomQuizService, quizSessionService services.QuizSessionService) *CustomQuizHandler {
	return &CustomQuizHandler{
		customQuizService:  customQuizService,
		quizSessionService: quizSessionService,
	}
}

type generateRequest struct {
	SubjectIDs []string `json:"subject_ids" binding:"required,min=1,dive,uuid"`
	Filter     string   `json:"filter"`
	Limit      *int     `json:"limit"`
}

func (r generateRequest) input() services.GenerateInput {
	return services.GenerateInput{
		SubjectIDs: parseIDs(r.SubjectIDs),
		Filter:     r.Filter,
		Limit:      r.Limit,
	}
}

// POST /api/custom-quiz
// body: { "subject_ids": [...], "filter": "all|unanswered|correct|incorrect", "limit": 20 }
// Responds with the bare array of sampled questions.
func (h *CustomQuizHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	questions, err := h.customQuizService.Generate(c.Request.Context(), req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, questions)
}

// POST /api/custom-quizzes
// body: { "title": "...", "question_ids": [...] } or { "title": "...", "generate": {...} }
func (h *CustomQuizHandler) Save(c *gin.Context) {
	var req struct {
		Title       string           `json:"title" binding:"required"`
		QuestionIDs []string         `json:"question_ids" binding:"omitempty,dive,uuid"`
		Generate    *generateRequest `json:"generate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondBindError(c, err)
		return
	}
	in := services.SaveCustomQuizInput{
		Title:       req.Title,
		QuestionIDs: parseIDs(req.QuestionIDs),
	}
	if req.Generate != nil {
		g := req.Generate.input()
		in.Generate = &g
	}
	quiz, err := h.customQuizService.Save(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, quiz)
}

// GET /api/custom-quizzes
func (h *CustomQuizHandler) List(c *gin.Context) {
	quizzes, err := h.customQuizService.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, quizzes)
}

// GET /api/custom-quizzes/:id
func (h *CustomQuizHandler) Get(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	quiz, err := h.customQuizService.Get(c.Request.Context(), quizID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, quiz)
}

// POST /api/custom-quizzes/:id/sessions
func (h *CustomQuizHandler) StartSession(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.quizSessionService.StartSaved(c.Request.Context(), quizID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, view)
}
