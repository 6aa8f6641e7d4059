package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/dentest-backend/internal/http/response"
	"github.com/yungbote/dentest-backend/internal/services"
)

type ContentHandler struct {
	contentService services.ContentService
}

func NewContentHandler(contentService services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// GET /api/sections/:section where :section is an exam type.
func (h *ContentHandler) ListSections(c *gin.Context) {
	sections, err := h.contentService.ListSections(c.Request.Context(), c.Param("section"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, sections)
}

// GET /api/sections/:section/subjects
func (h *ContentHandler) ListSubjects(c *gin.Context) {
	sectionID, ok := uuidParam(c, "section")
	if !ok {
		return
	}
	subjects, err := h.contentService.ListSubjects(c.Request.Context(), sectionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, subjects)
}

// GET /api/sections/:section/with-subjects
func (h *ContentHandler) SectionWithSubjects(c *gin.Context) {
	sectionID, ok := uuidParam(c, "section")
	if !ok {
		return
	}
	section, err := h.contentService.GetSectionWithSubjects(c.Request.Context(), sectionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, section)
}

// GET /api/questions/subject/:id
func (h *ContentHandler) ListQuestionsBySubject(c *gin.Context) {
	subjectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	questions, err := h.contentService.ListQuestionsBySubject(c.Request.Context(), subjectID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, questions)
}
