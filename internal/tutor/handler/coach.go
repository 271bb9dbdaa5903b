package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/tutor-x/internal/tutor/biz"
	"github.com/kart-io/tutor-x/pkg/response"
)

// CoachHandler handles the teaching endpoints built on prompt templates.
type CoachHandler struct {
	coach *biz.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coach *biz.CoachService) *CoachHandler {
	return &CoachHandler{coach: coach}
}

// SocraticRequest is the body of POST /api/socratic/question.
type SocraticRequest struct {
	Question  string            `json:"question"`
	StudentID string            `json:"studentId"`
	Metadata  biz.CourseContext `json:"metadata"`
}

// Socratic guides the student with questions instead of answers.
func (h *CoachHandler) Socratic(c *gin.Context) {
	var req SocraticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Question == "" {
		response.BadRequest(c, "Question is required")
		return
	}
	if req.StudentID == "" {
		req.StudentID = DefaultStudentID
	}

	result, err := h.coach.Socratic(c.Request.Context(), req.Question, req.StudentID, req.Metadata)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.OK(c, response.H{
		"type":     "socratic_guidance",
		"guidance": result.Guidance,
		"model":    result.Model,
		"usage":    result.Usage,
	})
}

// VivaRequest is the body of POST /api/viva/validate.
type VivaRequest struct {
	Content   string `json:"content"`
	StudentID string `json:"studentId"`
}

// Viva generates oral defense questions for a code submission.
func (h *CoachHandler) Viva(c *gin.Context) {
	var req VivaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	assessment, err := h.coach.Viva(c.Request.Context(), req.Content)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Data(c, assessment)
}

// TranslateRequest is the body of POST /api/translate/concept.
type TranslateRequest struct {
	Concept         string `json:"concept"`
	TargetLanguage  string `json:"targetLanguage"`
	CulturalContext bool   `json:"culturalContext"`
}

// Translate renders a concept or passage in the target language.
func (h *CoachHandler) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Concept == "" {
		response.BadRequest(c, "Concept/text is required")
		return
	}
	if req.TargetLanguage == "" {
		req.TargetLanguage = "en"
	}

	result, err := h.coach.Translate(c.Request.Context(), req.Concept, req.TargetLanguage, req.CulturalContext)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.OK(c, response.H{
		"translation":    result.Translation,
		"targetLanguage": result.TargetLanguage,
		"model":          result.Model,
	})
}

// RubricRequest is the body of POST /api/rubric/evaluate.
type RubricRequest struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

// Rubric evaluates a submission against academic or industry criteria.
func (h *CoachHandler) Rubric(c *gin.Context) {
	var req RubricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.coach.Evaluate(c.Request.Context(), req.Content, req.Mode)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.OK(c, response.H{
		"evaluation": result.Evaluation,
		"mode":       result.Mode,
		"model":      result.Model,
	})
}

// ScheduleRequest is the body of POST /api/schedule/review.
type ScheduleRequest struct {
	StudentID string `json:"studentId"`
}

// Schedule produces a spaced repetition review plan.
func (h *CoachHandler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.StudentID == "" {
		req.StudentID = DefaultStudentID
	}

	plan, err := h.coach.DailyReview(c.Request.Context(), req.StudentID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Data(c, plan)
}

// CourseRequest is the body of POST /api/course/generate.
type CourseRequest struct {
	Title     string `json:"title"`
	Objective string `json:"objective"`
}

// Course generates a module-by-module curriculum for a custom course.
func (h *CoachHandler) Course(c *gin.Context) {
	var req CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Title == "" {
		response.BadRequest(c, "Course title is required")
		return
	}

	curriculum, err := h.coach.GenerateCurriculum(c.Request.Context(), req.Title, req.Objective)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Data(c, curriculum)
}
