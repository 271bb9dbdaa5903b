package handler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/tutor-x/internal/tutor/biz"
	"github.com/kart-io/tutor-x/pkg/response"
)

// allowedExtensions lists the upload types accepted by the API.
var allowedExtensions = []string{"pdf", "txt", "doc", "docx"}

// StudyHandler handles document upload and document Q&A requests.
type StudyHandler struct {
	study         *biz.StudyService
	uploadDir     string
	maxUploadSize int64
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(study *biz.StudyService, uploadDir string, maxUploadSize int64) *StudyHandler {
	return &StudyHandler{
		study:         study,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
	}
}

// Upload stores a study material file and indexes its content.
func (h *StudyHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "No file provided")
		return
	}

	studentID := c.PostForm("studentId")
	if studentID == "" {
		studentID = DefaultStudentID
	}

	if file.Filename == "" {
		response.BadRequest(c, "No file selected")
		return
	}

	if !allowedFile(file.Filename) {
		response.BadRequest(c, fmt.Sprintf("Invalid file type. Allowed: %s", strings.Join(allowedExtensions, ", ")))
		return
	}

	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		response.BadRequest(c, fmt.Sprintf("File too large. Maximum size: %d bytes", h.maxUploadSize))
		return
	}

	filename := secureFilename(file.Filename)
	studentDir := filepath.Join(h.uploadDir, filepath.Base(studentID))
	if err := os.MkdirAll(studentDir, 0o755); err != nil {
		response.InternalError(c, err.Error())
		return
	}

	filePath := filepath.Join(studentDir, filename)
	if err := c.SaveUploadedFile(file, filePath); err != nil {
		response.InternalError(c, err.Error())
		return
	}

	result, err := h.study.ProcessFile(c.Request.Context(), studentID, filePath)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Data(c, result)
}

// AskRequest is the body of POST /api/rag/ask.
type AskRequest struct {
	Question  string `json:"question"`
	StudentID string `json:"studentId"`
}

// Ask answers a question from the student's uploaded materials.
func (h *StudyHandler) Ask(c *gin.Context) {
	var req AskRequest
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

	result, err := h.study.Ask(c.Request.Context(), req.StudentID, req.Question)
	if err != nil {
		if errors.Is(err, biz.ErrNoDocuments) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.OK(c, response.H{
		"answer":      result.Answer,
		"sources":     result.Sources,
		"num_sources": result.NumSources,
	})
}

// Summary returns an overview of the student's uploaded materials.
func (h *StudyHandler) Summary(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		studentID = DefaultStudentID
	}

	response.Data(c, h.study.Summary(c.Request.Context(), studentID))
}

func allowedFile(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// secureFilename strips path components and characters that are unsafe in
// file names.
func secureFilename(filename string) string {
	base := filepath.Base(filename)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
