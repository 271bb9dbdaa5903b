// Package handler provides HTTP handlers for the tutoring API.
package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/tutor-x/internal/tutor/biz"
	"github.com/kart-io/tutor-x/pkg/response"
)

// DefaultStudentID is used when a request does not carry a student ID.
const DefaultStudentID = "student_001"

// ChatHandler handles basic completion and session management requests.
type ChatHandler struct {
	chat *biz.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *biz.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// CompletionOptions are the per-request generation overrides.
type CompletionOptions struct {
	SystemPrompt string  `json:"systemPrompt"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"maxTokens"`
	SessionID    string  `json:"sessionId"`
}

// CompletionRequest is the body of POST /api/chat/completion.
type CompletionRequest struct {
	Prompt  string            `json:"prompt"`
	Options CompletionOptions `json:"options"`
}

// Completion runs a single chat completion.
func (h *ChatHandler) Completion(c *gin.Context) {
	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Prompt == "" {
		response.BadRequest(c, "Prompt is required")
		return
	}

	result, err := h.chat.Complete(c.Request.Context(), &biz.CompleteRequest{
		SessionID:    req.Options.SessionID,
		SystemPrompt: req.Options.SystemPrompt,
		UserPrompt:   req.Prompt,
		Temperature:  req.Options.Temperature,
		MaxTokens:    req.Options.MaxTokens,
	})
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Data(c, response.H{
		"content": result.Content,
		"model":   result.Model,
		"usage":   result.TokenUsage,
	})
}

// ClearSessionRequest is the body of POST /api/session/clear.
type ClearSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// ClearSession drops the conversation history of a session.
func (h *ChatHandler) ClearSession(c *gin.Context) {
	var req ClearSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.SessionID != "" {
		if err := h.chat.ClearSession(c.Request.Context(), req.SessionID); err != nil {
			response.InternalError(c, err.Error())
			return
		}
	}

	response.OK(c, response.H{
		"message": fmt.Sprintf("Session %s cleared", req.SessionID),
	})
}
