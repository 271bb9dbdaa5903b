package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/tutor-x/pkg/llm"
	"github.com/kart-io/tutor-x/pkg/response"
)

// HealthHandler reports service liveness and provider configuration.
type HealthHandler struct {
	chat         llm.ChatProvider
	embedder     llm.EmbeddingProvider
	apiKeyLoaded bool
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(chat llm.ChatProvider, embedder llm.EmbeddingProvider, apiKeyLoaded bool) *HealthHandler {
	return &HealthHandler{
		chat:         chat,
		embedder:     embedder,
		apiKeyLoaded: apiKeyLoaded,
	}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	response.OK(c, response.H{
		"status":         "healthy",
		"timestamp":      time.Now().Format(time.RFC3339),
		"chat_provider":  h.chat.Name(),
		"chat_model":     h.chat.Model(),
		"embed_provider": h.embedder.Name(),
		"api_key_loaded": h.apiKeyLoaded,
	})
}
