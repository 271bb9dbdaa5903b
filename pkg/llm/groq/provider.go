// Package groq 提供 Groq LLM 供应商实现。
// Groq 暴露 OpenAI 兼容的 chat completions API。
//
// 基本用法示例：
//
//	import _ "github.com/kart-io/tutor-x/pkg/llm/groq"
//	import "github.com/kart-io/tutor-x/pkg/llm"
//
//	provider, err := llm.NewChatProvider("groq", map[string]any{
//	    "api_key": "your-api-key",
//	})
package groq

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kart-io/tutor-x/pkg/llm"
	"github.com/kart-io/tutor-x/pkg/utils/httpclient"
	"github.com/kart-io/tutor-x/pkg/utils/json"
)

// ProviderName 是 Groq 供应商的名称标识符
const ProviderName = "groq"

func init() {
	llm.RegisterChatProvider(ProviderName, NewChatProvider)
}

// Config Groq 供应商配置。
type Config struct {
	// BaseURL API 基础地址。
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// APIKey API 密钥。
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// ChatModel 用于对话的模型。
	ChatModel string `json:"chat_model" mapstructure:"chat_model"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://api.groq.com/openai/v1",
		ChatModel: "llama-3.3-70b-versatile",
		Timeout:   30 * time.Second,
	}
}

// Provider Groq 供应商实现。
type Provider struct {
	config *Config
	client *httpclient.Client
}

var _ llm.ChatProvider = (*Provider)(nil)

// NewChatProvider 从配置 map 创建 Groq 供应商。
func NewChatProvider(configMap map[string]any) (llm.ChatProvider, error) {
	cfg := DefaultConfig()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["api_key"].(string); ok && v != "" {
		cfg.APIKey = v
	}
	if v, ok := configMap["chat_model"].(string); ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: api_key 是必需的")
	}

	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig 使用结构化配置创建 Groq 供应商。
func NewProviderWithConfig(cfg *Config) *Provider {
	return &Provider{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
	}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

// Model 返回配置的模型名称。
func (p *Provider) Model() string {
	return p.config.ChatModel
}

// chatRequest Groq chat API 请求体（OpenAI 兼容）。
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse Groq chat API 响应体。
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Chat 进行多轮对话。
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.ChatResponse, error) {
	chatMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	reqBody := chatRequest{
		Model:       p.config.ChatModel,
		Messages:    chatMessages,
		Stream:      false,
		Temperature: 0.7,
		MaxTokens:   2048,
	}
	if opts != nil {
		reqBody.Temperature = opts.Temperature
		if opts.MaxTokens > 0 {
			reqBody.MaxTokens = opts.MaxTokens
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	var chatResp chatResponse
	if err := p.client.DoJSON(req, &chatResp); err != nil {
		return nil, err
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("未返回响应内容")
	}

	model := chatResp.Model
	if model == "" {
		model = p.config.ChatModel
	}

	return &llm.ChatResponse{
		Content: chatResp.Choices[0].Message.Content,
		Model:   model,
		TokenUsage: &llm.TokenUsage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		},
	}, nil
}
