// Package ollama 提供 Ollama LLM 供应商实现，用于本地 CPU 推理。
package ollama

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

const ProviderName = "ollama"

func init() {
	llm.RegisterEmbeddingProvider(ProviderName, NewEmbeddingProvider)
	llm.RegisterChatProvider(ProviderName, NewChatProvider)
}

// Config Ollama 供应商配置。
type Config struct {
	BaseURL    string        `json:"base_url" mapstructure:"base_url"`
	EmbedModel string        `json:"embed_model" mapstructure:"embed_model"`
	ChatModel  string        `json:"chat_model" mapstructure:"chat_model"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "http://localhost:11434",
		EmbedModel: "nomic-embed-text",
		ChatModel:  "llama3.2",
		Timeout:    120 * time.Second,
	}
}

// Provider Ollama 供应商实现。
type Provider struct {
	config *Config
	client *httpclient.Client
}

var (
	_ llm.EmbeddingProvider = (*Provider)(nil)
	_ llm.ChatProvider      = (*Provider)(nil)
)

func newProvider(configMap map[string]any) *Provider {
	cfg := DefaultConfig()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["embed_model"].(string); ok && v != "" {
		cfg.EmbedModel = v
	}
	if v, ok := configMap["chat_model"].(string); ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}

	return NewProviderWithConfig(cfg)
}

// NewEmbeddingProvider 从配置 map 创建 Embedding 供应商。
func NewEmbeddingProvider(configMap map[string]any) (llm.EmbeddingProvider, error) {
	return newProvider(configMap), nil
}

// NewChatProvider 从配置 map 创建 Chat 供应商。
func NewChatProvider(configMap map[string]any) (llm.ChatProvider, error) {
	return newProvider(configMap), nil
}

// NewProviderWithConfig 使用结构化配置创建 Ollama 供应商。
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

// Model 返回配置的 Chat 模型名称。
func (p *Provider) Model() string {
	return p.config.ChatModel
}

// embedRequest Ollama embed API 请求体。
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse Ollama embed API 响应体。
type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed 为多个文本生成向量嵌入。
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embedRequest{
		Model: p.config.EmbedModel,
		Input: texts,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var embedResp embedResponse
	if err := p.client.DoJSON(req, &embedResp); err != nil {
		return nil, err
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("嵌入数量不匹配: 期望 %d，实际 %d", len(texts), len(embedResp.Embeddings))
	}

	return embedResp.Embeddings, nil
}

// EmbedSingle 为单个文本生成向量嵌入。
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("未返回向量嵌入")
	}
	return embeddings[0], nil
}

// chatRequest Ollama chat API 请求体。
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse Ollama chat API 响应体。
type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
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
		Model:    p.config.ChatModel,
		Messages: chatMessages,
		Stream:   false,
	}
	if opts != nil {
		reqBody.Options = map[string]any{
			"temperature": opts.Temperature,
		}
		if opts.MaxTokens > 0 {
			reqBody.Options["num_predict"] = opts.MaxTokens
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var chatResp chatResponse
	if err := p.client.DoJSON(req, &chatResp); err != nil {
		return nil, err
	}

	model := chatResp.Model
	if model == "" {
		model = p.config.ChatModel
	}

	return &llm.ChatResponse{
		Content: chatResp.Message.Content,
		Model:   model,
	}, nil
}

// Ping 检查 Ollama 服务是否可用。
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("连接失败: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("服务不可用，状态码 %d", resp.StatusCode)
	}

	return nil
}
