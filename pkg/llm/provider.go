// Package llm 提供统一的 LLM 供应商抽象层。
// 支持 Embedding 和 Chat 使用不同供应商的模型。
package llm

import (
	"context"
	"fmt"
	"sync"
)

// EmbeddingProvider 定义 Embedding 供应商接口。
type EmbeddingProvider interface {
	// Embed 为多个文本生成向量嵌入。
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle 为单个文本生成向量嵌入。
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name 返回供应商名称。
	Name() string
}

// ChatProvider 定义 Chat 供应商接口。
type ChatProvider interface {
	// Chat 进行多轮对话。opts 为 nil 时使用供应商默认参数。
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)

	// Name 返回供应商名称。
	Name() string

	// Model 返回当前配置的模型名称。
	Model() string
}

// Message 表示对话中的一条消息。
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role 定义消息角色。
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatOptions 单次调用的生成参数。
type ChatOptions struct {
	// Temperature 控制生成文本的随机性，范围 0.0-2.0。
	Temperature float64

	// MaxTokens 最大生成 token 数。
	MaxTokens int
}

// ChatResponse 对话响应。
type ChatResponse struct {
	// Content 生成的文本内容。
	Content string

	// Model 实际使用的模型名称。
	Model string

	// TokenUsage token 使用统计（供应商未返回时为 nil）。
	TokenUsage *TokenUsage
}

// TokenUsage token 使用统计。
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// EmbeddingProviderFactory Embedding 供应商工厂函数类型。
type EmbeddingProviderFactory func(config map[string]any) (EmbeddingProvider, error)

// ChatProviderFactory Chat 供应商工厂函数类型。
type ChatProviderFactory func(config map[string]any) (ChatProvider, error)

// registry 供应商注册表。
var registry = &providerRegistry{
	embeddingProviders: make(map[string]EmbeddingProviderFactory),
	chatProviders:      make(map[string]ChatProviderFactory),
}

type providerRegistry struct {
	mu                 sync.RWMutex
	embeddingProviders map[string]EmbeddingProviderFactory
	chatProviders      map[string]ChatProviderFactory
}

// RegisterEmbeddingProvider 注册 Embedding 供应商工厂。
func RegisterEmbeddingProvider(name string, factory EmbeddingProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.embeddingProviders[name] = factory
}

// RegisterChatProvider 注册 Chat 供应商工厂。
func RegisterChatProvider(name string, factory ChatProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.chatProviders[name] = factory
}

// NewEmbeddingProvider 根据名称创建 Embedding 供应商实例。
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	registry.mu.RLock()
	factory, ok := registry.embeddingProviders[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown embedding provider: %s", name)
	}

	return factory(config)
}

// NewChatProvider 根据名称创建 Chat 供应商实例。
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	registry.mu.RLock()
	factory, ok := registry.chatProviders[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown chat provider: %s", name)
	}

	return factory(config)
}

// ListProviders 列出所有已注册的供应商名称。
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string

	for name := range registry.embeddingProviders {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range registry.chatProviders {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	return names
}
