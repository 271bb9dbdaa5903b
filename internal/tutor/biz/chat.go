package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/tutor-x/pkg/llm"
	"github.com/kart-io/tutor-x/pkg/llm/structured"
	"github.com/kart-io/tutor-x/pkg/utils/json"
)

// 默认生成参数。
const (
	DefaultSystemPrompt = "You are an expert educational AI assistant."
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 2048

	// structuredTemperature 结构化输出统一使用低温度，降低格式漂移。
	structuredTemperature = 0.3
)

// structuredInstruction 追加到系统提示词的 JSON 输出约束。
const structuredInstruction = "\n\nYou must respond with valid JSON only. " +
	"No markdown, no code blocks, no explanations - just the raw JSON object matching this schema: "

// CompleteRequest 一次补全请求。
type CompleteRequest struct {
	// SessionID 会话标识，为空时不携带历史。
	SessionID string

	// SystemPrompt 系统提示词，为空时使用默认值。
	SystemPrompt string

	// UserPrompt 用户输入。
	UserPrompt string

	// Temperature 生成温度，<= 0 时使用默认值。
	Temperature float64

	// MaxTokens 最大生成 token 数，<= 0 时使用默认值。
	MaxTokens int
}

// CompleteResult 补全结果。
type CompleteResult struct {
	Content    string
	Model      string
	TokenUsage *llm.TokenUsage
}

// ChatService 组装消息、调用 Chat 供应商并维护会话历史。
type ChatService struct {
	provider llm.ChatProvider
	sessions SessionStore
}

// NewChatService 创建对话服务。
func NewChatService(provider llm.ChatProvider, sessions SessionStore) *ChatService {
	return &ChatService{
		provider: provider,
		sessions: sessions,
	}
}

// Provider 返回底层 Chat 供应商。
func (s *ChatService) Provider() llm.ChatProvider {
	return s.provider
}

// ClearSession 清空指定会话的历史。
func (s *ChatService) ClearSession(ctx context.Context, sessionID string) error {
	return s.sessions.Clear(ctx, sessionID)
}

// Complete 执行一次补全。
//
// 消息顺序为：系统提示词、会话历史（如有）、当前用户输入。
// 只有调用成功时才把本轮问答写入会话历史。
func (s *ChatService) Complete(ctx context.Context, req *CompleteRequest) (*CompleteResult, error) {
	messages, err := s.buildMessages(ctx, req, req.SystemPrompt)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Chat(ctx, messages, s.chatOptions(req, req.Temperature))
	if err != nil {
		return nil, err
	}

	if req.SessionID != "" {
		if err := s.sessions.Append(ctx, req.SessionID,
			llm.Message{Role: llm.RoleUser, Content: req.UserPrompt},
			llm.Message{Role: llm.RoleAssistant, Content: resp.Content},
		); err != nil {
			return nil, fmt.Errorf("failed to record session history: %w", err)
		}
	}

	return &CompleteResult{
		Content:    resp.Content,
		Model:      resp.Model,
		TokenUsage: resp.TokenUsage,
	}, nil
}

// CompleteStructured 执行结构化补全，把模型输出解析到 out。
//
// schema 会序列化后追加到系统提示词，温度固定为低温。
// 解析失败时返回 structured.ErrInvalidOutput，历史不受影响。
func (s *ChatService) CompleteStructured(ctx context.Context, req *CompleteRequest, schema any, out any) (*CompleteResult, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	systemPrompt += structuredInstruction + string(schemaJSON)

	messages, err := s.buildMessages(ctx, req, systemPrompt)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Chat(ctx, messages, s.chatOptions(req, structuredTemperature))
	if err != nil {
		return nil, err
	}

	if err := structured.ExtractInto(resp.Content, out); err != nil {
		return nil, err
	}

	return &CompleteResult{
		Content:    resp.Content,
		Model:      resp.Model,
		TokenUsage: resp.TokenUsage,
	}, nil
}

func (s *ChatService) buildMessages(ctx context.Context, req *CompleteRequest, systemPrompt string) ([]llm.Message, error) {
	if req.UserPrompt == "" {
		return nil, fmt.Errorf("user prompt is required")
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}

	if req.SessionID != "" {
		history, err := s.sessions.History(ctx, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session history: %w", err)
		}
		messages = append(messages, history...)
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: req.UserPrompt}), nil
}

func (s *ChatService) chatOptions(req *CompleteRequest, temperature float64) *llm.ChatOptions {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &llm.ChatOptions{Temperature: temperature, MaxTokens: maxTokens}
}
