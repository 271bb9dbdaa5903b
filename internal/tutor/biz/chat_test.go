package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/tutor-x/pkg/llm"
	"github.com/kart-io/tutor-x/pkg/llm/structured"
)

// fakeChatProvider 记录调用参数并返回预设响应。
type fakeChatProvider struct {
	response string
	err      error

	calls       int
	gotMessages []llm.Message
	gotOpts     *llm.ChatOptions
}

func (f *fakeChatProvider) Chat(_ context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.ChatResponse, error) {
	f.calls++
	f.gotMessages = messages
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{
		Content:    f.response,
		Model:      "test-model",
		TokenUsage: &llm.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (f *fakeChatProvider) Name() string  { return "fake" }
func (f *fakeChatProvider) Model() string { return "test-model" }

func TestChatService_Complete(t *testing.T) {
	provider := &fakeChatProvider{response: "the answer"}
	svc := NewChatService(provider, NewMemorySessionStore(20))

	result, err := svc.Complete(context.Background(), &CompleteRequest{
		SessionID:  "s1",
		UserPrompt: "what is a goroutine?",
	})
	require.NoError(t, err)

	assert.Equal(t, "the answer", result.Content)
	assert.Equal(t, "test-model", result.Model)
	assert.Equal(t, 15, result.TokenUsage.TotalTokens)

	// 消息顺序：系统提示词在前，用户输入在后
	require.Len(t, provider.gotMessages, 2)
	assert.Equal(t, llm.RoleSystem, provider.gotMessages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, provider.gotMessages[0].Content)
	assert.Equal(t, llm.RoleUser, provider.gotMessages[1].Role)

	// 默认生成参数
	assert.InDelta(t, DefaultTemperature, provider.gotOpts.Temperature, 1e-9)
	assert.Equal(t, DefaultMaxTokens, provider.gotOpts.MaxTokens)
}

func TestChatService_CompleteCarriesHistory(t *testing.T) {
	provider := &fakeChatProvider{response: "second answer"}
	sessions := NewMemorySessionStore(20)
	svc := NewChatService(provider, sessions)
	ctx := context.Background()

	_, err := svc.Complete(ctx, &CompleteRequest{SessionID: "s1", UserPrompt: "first question"})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, &CompleteRequest{SessionID: "s1", UserPrompt: "second question"})
	require.NoError(t, err)

	// 第二次调用携带第一轮问答
	require.Len(t, provider.gotMessages, 4)
	assert.Equal(t, "first question", provider.gotMessages[1].Content)
	assert.Equal(t, llm.RoleAssistant, provider.gotMessages[2].Role)
	assert.Equal(t, "second question", provider.gotMessages[3].Content)
}

func TestChatService_CompleteWithoutSession(t *testing.T) {
	provider := &fakeChatProvider{response: "stateless"}
	sessions := NewMemorySessionStore(20)
	svc := NewChatService(provider, sessions)
	ctx := context.Background()

	_, err := svc.Complete(ctx, &CompleteRequest{UserPrompt: "one-off question"})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, &CompleteRequest{UserPrompt: "another one-off"})
	require.NoError(t, err)

	// 无会话时不携带也不记录历史
	assert.Len(t, provider.gotMessages, 2)
}

func TestChatService_ProviderErrorSkipsHistory(t *testing.T) {
	provider := &fakeChatProvider{err: errors.New("upstream unavailable")}
	sessions := NewMemorySessionStore(20)
	svc := NewChatService(provider, sessions)
	ctx := context.Background()

	_, err := svc.Complete(ctx, &CompleteRequest{SessionID: "s1", UserPrompt: "doomed question"})
	require.Error(t, err)

	history, err := sessions.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestChatService_EmptyPrompt(t *testing.T) {
	svc := NewChatService(&fakeChatProvider{}, NewMemorySessionStore(20))

	_, err := svc.Complete(context.Background(), &CompleteRequest{SessionID: "s1"})
	assert.Error(t, err)
}

func TestChatService_CompleteStructured(t *testing.T) {
	provider := &fakeChatProvider{response: "```json\n{\"grade\": \"A\", \"score\": 92}\n```"}
	svc := NewChatService(provider, NewMemorySessionStore(20))

	var out struct {
		Grade string `json:"grade"`
		Score int    `json:"score"`
	}
	_, err := svc.CompleteStructured(context.Background(), &CompleteRequest{
		UserPrompt:  "grade this",
		Temperature: 0.9,
	}, map[string]any{"grade": "string", "score": "number"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "A", out.Grade)
	assert.Equal(t, 92, out.Score)

	// 结构化输出固定低温度，忽略请求中的温度
	assert.InDelta(t, 0.3, provider.gotOpts.Temperature, 1e-9)

	// 系统提示词追加 schema 约束
	assert.Contains(t, provider.gotMessages[0].Content, "valid JSON only")
	assert.Contains(t, provider.gotMessages[0].Content, "grade")
}

func TestChatService_CompleteStructuredInvalidOutput(t *testing.T) {
	provider := &fakeChatProvider{response: "I refuse to answer in JSON."}
	svc := NewChatService(provider, NewMemorySessionStore(20))

	var out map[string]any
	_, err := svc.CompleteStructured(context.Background(), &CompleteRequest{
		UserPrompt: "grade this",
	}, map[string]any{"grade": "string"}, &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, structured.ErrInvalidOutput)
}
