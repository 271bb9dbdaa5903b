package biz

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/tutor-x/internal/pkg/document"
	"github.com/kart-io/tutor-x/internal/tutor/store"
)

// fakeEmbedder 生成与文本长度相关的确定性向量。
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = embedText(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return embedText(text), nil
}

func (f *fakeEmbedder) Name() string { return "fake" }

func embedText(text string) []float32 {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r % 31)
	}
	return vec
}

func newTestStudy(t *testing.T, chatProvider *fakeChatProvider) *StudyService {
	t.Helper()
	vectors, err := store.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	chat := NewChatService(chatProvider, NewMemorySessionStore(20))
	splitter := document.NewRecursiveSplitter(document.SplitterConfig{ChunkSize: 80, ChunkOverlap: 10})
	return NewStudyService(&fakeEmbedder{}, chat, vectors, splitter, DefaultTopK)
}

func writeStudyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStudyService_ProcessFile(t *testing.T) {
	svc := newTestStudy(t, &fakeChatProvider{response: "answer"})
	ctx := context.Background()

	path := writeStudyFile(t, "Binary trees store sorted data.\n\nHash tables offer constant time lookups on average.")

	result, err := svc.ProcessFile(ctx, "student_001", path)
	require.NoError(t, err)

	assert.Greater(t, result.Chunks, 0)
	assert.Equal(t, "notes.txt", result.Filename)
	assert.Contains(t, result.Message, "notes.txt")

	summary := svc.Summary(ctx, "student_001")
	assert.True(t, summary.HasIndex)
	assert.Equal(t, []string{"notes.txt"}, summary.UploadedFiles)
	assert.Equal(t, 1, summary.TotalFiles)
}

func TestStudyService_ProcessFileEmbedFailure(t *testing.T) {
	vectors, err := store.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	chat := NewChatService(&fakeChatProvider{}, NewMemorySessionStore(20))
	svc := NewStudyService(&fakeEmbedder{err: assert.AnError}, chat, vectors, nil, DefaultTopK)

	path := writeStudyFile(t, "some study content")

	_, err = svc.ProcessFile(context.Background(), "student_001", path)
	require.Error(t, err)

	// 向量化失败时索引保持为空
	assert.False(t, vectors.HasIndex(context.Background(), "student_001"))
}

func TestStudyService_AskWithoutDocuments(t *testing.T) {
	svc := newTestStudy(t, &fakeChatProvider{})

	_, err := svc.Ask(context.Background(), "student_404", "what is a b-tree?")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestStudyService_Ask(t *testing.T) {
	provider := &fakeChatProvider{response: "**Answer**: trees keep data sorted."}
	svc := newTestStudy(t, provider)
	ctx := context.Background()

	path := writeStudyFile(t, "Binary search trees keep keys in sorted order.\n\nAVL trees rebalance after inserts.")
	_, err := svc.ProcessFile(ctx, "student_001", path)
	require.NoError(t, err)

	result, err := svc.Ask(ctx, "student_001", "how do trees stay sorted?")
	require.NoError(t, err)

	assert.Equal(t, "**Answer**: trees keep data sorted.", result.Answer)
	assert.Equal(t, len(result.Sources), result.NumSources)
	require.NotEmpty(t, result.Sources)

	// 来源按相关度排名，从 1 开始
	for i, source := range result.Sources {
		assert.Equal(t, i+1, source.RelevanceScore)
		assert.NotEmpty(t, source.Content)
		assert.Equal(t, "notes.txt", source.Metadata["source"])
	}

	// 提问携带检索到的上下文与格式化要求
	userPrompt := provider.gotMessages[1].Content
	assert.Contains(t, userPrompt, "Context:")
	assert.Contains(t, userPrompt, "how do trees stay sorted?")
	assert.Contains(t, userPrompt, "IMPORTANT FORMATTING INSTRUCTIONS")
	assert.Contains(t, provider.gotMessages[0].Content, "educational AI assistant")

	// 文档问答不写入会话历史
	assert.Len(t, provider.gotMessages, 2)
}

func TestStudyService_SummaryEmpty(t *testing.T) {
	svc := newTestStudy(t, &fakeChatProvider{})

	summary := svc.Summary(context.Background(), "student_001")
	assert.Equal(t, "student_001", summary.StudentID)
	assert.False(t, summary.HasIndex)
	assert.Empty(t, summary.UploadedFiles)
	assert.Zero(t, summary.TotalFiles)
}
