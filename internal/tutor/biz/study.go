package biz

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kart-io/logger"

	"github.com/kart-io/tutor-x/internal/pkg/document"
	"github.com/kart-io/tutor-x/internal/pkg/textutil"
	"github.com/kart-io/tutor-x/internal/tutor/store"
	"github.com/kart-io/tutor-x/pkg/id"
	"github.com/kart-io/tutor-x/pkg/llm"
)

// DefaultTopK 检索返回的相关块数量。
const DefaultTopK = 3

// ragMaxTokens 基于文档问答的最大生成长度。
const ragMaxTokens = 1024

// ErrNoDocuments 学生尚未上传任何学习材料。
var ErrNoDocuments = errors.New("No documents uploaded yet. Please upload study materials first using the upload button above.")

// noRelevantAnswer 检索不到相关内容时的兜底回答。
const noRelevantAnswer = "I couldn't find relevant information in your uploaded documents to answer this question. " +
	"Please try rephrasing or upload more materials."

const ragSystemPrompt = "You are an expert educational AI assistant. " +
	"Format your responses with clear structure: use paragraphs, bullet points, and bold text for emphasis. " +
	"Make answers scannable and easy to understand."

// StudyService 学习材料的索引与问答服务。
type StudyService struct {
	embedder llm.EmbeddingProvider
	chat     *ChatService
	store    store.VectorStore
	splitter *document.RecursiveSplitter
	topK     int

	mu    sync.RWMutex
	files map[string][]string
}

// NewStudyService 创建学习材料服务。
func NewStudyService(embedder llm.EmbeddingProvider, chat *ChatService, vectors store.VectorStore, splitter *document.RecursiveSplitter, topK int) *StudyService {
	if splitter == nil {
		splitter = document.NewRecursiveSplitter(document.SplitterConfig{})
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &StudyService{
		embedder: embedder,
		chat:     chat,
		store:    vectors,
		splitter: splitter,
		topK:     topK,
		files:    make(map[string][]string),
	}
}

// ProcessResult 文件处理结果。
type ProcessResult struct {
	Message  string `json:"message"`
	Chunks   int    `json:"chunks"`
	Filename string `json:"filename"`
}

// ProcessFile 加载、切分并索引一个学习材料文件。
// 所有块向量化成功后才写入索引，失败时索引保持不变。
func (s *StudyService) ProcessFile(ctx context.Context, studentID, filePath string) (*ProcessResult, error) {
	docs, err := document.Load(filePath)
	if err != nil {
		return nil, err
	}

	chunks := s.splitter.SplitDocuments(docs)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no indexable content in %s", filepath.Base(filePath))
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed document: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(chunks))
	}

	entries := make([]store.Entry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = store.Entry{
			ID:        id.New(),
			Content:   chunk.Content,
			Embedding: embeddings[i],
			Metadata:  chunk.Metadata,
		}
	}

	total, err := s.store.Add(ctx, studentID, entries)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	s.mu.Lock()
	s.files[studentID] = append(s.files[studentID], filename)
	s.mu.Unlock()

	logger.Infow("indexed document",
		"student_id", studentID,
		"filename", filename,
		"chunks", len(entries),
		"total_entries", total,
	)

	return &ProcessResult{
		Message:  fmt.Sprintf("Indexed %d chunks from %s", len(entries), filename),
		Chunks:   len(entries),
		Filename: filename,
	}, nil
}

// Source 答案引用的一段材料。
type Source struct {
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"metadata"`
	RelevanceScore int            `json:"relevance_score"`
}

// AskResult 文档问答结果。
type AskResult struct {
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	NumSources int      `json:"num_sources"`
}

// Ask 基于学生上传的材料回答问题。
// 没有索引时返回 ErrNoDocuments；检索无结果时返回兜底回答。
func (s *StudyService) Ask(ctx context.Context, studentID, question string) (*AskResult, error) {
	if !s.store.HasIndex(ctx, studentID) {
		return nil, ErrNoDocuments
	}

	queryVec, err := s.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := s.store.Search(ctx, studentID, queryVec, s.topK)
	if err != nil {
		if errors.Is(err, store.ErrNoIndex) {
			return nil, ErrNoDocuments
		}
		return nil, err
	}

	if len(results) == 0 {
		return &AskResult{Answer: noRelevantAnswer, Sources: []Source{}}, nil
	}

	contexts := make([]string, len(results))
	sources := make([]Source, len(results))
	for i, result := range results {
		contexts[i] = result.Entry.Content
		sources[i] = Source{
			Content:        textutil.SourcePreview(result.Entry.Content),
			Metadata:       result.Entry.Metadata,
			RelevanceScore: i + 1,
		}
	}

	prompt := fmt.Sprintf(`Based on the following context from the student's study materials, provide a well-structured answer.

Context:
%s

Question: %s

IMPORTANT FORMATTING INSTRUCTIONS:
1. Start with a clear, direct answer
2. Use short paragraphs (2-3 sentences max)
3. Use bullet points with * for lists or key points
4. Use **bold** for important terms or concepts
5. Add blank lines between sections for readability
6. If the context lacks information, clearly state what's missing
7. Keep the tone educational and supportive

Provide a clear, well-formatted educational answer based on the context above.`,
		strings.Join(contexts, "\n\n"), question)

	result, err := s.chat.Complete(ctx, &CompleteRequest{
		SystemPrompt: ragSystemPrompt,
		UserPrompt:   prompt,
		Temperature:  DefaultTemperature,
		MaxTokens:    ragMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	return &AskResult{
		Answer:     result.Content,
		Sources:    sources,
		NumSources: len(sources),
	}, nil
}

// StudySummary 学生学习材料概览。
type StudySummary struct {
	StudentID     string   `json:"student_id"`
	UploadedFiles []string `json:"uploaded_files"`
	HasIndex      bool     `json:"has_index"`
	TotalFiles    int      `json:"total_files"`
}

// Summary 返回学生已上传材料的概览。
func (s *StudyService) Summary(ctx context.Context, studentID string) *StudySummary {
	s.mu.RLock()
	uploaded := make([]string, len(s.files[studentID]))
	copy(uploaded, s.files[studentID])
	s.mu.RUnlock()

	return &StudySummary{
		StudentID:     studentID,
		UploadedFiles: uploaded,
		HasIndex:      s.store.HasIndex(ctx, studentID),
		TotalFiles:    len(uploaded),
	}
}
