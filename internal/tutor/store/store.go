// Package store 提供按学生隔离的向量索引存储。
package store

import (
	"context"
	"errors"
)

// ErrNoIndex 表示该学生还没有任何索引数据。
var ErrNoIndex = errors.New("no index for student")

// Entry 一条带向量的文本块。
type Entry struct {
	// ID 块的唯一标识。
	ID string `json:"id"`

	// Content 块的原始文本。
	Content string `json:"content"`

	// Embedding 块的向量表示。
	Embedding []float32 `json:"embedding"`

	// Metadata 来源信息（source、page、chunk_index 等）。
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResult 一条检索结果。
type SearchResult struct {
	Entry *Entry

	// Score 与查询向量的余弦相似度。
	Score float64
}

// VectorStore 向量索引的读写接口。
type VectorStore interface {
	// Add 追加若干条目到学生的索引并持久化，返回当前条目总数。
	Add(ctx context.Context, studentID string, entries []Entry) (int, error)

	// Search 对学生的索引做相似度检索，按得分降序返回前 topK 条。
	// 学生没有索引时返回 ErrNoIndex。
	Search(ctx context.Context, studentID string, query []float32, topK int) ([]*SearchResult, error)

	// Count 返回学生索引中的条目数，没有索引时为 0。
	Count(ctx context.Context, studentID string) (int, error)

	// HasIndex 报告学生是否已有索引。
	HasIndex(ctx context.Context, studentID string) bool
}
