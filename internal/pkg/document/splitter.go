package document

import (
	"strings"
	"unicode/utf8"
)

// 默认切分参数。
const (
	DefaultChunkSize    = 700
	DefaultChunkOverlap = 70
)

// defaultSeparators 分隔符从大到小：段落、行、句子、子句、短语、单词、字符。
var defaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " ", ""}

// RecursiveSplitter 递归字符分割器。
//
// 优先在段落、句子等自然边界处切分，长度按 Unicode 字符计算。
type RecursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// SplitterConfig 分割器配置。
type SplitterConfig struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

// NewRecursiveSplitter 创建递归分割器，未设置的字段使用默认值。
func NewRecursiveSplitter(config SplitterConfig) *RecursiveSplitter {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.ChunkOverlap <= 0 {
		config.ChunkOverlap = DefaultChunkOverlap
	}
	if len(config.Separators) == 0 {
		config.Separators = defaultSeparators
	}

	return &RecursiveSplitter{
		chunkSize:    config.ChunkSize,
		chunkOverlap: config.ChunkOverlap,
		separators:   config.Separators,
	}
}

// ChunkSize 返回块大小。
func (s *RecursiveSplitter) ChunkSize() int { return s.chunkSize }

// ChunkOverlap 返回块重叠大小。
func (s *RecursiveSplitter) ChunkOverlap() int { return s.chunkOverlap }

// SplitText 将文本切分成不超过 chunkSize 的块。
func (s *RecursiveSplitter) SplitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.splitRecursive(text, s.separators)
}

// SplitDocuments 逐个切分文档，复制元数据并记录块序号。
func (s *RecursiveSplitter) SplitDocuments(docs []Document) []Document {
	result := make([]Document, 0, len(docs))

	for _, doc := range docs {
		chunks := s.SplitText(doc.Content)
		for i, chunk := range chunks {
			metadata := make(map[string]any, len(doc.Metadata)+2)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			metadata["chunk_index"] = i
			metadata["chunk_total"] = len(chunks)

			result = append(result, Document{Content: chunk, Metadata: metadata})
		}
	}

	return result
}

func (s *RecursiveSplitter) splitRecursive(text string, separators []string) []string {
	finalChunks := make([]string, 0)

	// 选择第一个在文本中出现的分隔符
	separator := separators[len(separators)-1]
	var nextSeparators []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			nextSeparators = separators[i+1:]
			break
		}
	}

	var splits []string
	if separator == "" {
		// 兜底：没有自然边界时按单个字符硬切
		splits = strings.Split(text, "")
	} else {
		splits = strings.Split(text, separator)
	}

	// 累积小块，大块用下一级分隔符继续切分
	goodSplits := make([]string, 0)
	for _, split := range splits {
		if utf8.RuneCountInString(split) < s.chunkSize {
			goodSplits = append(goodSplits, split)
			continue
		}

		if len(goodSplits) > 0 {
			finalChunks = append(finalChunks, s.mergeSplits(goodSplits, separator)...)
			goodSplits = goodSplits[:0]
		}

		if len(nextSeparators) == 0 {
			finalChunks = append(finalChunks, split)
		} else {
			finalChunks = append(finalChunks, s.splitRecursive(split, nextSeparators)...)
		}
	}

	if len(goodSplits) > 0 {
		finalChunks = append(finalChunks, s.mergeSplits(goodSplits, separator)...)
	}

	return finalChunks
}

// mergeSplits 在不超过 chunkSize 的前提下合并相邻块，并保留 chunkOverlap
// 长度的重叠窗口。
func (s *RecursiveSplitter) mergeSplits(splits []string, separator string) []string {
	separatorLen := utf8.RuneCountInString(separator)

	chunks := make([]string, 0)
	current := make([]string, 0)
	total := 0

	for _, split := range splits {
		length := utf8.RuneCountInString(split)

		if total+length+(len(current)*separatorLen) > s.chunkSize && len(current) > 0 {
			if chunk := joinSplits(current, separator); chunk != "" {
				chunks = append(chunks, chunk)
			}

			// 从队首弹出，直到剩余部分落入重叠窗口
			for total > s.chunkOverlap ||
				(total+length+(len(current)*separatorLen) > s.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0]) + separatorLen
				current = current[1:]
			}
		}

		current = append(current, split)
		total += length + separatorLen
	}

	if chunk := joinSplits(current, separator); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

func joinSplits(splits []string, separator string) string {
	return strings.TrimSpace(strings.Join(splits, separator))
}
