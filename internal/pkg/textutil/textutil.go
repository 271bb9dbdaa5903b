// Package textutil 提供检索相关的文本处理工具函数。
package textutil

import (
	"math"
	"strings"
	"unicode/utf8"
)

// CosineSimilarity 计算两个向量的余弦相似度。
// 返回值范围为 [-1, 1]，1 表示完全相同。维度不一致或零向量返回 0。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TruncateString 截断字符串到指定的最大 Unicode 字符数。
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// previewLimit 来源预览的最大长度。
const previewLimit = 150

// SourcePreview 生成检索来源的单行预览。
// 先截取前 150 个字符，再保留首个换行之前的部分；
// 原文超过 150 字符时追加省略号。
func SourcePreview(content string) string {
	trimmed := strings.TrimSpace(content)

	preview := TruncateString(trimmed, previewLimit)
	if idx := strings.IndexByte(preview, '\n'); idx >= 0 {
		preview = preview[:idx]
	}
	if utf8.RuneCountInString(trimmed) > previewLimit {
		preview += "..."
	}
	return preview
}
