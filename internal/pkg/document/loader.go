// Package document 提供学习材料的加载与切分。
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat 表示文件类型无法提取文本。
var ErrUnsupportedFormat = errors.New("unsupported file type")

// Document 一段带元数据的文本。
type Document struct {
	// Content 文本内容。
	Content string

	// Metadata 来源信息（source、page 等）。
	Metadata map[string]any
}

// Load 读取文件并按类型提取文本。
// .txt 整个文件为一个 Document；.pdf 每页一个 Document。
func Load(path string) ([]Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		return loadText(path)
	case ".pdf":
		return loadPDF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func loadText(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	return []Document{{
		Content: string(data),
		Metadata: map[string]any{
			"source": filepath.Base(path),
		},
	}}, nil
}

func loadPDF(path string) ([]Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	var docs []Document
	totalPages := reader.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// 单页提取失败不中断整个文件
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		docs = append(docs, Document{
			Content: text,
			Metadata: map[string]any{
				"source": filepath.Base(path),
				"page":   pageNum,
			},
		})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no extractable text in pdf %s", filepath.Base(path))
	}

	return docs, nil
}
