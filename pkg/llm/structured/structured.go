// Package structured 从模型输出中提取 JSON 结构化内容。
//
// 模型即使被要求只返回 JSON，也经常夹带 markdown 代码块或说明文字。
// Extract 依次尝试多种提取策略，全部失败时返回 ErrInvalidOutput。
package structured

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kart-io/tutor-x/pkg/utils/json"
)

// ErrInvalidOutput 表示模型输出无法解析为有效 JSON。
var ErrInvalidOutput = errors.New("invalid JSON response from model")

// previewLimit 错误信息中保留的原始输出长度。
const previewLimit = 500

var (
	codeBlockPattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")
	bracePattern     = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Strategy 单个提取策略。提取不到候选时返回空串。
type Strategy func(text string) string

// DefaultStrategies 按顺序返回默认策略链：
// 整体解析 → markdown 代码块 → 首尾大括号片段。
func DefaultStrategies() []Strategy {
	return []Strategy{
		func(text string) string { return text },
		func(text string) string {
			if m := codeBlockPattern.FindStringSubmatch(text); m != nil {
				return strings.TrimSpace(m[1])
			}
			return ""
		},
		func(text string) string {
			return bracePattern.FindString(text)
		},
	}
}

// Extract 从模型输出中提取第一个可解析的 JSON 值。
func Extract(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)

	for _, strategy := range DefaultStrategies() {
		candidate := strategy(trimmed)
		if candidate == "" {
			continue
		}
		var probe any
		if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
			return []byte(candidate), nil
		}
	}

	preview := trimmed
	if runes := []rune(preview); len(runes) > previewLimit {
		preview = string(runes[:previewLimit])
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidOutput, preview)
}

// ExtractInto 提取 JSON 并反序列化到 v。
func ExtractInto(text string, v any) error {
	raw, err := Extract(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOutput, err.Error())
	}
	return nil
}
