package structured

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "纯 JSON 对象",
			input: `{"requiresViva": true, "complexity": "intermediate"}`,
			want:  `{"requiresViva": true, "complexity": "intermediate"}`,
		},
		{
			name:  "JSON 数组",
			input: `["a", "b", "c"]`,
			want:  `["a", "b", "c"]`,
		},
		{
			name:  "带 json 标记的代码块",
			input: "Here is the result:\n```json\n{\"score\": 85}\n```\nHope this helps!",
			want:  `{"score": 85}`,
		},
		{
			name:  "无语言标记的代码块",
			input: "```\n{\"score\": 85}\n```",
			want:  `{"score": 85}`,
		},
		{
			name:  "正文夹杂的 JSON 对象",
			input: `Sure! The curriculum is {"modules": [{"moduleTitle": "Basics"}], "difficulty": "beginner"} as requested.`,
			want:  `{"modules": [{"moduleTitle": "Basics"}], "difficulty": "beginner"}`,
		},
		{
			name:  "首尾空白",
			input: "\n\n  {\"ok\": 1}  \n",
			want:  `{"ok": 1}`,
		},
		{
			name:    "无 JSON 内容",
			input:   "I cannot produce JSON for this request.",
			wantErr: true,
		},
		{
			name:    "残缺 JSON",
			input:   `{"modules": [`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidOutput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestExtractErrorPreviewTruncated(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}

	_, err := Extract(string(long))
	require.Error(t, err)
	// 错误信息只保留前 500 字符
	assert.LessOrEqual(t, len(err.Error()), previewLimit+len(ErrInvalidOutput.Error())+10)
}

func TestExtractErrorPreviewRuneSafe(t *testing.T) {
	// 多字节字符超出预览长度时不能在字符中间截断
	_, err := Extract(strings.Repeat("தரவுத்தளம் ", 100))
	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()))
}

func TestExtractInto(t *testing.T) {
	var out struct {
		RequiresViva bool     `json:"requiresViva"`
		Questions    []string `json:"questions"`
	}

	input := "```json\n{\"requiresViva\": true, \"questions\": [\"q1\", \"q2\", \"q3\"]}\n```"
	require.NoError(t, ExtractInto(input, &out))
	assert.True(t, out.RequiresViva)
	assert.Len(t, out.Questions, 3)
}
