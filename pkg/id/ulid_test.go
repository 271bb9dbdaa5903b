package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	id1 := New()
	id2 := New()

	assert.Len(t, id1, 26)
	assert.NotEqual(t, id1, id2)
	assert.True(t, IsValid(id1))
	assert.True(t, IsValid(id2))

	// 同一毫秒内生成的 ID 仍保持递增
	assert.Less(t, id1, id2)
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "valid ulid", input: New(), want: true},
		{name: "empty string", input: "", want: false},
		{name: "wrong length", input: "01ARZ3NDEKTSV4RRFFQ69G5FA", want: false},
		{name: "invalid characters", input: "01ARZ3NDEKTSV4RRFFQ69G5FIL", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input))
		})
	}
}
