package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestDiskStore_AddAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.Add(ctx, "student_001", []Entry{
		{ID: "c1", Content: "chunk one", Embedding: []float32{1, 0}},
		{ID: "c2", Content: "chunk two", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.Add(ctx, "student_001", []Entry{
		{ID: "c3", Content: "chunk three", Embedding: []float32{1, 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	total, err := s.Count(ctx, "student_001")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestDiskStore_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "student_001", []Entry{
		{ID: "c1", Content: "databases store rows", Embedding: []float32{1, 0, 0}},
		{ID: "c2", Content: "networks move packets", Embedding: []float32{0, 1, 0}},
		{ID: "c3", Content: "indexes speed lookups", Embedding: []float32{0.9, 0.1, 0}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "student_001", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "c1", results[0].Entry.ID)
	assert.Equal(t, "c3", results[1].Entry.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestDiskStore_SearchNoIndex(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Search(context.Background(), "student_404", []float32{1, 0}, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestDiskStore_StudentIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "alice", []Entry{{ID: "a1", Embedding: []float32{1}}})
	require.NoError(t, err)

	assert.True(t, s.HasIndex(ctx, "alice"))
	assert.False(t, s.HasIndex(ctx, "bob"))

	_, err = s.Search(ctx, "bob", []float32{1}, 3)
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestDiskStore_PersistAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := NewDiskStore(dir)
	require.NoError(t, err)
	_, err = s1.Add(ctx, "student_001", []Entry{
		{ID: "c1", Content: "persisted chunk", Embedding: []float32{0.5, 0.5}, Metadata: map[string]any{"source": "notes.txt"}},
	})
	require.NoError(t, err)

	// 索引文件落在学生自己的目录下
	_, err = os.Stat(filepath.Join(dir, "student_001", indexFileName))
	require.NoError(t, err)

	// 新实例懒加载同一份索引
	s2, err := NewDiskStore(dir)
	require.NoError(t, err)

	results, err := s2.Search(ctx, "student_001", []float32{0.5, 0.5}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "persisted chunk", results[0].Entry.Content)
	assert.Equal(t, "notes.txt", results[0].Entry.Metadata["source"])
}

func TestDiskStore_ConcurrentSearchAndAdd(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "student_001", []Entry{
		{ID: "c0", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, err := s.Add(ctx, "student_001", []Entry{
					{ID: fmt.Sprintf("c%d", i+1), Embedding: []float32{0, 1}},
				})
				assert.NoError(t, err)
				return
			}
			results, err := s.Search(ctx, "student_001", []float32{1, 0}, 3)
			assert.NoError(t, err)
			assert.NotEmpty(t, results)
		}(i)
	}
	wg.Wait()

	count, err := s.Count(ctx, "student_001")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestDiskStore_TopKLargerThanIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "student_001", []Entry{
		{ID: "c1", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "student_001", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
