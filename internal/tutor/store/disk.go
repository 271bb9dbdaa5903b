package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kart-io/tutor-x/internal/pkg/textutil"
	"github.com/kart-io/tutor-x/pkg/utils/json"
)

// indexFileName 每个学生目录下的索引文件名。
const indexFileName = "index.json"

// indexFile 索引文件的磁盘格式。
type indexFile struct {
	Entries []Entry `json:"entries"`
}

// DiskStore 基于本地磁盘的向量存储。
//
// 每个学生一个目录，索引整体保存为单个 JSON 文件，首次访问时
// 懒加载到内存，写入采用临时文件加重命名保证原子性。
type DiskStore struct {
	dataDir string

	mu       sync.Mutex
	students map[string]*studentIndex
}

// studentIndex 单个学生的内存索引。
type studentIndex struct {
	mu      sync.Mutex
	loaded  bool
	entries []Entry
}

// NewDiskStore 创建磁盘向量存储，dataDir 不存在时自动创建。
func NewDiskStore(dataDir string) (*DiskStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dataDir, err)
	}

	return &DiskStore{
		dataDir:  dataDir,
		students: make(map[string]*studentIndex),
	}, nil
}

// 编译期接口检查
var _ VectorStore = (*DiskStore)(nil)

func (d *DiskStore) indexPath(studentID string) string {
	// 防止学生 ID 中的路径片段逃出数据目录
	return filepath.Join(d.dataDir, filepath.Base(studentID), indexFileName)
}

func (d *DiskStore) student(studentID string) *studentIndex {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, ok := d.students[studentID]
	if !ok {
		idx = &studentIndex{}
		d.students[studentID] = idx
	}
	return idx
}

// load 从磁盘加载索引，文件不存在视为空索引。调用方需持有写锁。
func (idx *studentIndex) load(path string) error {
	if idx.loaded {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			idx.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read index %s: %w", path, err)
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse index %s: %w", path, err)
	}

	idx.entries = file.Entries
	idx.loaded = true
	return nil
}

// persist 原子写回磁盘。调用方需持有写锁。
func (idx *studentIndex) persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create index dir: %w", err)
	}

	data, err := json.Marshal(indexFile{Entries: idx.entries})
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), indexFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp index: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp index: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace index: %w", err)
	}
	return nil
}

// Add 追加条目并持久化，返回追加后的条目总数。
func (d *DiskStore) Add(ctx context.Context, studentID string, entries []Entry) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	idx := d.student(studentID)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	path := d.indexPath(studentID)
	if err := idx.load(path); err != nil {
		return 0, err
	}

	idx.entries = append(idx.entries, entries...)
	if err := idx.persist(path); err != nil {
		// 持久化失败时回滚内存状态，保持和磁盘一致
		idx.entries = idx.entries[:len(idx.entries)-len(entries)]
		return 0, err
	}

	return len(idx.entries), nil
}

// Search 暴力扫描全部条目，按余弦相似度降序返回前 topK 条。
func (d *DiskStore) Search(ctx context.Context, studentID string, query []float32, topK int) ([]*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := d.student(studentID)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.load(d.indexPath(studentID)); err != nil {
		return nil, err
	}

	if len(idx.entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoIndex, studentID)
	}

	results := make([]*SearchResult, 0, len(idx.entries))
	for i := range idx.entries {
		entry := &idx.entries[i]
		results = append(results, &SearchResult{
			Entry: entry,
			Score: textutil.CosineSimilarity(query, entry.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Count 返回学生索引中的条目数。
func (d *DiskStore) Count(ctx context.Context, studentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	idx := d.student(studentID)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.load(d.indexPath(studentID)); err != nil {
		return 0, err
	}
	return len(idx.entries), nil
}

// HasIndex 报告学生是否已有索引数据。
func (d *DiskStore) HasIndex(ctx context.Context, studentID string) bool {
	count, err := d.Count(ctx, studentID)
	return err == nil && count > 0
}
