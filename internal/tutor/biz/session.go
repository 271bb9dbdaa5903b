// Package biz 实现辅导服务的业务逻辑。
package biz

import (
	"context"
	"fmt"
	"sync"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/tutor-x/pkg/llm"
	"github.com/kart-io/tutor-x/pkg/utils/json"
)

// DefaultHistoryLimit 每个会话保留的最大消息条数。
const DefaultHistoryLimit = 20

// SessionStore 会话历史存储接口。
type SessionStore interface {
	// History 返回会话的历史消息，最旧的在前。
	History(ctx context.Context, sessionID string) ([]llm.Message, error)

	// Append 追加消息并裁剪到保留上限。
	Append(ctx context.Context, sessionID string, messages ...llm.Message) error

	// Clear 清空会话历史。
	Clear(ctx context.Context, sessionID string) error
}

// MemorySessionStore 进程内会话存储。
type MemorySessionStore struct {
	limit int

	mu       sync.RWMutex
	sessions map[string][]llm.Message
}

// NewMemorySessionStore 创建内存会话存储。limit 不合法时使用默认上限。
func NewMemorySessionStore(limit int) *MemorySessionStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemorySessionStore{
		limit:    limit,
		sessions: make(map[string][]llm.Message),
	}
}

var _ SessionStore = (*MemorySessionStore)(nil)

// History 返回会话历史的副本。
func (m *MemorySessionStore) History(_ context.Context, sessionID string) ([]llm.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.sessions[sessionID]
	out := make([]llm.Message, len(history))
	copy(out, history)
	return out, nil
}

// Append 追加消息，超出上限时淘汰最旧的消息。
func (m *MemorySessionStore) Append(_ context.Context, sessionID string, messages ...llm.Message) error {
	if len(messages) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID], messages...)
	if len(history) > m.limit {
		history = history[len(history)-m.limit:]
	}
	m.sessions[sessionID] = history
	return nil
}

// Clear 删除会话的全部历史。
func (m *MemorySessionStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

// RedisSessionStore 基于 Redis List 的会话存储，支持多实例共享历史。
type RedisSessionStore struct {
	redis     *goredis.Client
	limit     int
	keyPrefix string
}

// NewRedisSessionStore 创建 Redis 会话存储。
func NewRedisSessionStore(client *goredis.Client, limit int, keyPrefix string) *RedisSessionStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if keyPrefix == "" {
		keyPrefix = "tutor:session:"
	}
	return &RedisSessionStore{
		redis:     client,
		limit:     limit,
		keyPrefix: keyPrefix,
	}
}

var _ SessionStore = (*RedisSessionStore)(nil)

func (r *RedisSessionStore) key(sessionID string) string {
	return r.keyPrefix + sessionID
}

// History 读取整个列表并反序列化。
func (r *RedisSessionStore) History(ctx context.Context, sessionID string) ([]llm.Message, error) {
	items, err := r.redis.LRange(ctx, r.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	history := make([]llm.Message, 0, len(items))
	for _, item := range items {
		var msg llm.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			// 跳过损坏的条目，不让单条坏数据拖垮整个会话
			logger.Warnw("skipping corrupted session entry", "session_id", sessionID, "error", err.Error())
			continue
		}
		history = append(history, msg)
	}
	return history, nil
}

// Append 逐条 RPUSH 后用 LTRIM 裁剪到上限。
func (r *RedisSessionStore) Append(ctx context.Context, sessionID string, messages ...llm.Message) error {
	if len(messages) == 0 {
		return nil
	}

	key := r.key(sessionID)
	values := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
		values = append(values, data)
	}

	pipe := r.redis.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-r.limit), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to session %s: %w", sessionID, err)
	}
	return nil
}

// Clear 删除会话键。
func (r *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.redis.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}
	return nil
}
