package quizstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keys shared with deployments that already populate them.
const (
	DefaultRedisSetKey  = "questions_cache"
	DefaultRedisListKey = "questions_list"
)

// RedisStore keeps the dedup set in a Redis SET and the queue in a Redis LIST,
// so several processes can produce into and drain the same queue.
type RedisStore struct {
	client  *redis.Client
	setKey  string
	listKey string
}

// OpenRedisStore connects to the server at url (redis://host:port/db).
func OpenRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, DefaultRedisSetKey, DefaultRedisListKey), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, setKey, listKey string) *RedisStore {
	return &RedisStore{client: client, setKey: setKey, listKey: listKey}
}

// Contains checks set membership of text
func (s *RedisStore) Contains(ctx context.Context, text string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.setKey, text).Result()
	if err != nil {
		return false, &StoreError{Op: "contains", Err: err}
	}
	return ok, nil
}

// Add relies on SADD reporting how many members were new.
func (s *RedisStore) Add(ctx context.Context, text string) (bool, error) {
	n, err := s.client.SAdd(ctx, s.setKey, text).Result()
	if err != nil {
		return false, &StoreError{Op: "add", Err: err}
	}
	return n == 1, nil
}

// PushTail appends the JSON-encoded question to the list
func (s *RedisStore) PushTail(ctx context.Context, q Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return &StoreError{Op: "push", Err: err}
	}
	if err := s.client.RPush(ctx, s.listKey, data).Err(); err != nil {
		return &StoreError{Op: "push", Err: err}
	}
	return nil
}

// PopHead pops and decodes the oldest question; an empty list is not an error
func (s *RedisStore) PopHead(ctx context.Context) (Question, bool, error) {
	data, err := s.client.LPop(ctx, s.listKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Question{}, false, nil
	}
	if err != nil {
		return Question{}, false, &StoreError{Op: "pop", Err: err}
	}

	var q Question
	if err := json.Unmarshal(data, &q); err != nil {
		return Question{}, false, &StoreError{Op: "pop", Err: fmt.Errorf("decode queued question: %w", err)}
	}
	return q, true, nil
}

// Len returns the list length
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.listKey).Result()
	if err != nil {
		return 0, &StoreError{Op: "len", Err: err}
	}
	return int(n), nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
