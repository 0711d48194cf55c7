package mocks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"hotel/shared/cache"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MemoryCache is an in-process RedisCache for tests that need real read/write ordering.
// Durations are ignored and Clear supports trailing '*' patterns only.
type MemoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: map[string]string{}}
}

func (m *MemoryCache) Save(_ context.Context, key string, value any, _ int) error {
	payload, err := json.MarshalToString(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = payload

	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string, value any) error {
	m.mu.Lock()
	payload, ok := m.values[key]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("failed to get cache value: %w", cache.Nil)
	}

	if err := json.UnmarshalFromString(payload, value); err != nil {
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)

	return nil
}

func (m *MemoryCache) Clear(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")

	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			delete(m.values, key)
		}
	}

	return nil
}

func (m *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var value int64

	if payload, ok := m.values[key]; ok {
		parsed, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to increment cache value: %w", err)
		}

		value = parsed
	}

	value++
	m.values[key] = strconv.FormatInt(value, 10)

	return value, nil
}

// Expire is a no-op. Entries never expire in memory.
func (m *MemoryCache) Expire(context.Context, string, int) error {
	return nil
}

// Keys lists the stored keys.
func (m *MemoryCache) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}

	return keys
}

var _ cache.RedisCache = (*MemoryCache)(nil)
