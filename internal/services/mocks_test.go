package services_test

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"sync"
	"time"

	"shopfront/pkg/storage"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

// MockImageUploader is a mock implementation of services.ImageUploader
type MockImageUploader struct {
	mock.Mock
}

func (m *MockImageUploader) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (*storage.Object, error) {
	args := m.Called(ctx, key, contentType, body, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Object), args.Error(1)
}

// MockJSONCache is a mock implementation of services.JSONCache
type MockJSONCache struct {
	mock.Mock
}

func (m *MockJSONCache) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	args := m.Called(ctx, key, dst)
	return args.Bool(0), args.Error(1)
}

func (m *MockJSONCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockJSONCache) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// memoryCache is a JSONCache backed by a map.
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if data, ok := c.items[key]; ok {
		if err := json.Unmarshal(data, &n); err != nil {
			return 0, err
		}
	}
	n++
	c.items[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}
