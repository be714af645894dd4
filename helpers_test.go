package goCred

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testSalt = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))

// fastConfig keeps scrypt cheap enough for table tests.
func fastConfig() Config {
	cfg := defaultConfig()
	cfg.KDF.N = 1024
	cfg.KDF.SaltBase64 = testSalt
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	casHook func()
	err     error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) CompareAndSwap(_ context.Context, key string, expected, value []byte) error {
	m.mu.Lock()
	hook := m.casHook
	m.casHook = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	current, ok := m.data[key]
	if expected == nil {
		if ok {
			return ErrStoreConflict
		}
	} else if !ok || !bytes.Equal(current, expected) {
		return ErrStoreConflict
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) getCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

func newMemEngine(t *testing.T, mutate func(*Config)) (*Engine, *memStore) {
	t.Helper()
	cfg := fastConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	store := newMemStore()
	engine, err := New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, store
}

func newRedisEngine(t *testing.T, cfg Config, logger *slog.Logger) (*Engine, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	engine, err := New().WithConfig(cfg).WithRedis(rdb).WithLogger(logger).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, mr, rdb
}

// hangStore never answers; every call blocks until ctx is done.
type hangStore struct{}

func (hangStore) Get(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
}

func (hangStore) Put(ctx context.Context, _ string, _ []byte) error {
	<-ctx.Done()
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
}

func (hangStore) CompareAndSwap(ctx context.Context, _ string, _, _ []byte) error {
	<-ctx.Done()
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
}
