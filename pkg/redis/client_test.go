package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/cartreserve-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestHashLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	key := client.CartSessionKey("abc")

	if err := client.HSetWithTTL(ctx, key, time.Hour, map[string]string{"delivery_id": "d1"}); err != nil {
		t.Fatalf("hset failed: %v", err)
	}
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].ttl != time.Hour {
		t.Fatalf("expected ttl refresh, got %+v", mock.expireCalls)
	}
	fields, err := client.HGetAll(ctx, key)
	if err != nil {
		t.Fatalf("hgetall failed: %v", err)
	}
	if fields["delivery_id"] != "d1" {
		t.Fatalf("unexpected fields %v", fields)
	}

	if err := client.HDel(ctx, key, "delivery_id", "address_id"); err != nil {
		t.Fatalf("hdel failed: %v", err)
	}
	fields, _ = client.HGetAll(ctx, key)
	if len(fields) != 0 {
		t.Fatalf("expected empty hash, got %v", fields)
	}
}

func TestSetNXOnlyOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "v1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first setnx should win: ok=%v err=%v", ok, err)
	}
	ok, _ = client.SetNX(ctx, "k", "v2", time.Minute)
	if ok {
		t.Fatalf("second setnx should lose")
	}
	if v, _ := client.Get(ctx, "k"); v != "v1" {
		t.Fatalf("unexpected value %q", v)
	}
	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "k"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "cr:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.CartSessionKey("sess"); got != "cr:cart_session:sess" {
		t.Fatalf("unexpected cart session key %s", got)
	}
	if got := client.LockKey(" cart-expiry-sweep "); got != "cr:lock:cart-expiry-sweep" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.IdempotencyKey("scope", ""); got != "cr:idempotency:scope" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url")
	}
}

type mockCmdable struct {
	data        map[string]string
	hashes      map[string]map[string]string
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:   make(map[string]string),
		hashes: make(map[string]map[string]string),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
		if _, ok := m.hashes[key]; ok {
			n++
		}
		delete(m.data, key)
		delete(m.hashes, key)
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) HSet(ctx context.Context, key string, values ...any) *redis.IntCmd {
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for i := 0; i+1 < len(values); i += 2 {
		h[fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func (m *mockCmdable) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (m *mockCmdable) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	var n int64
	for _, f := range fields {
		if _, ok := m.hashes[key][f]; ok {
			n++
			delete(m.hashes[key], f)
		}
	}
	return redis.NewIntResult(n, nil)
}
