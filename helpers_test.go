package credlock

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// testCost keeps derivations cheap enough for the race detector while
// remaining inside the supported range.
const testCost = 4

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func fastConfig() Config {
	cfg := defaultConfig()
	cfg.Digest.TargetCost = testCost
	cfg.Digest.MinCost = testCost
	return cfg
}

func newTestManager(t *testing.T, mutate func(*Config)) *Manager {
	t.Helper()

	cfg := fastConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	m, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)

	return m
}

func newGuardedManager(t *testing.T, rdb *redis.Client, mutate func(*Config)) *Manager {
	t.Helper()

	cfg := fastConfig()
	cfg.Guard.Enabled = true
	cfg.Guard.MaxAttempts = 3
	if mutate != nil {
		mutate(&cfg)
	}

	m, err := New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)

	return m
}

func testSigningKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

func newRotationManager(t *testing.T, rdb *redis.Client, mutate func(*Config)) *Manager {
	t.Helper()

	cfg := fastConfig()
	cfg.Rotation.Enabled = true
	cfg.Rotation.SigningKey = testSigningKey()
	if mutate != nil {
		mutate(&cfg)
	}

	m, err := New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)

	return m
}
