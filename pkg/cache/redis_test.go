package cache

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"
)

// TestRedisCache exercises the redis backend against a live server.
// Set GEODASH_TEST_REDIS to a host:port to enable it.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("GEODASH_TEST_REDIS")
	if addr == "" {
		t.Skip("GEODASH_TEST_REDIS not set")
	}

	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "geodash-test"})
	if err != nil {
		t.Fatalf("NewRedisCache() error: %v", err)
	}
	defer c.Close()

	key := Key("tile", "https://t.example/1/2/3.png")
	value := []byte("tile bytes")

	if _, found, err := c.Get(ctx, key); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v", found, err)
	}

	if err := c.Set(ctx, key, value, time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, found, err := c.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("Get() = found %v, err %v", found, err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get() = %q, want %q", got, value)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, found, _ := c.Get(ctx, key); found {
		t.Error("Get() after Delete() found the key")
	}
}
