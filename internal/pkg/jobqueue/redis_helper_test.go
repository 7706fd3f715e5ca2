package jobqueue

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/opad/internal/pkg/env"
)

// Tests share one Redis server with the cache package, so the queue gets
// its own database.
const isolatedJobQueueTestRedisDB = 14

// newIsolatedRedisClient connects to CACHE_HOST (or localhost), empties db
// and skips the test when no server answers.
func newIsolatedRedisClient(t *testing.T, db int) *redis.Client {
	t.Helper()

	port := env.GetEnv("CACHE_PORT", "6379")
	var lastErr error
	for _, host := range []string{env.GetEnv("CACHE_HOST", ""), "localhost"} {
		if host == "" {
			continue
		}
		client := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(host, port),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			DB:       db,
		})
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr != nil {
			_ = client.Close()
			continue
		}

		if err := client.FlushDB(context.Background()).Err(); err != nil {
			_ = client.Close()
			t.Fatalf("flush redis db %d: %v", db, err)
		}
		t.Cleanup(func() {
			_ = client.FlushDB(context.Background()).Err()
			_ = client.Close()
		})
		return client
	}

	t.Skipf("redis not reachable: %v", lastErr)
	return nil
}
