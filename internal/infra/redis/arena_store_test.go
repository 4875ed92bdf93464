package redis

import (
	"testing"
	"time"

	"trivia-arena-service/internal/app"
	"trivia-arena-service/internal/domain"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestArenaStorePutSetsLivenessKey(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewArenaStore(client, time.Hour)
	arena := app.NewArena("AB3XQ", "admin-1", domain.DefaultScoring())

	store.Put("AB3XQ", arena)

	if !mr.Exists("arena:live:AB3XQ") {
		t.Fatalf("expected liveness key in redis")
	}
	got, ok := store.Get("AB3XQ")
	if !ok || got != arena {
		t.Fatalf("expected local arena back, got %v (ok=%v)", got, ok)
	}
}

func TestArenaStoreDeleteClearsLivenessKey(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewArenaStore(client, time.Hour)
	store.Put("AB3XQ", app.NewArena("AB3XQ", "admin-1", domain.DefaultScoring()))

	store.Delete("AB3XQ")

	if mr.Exists("arena:live:AB3XQ") {
		t.Fatalf("expected liveness key removed")
	}
	if store.Exists("AB3XQ") {
		t.Fatalf("expected arena gone")
	}
	store.Delete("AB3XQ") // no-op
}

func TestArenaStoreExistsConsultsRedis(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewArenaStore(client, time.Hour)

	// A code held live by another process is taken even without a local arena.
	mr.Set("arena:live:WW3XQ", "1")

	if !store.Exists("WW3XQ") {
		t.Fatalf("expected remote liveness marker to count as taken")
	}
	if _, ok := store.Get("WW3XQ"); ok {
		t.Fatalf("remote marker must not produce a local arena")
	}
}
