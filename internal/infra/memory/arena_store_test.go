package memory

import (
	"testing"

	"trivia-arena-service/internal/app"
	"trivia-arena-service/internal/domain"
)

func TestArenaStoreLifecycle(t *testing.T) {
	store := NewArenaStore()
	arena := app.NewArena("AB3XQ", "admin-1", domain.DefaultScoring())

	if store.Exists("AB3XQ") {
		t.Fatalf("expected empty store")
	}
	store.Put("AB3XQ", arena)
	if !store.Exists("AB3XQ") {
		t.Fatalf("expected arena registered")
	}

	got, ok := store.Get("AB3XQ")
	if !ok || got != arena {
		t.Fatalf("expected the same arena back, got %v (ok=%v)", got, ok)
	}

	store.Delete("AB3XQ")
	if _, ok := store.Get("AB3XQ"); ok {
		t.Fatalf("expected arena deleted")
	}
	store.Delete("AB3XQ") // no-op
}
