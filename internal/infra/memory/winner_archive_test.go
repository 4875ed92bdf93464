package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trivia-arena-service/internal/domain"
)

func TestWinnerArchiveMostRecentFirst(t *testing.T) {
	archive := NewWinnerArchive()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		winner := domain.Winner{Name: fmt.Sprintf("Winner-%d", i), Timestamp: base.Add(time.Duration(i) * time.Minute)}
		if err := archive.Record(ctx, "admin-1", winner); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	history, err := archive.List(ctx, "admin-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 winners, got %d", len(history))
	}
	if history[0].Name != "Winner-2" || history[2].Name != "Winner-0" {
		t.Fatalf("expected most-recent-first order, got %v", history)
	}
}

func TestWinnerArchiveBounded(t *testing.T) {
	archive := NewWinnerArchive()
	ctx := context.Background()

	for i := 0; i < HistoryLimit+7; i++ {
		winner := domain.Winner{Name: fmt.Sprintf("Winner-%d", i), Timestamp: time.Now().UTC()}
		if err := archive.Record(ctx, "admin-1", winner); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	history, err := archive.List(ctx, "admin-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != HistoryLimit {
		t.Fatalf("expected history capped at %d, got %d", HistoryLimit, len(history))
	}
	if history[0].Name != fmt.Sprintf("Winner-%d", HistoryLimit+6) {
		t.Fatalf("expected newest entry first, got %s", history[0].Name)
	}
}

func TestWinnerArchiveIsolatesAdminsAndCopies(t *testing.T) {
	archive := NewWinnerArchive()
	ctx := context.Background()

	_ = archive.Record(ctx, "admin-1", domain.Winner{Name: "Falcons"})

	other, err := archive.List(ctx, "admin-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty history for other admin, got %v", other)
	}

	history, _ := archive.List(ctx, "admin-1")
	history[0].Name = "mutated"
	again, _ := archive.List(ctx, "admin-1")
	if again[0].Name != "Falcons" {
		t.Fatalf("List must return a copy, archive was mutated")
	}
}
