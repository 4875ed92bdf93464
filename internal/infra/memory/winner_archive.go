package memory

import (
	"context"
	"sync"

	"trivia-arena-service/internal/domain"
)

// HistoryLimit bounds each admin's previous-winners list.
const HistoryLimit = 20

// WinnerArchive keeps per-admin winner history in process memory,
// most-recent-first and bounded at HistoryLimit entries.
type WinnerArchive struct {
	mu      sync.RWMutex
	winners map[string][]domain.Winner
}

func NewWinnerArchive() *WinnerArchive {
	return &WinnerArchive{winners: make(map[string][]domain.Winner)}
}

func (a *WinnerArchive) Record(_ context.Context, adminID string, winner domain.Winner) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	history := append([]domain.Winner{winner}, a.winners[adminID]...)
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}
	a.winners[adminID] = history
	return nil
}

func (a *WinnerArchive) List(_ context.Context, adminID string) ([]domain.Winner, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	history := a.winners[adminID]
	out := make([]domain.Winner, len(history))
	copy(out, history)
	return out, nil
}
