package postgres

import (
	"context"
	"fmt"

	"trivia-arena-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// WinnerStore persists final-winner announcements per admin in Postgres.
type WinnerStore struct {
	pool *pgxpool.Pool
}

func NewWinnerStore(pool *pgxpool.Pool) *WinnerStore {
	return &WinnerStore{pool: pool}
}

func (s *WinnerStore) Record(ctx context.Context, adminID string, winner domain.Winner) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO winners (admin_id, name, announced_at) VALUES ($1, $2, $3)`,
		adminID, winner.Name, winner.Timestamp)
	if err != nil {
		return fmt.Errorf("record winner: %w", err)
	}
	return nil
}

// LoadWinners returns the most recent announcements first, capped at the
// archive's history bound.
func (s *WinnerStore) LoadWinners(ctx context.Context, adminID string) ([]domain.Winner, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, announced_at FROM winners WHERE admin_id=$1 ORDER BY announced_at DESC LIMIT 20`,
		adminID)
	if err != nil {
		return nil, fmt.Errorf("load winners: %w", err)
	}
	defer rows.Close()

	var winners []domain.Winner
	for rows.Next() {
		var w domain.Winner
		if err := rows.Scan(&w.Name, &w.Timestamp); err != nil {
			return nil, fmt.Errorf("scan winner: %w", err)
		}
		winners = append(winners, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate winners: %w", err)
	}
	return winners, nil
}

// List satisfies app.WinnerArchive so the store can serve directly when no
// Redis cache is configured.
func (s *WinnerStore) List(ctx context.Context, adminID string) ([]domain.Winner, error) {
	return s.LoadWinners(ctx, adminID)
}
