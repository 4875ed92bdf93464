package redis

import (
	"context"
	"encoding/json"
	"time"

	"trivia-arena-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// WinnerLoader fetches winner history from a durable backing store.
type WinnerLoader interface {
	LoadWinners(ctx context.Context, adminID string) ([]domain.Winner, error)
}

// WinnerStore is the durable side of the archive (e.g. Postgres).
type WinnerStore interface {
	WinnerLoader
	Record(ctx context.Context, adminID string, winner domain.Winner) error
}

// historyLimit bounds each admin's previous-winners list.
const historyLimit = 20

// WinnerArchive keeps winner history as a capped Redis list per admin
// (LPUSH + LTRIM), optionally write-through to a durable store and
// repopulated from it on cache miss.
type WinnerArchive struct {
	client *redis.Client
	store  WinnerStore // may be nil: Redis is then the only copy
	ttl    time.Duration
	sf     singleflight.Group
}

func NewWinnerArchive(client *redis.Client, store WinnerStore, ttl time.Duration) *WinnerArchive {
	return &WinnerArchive{client: client, store: store, ttl: ttl}
}

func (a *WinnerArchive) Record(ctx context.Context, adminID string, winner domain.Winner) error {
	raw, err := json.Marshal(winner)
	if err != nil {
		return err
	}

	key := a.key(adminID)
	pipe := a.client.Pipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, historyLimit-1)
	if a.ttl > 0 {
		pipe.Expire(ctx, key, a.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if a.store != nil {
		return a.store.Record(ctx, adminID, winner)
	}
	return nil
}

func (a *WinnerArchive) List(ctx context.Context, adminID string) ([]domain.Winner, error) {
	key := a.key(adminID)
	raw, err := a.client.LRange(ctx, key, 0, historyLimit-1).Result()
	if err == nil && len(raw) > 0 {
		return decodeWinners(raw), nil
	}
	if a.store == nil {
		return nil, err
	}

	result, err, _ := a.sf.Do(adminID, func() (interface{}, error) {
		// Re-check the cache in case another goroutine filled it.
		raw, err := a.client.LRange(ctx, key, 0, historyLimit-1).Result()
		if err == nil && len(raw) > 0 {
			return decodeWinners(raw), nil
		}

		winners, err := a.store.LoadWinners(ctx, adminID)
		if err != nil {
			return nil, err
		}
		if len(winners) > historyLimit {
			winners = winners[:historyLimit]
		}

		if len(winners) > 0 {
			pipe := a.client.Pipeline()
			// RPUSH keeps the most-recent-first order of the loader result.
			for _, w := range winners {
				if encoded, err := json.Marshal(w); err == nil {
					pipe.RPush(ctx, key, encoded)
				}
			}
			if a.ttl > 0 {
				pipe.Expire(ctx, key, a.ttl)
			}
			_, _ = pipe.Exec(ctx)
		}
		return winners, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Winner), nil
}

func (a *WinnerArchive) key(adminID string) string {
	return "arena:winners:" + adminID
}

func decodeWinners(raw []string) []domain.Winner {
	winners := make([]domain.Winner, 0, len(raw))
	for _, item := range raw {
		var w domain.Winner
		if err := json.Unmarshal([]byte(item), &w); err == nil {
			winners = append(winners, w)
		}
	}
	return winners
}
