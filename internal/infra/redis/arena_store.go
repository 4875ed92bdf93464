package redis

import (
	"context"
	"sync"
	"time"

	"trivia-arena-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// ArenaStore is a Redis-aware implementation of app.ArenaRepository.
// Notes:
//   - Arenas themselves stay in a local map; their subscriber fan-out and
//     mutexes are process-local by design (arena state survives no restart).
//   - Redis marks arena liveness so external tooling can list open arenas
//     and so code collisions are visible across short admin reconnects.
type ArenaStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	arenas map[string]*app.Arena
}

func NewArenaStore(client *redis.Client, ttl time.Duration) *ArenaStore {
	return &ArenaStore{
		client: client,
		ttl:    ttl,
		arenas: make(map[string]*app.Arena),
	}
}

func (s *ArenaStore) Put(code string, arena *app.Arena) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arenas[code] = arena
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(code), "1", s.ttl).Err()
}

func (s *ArenaStore) Get(code string) (*app.Arena, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arena, ok := s.arenas[code]
	return arena, ok
}

func (s *ArenaStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.arenas[code]; !ok {
		return
	}
	delete(s.arenas, code)
	_ = s.client.Del(context.Background(), s.key(code)).Err()
}

func (s *ArenaStore) Exists(code string) bool {
	s.mu.RLock()
	if _, ok := s.arenas[code]; ok {
		s.mu.RUnlock()
		return true
	}
	s.mu.RUnlock()
	n, err := s.client.Exists(context.Background(), s.key(code)).Result()
	return err == nil && n > 0
}

func (s *ArenaStore) key(code string) string {
	return "arena:live:" + code
}
