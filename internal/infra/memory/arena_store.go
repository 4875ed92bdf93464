package memory

import (
	"sync"

	"trivia-arena-service/internal/app"
)

// ArenaStore is an in-memory implementation of app.ArenaRepository.
type ArenaStore struct {
	mu     sync.RWMutex
	arenas map[string]*app.Arena
}

func NewArenaStore() *ArenaStore {
	return &ArenaStore{arenas: make(map[string]*app.Arena)}
}

func (s *ArenaStore) Put(code string, arena *app.Arena) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arenas[code] = arena
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
	delete(s.arenas, code)
}

func (s *ArenaStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.arenas[code]
	return ok
}
