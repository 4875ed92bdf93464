package idgen

import (
	"math/rand"
	"sync"
	"time"
)

// codeAlphabet excludes visually ambiguous glyphs (0/O, 1/I/L, 2/Z).
const codeAlphabet = "3456789ABCDEFGHJKMNPQRSTUVWXYZ"

// CodeLength is the fixed length of arena codes.
const CodeLength = 5

const (
	teamIDMin  = 100000
	teamIDSpan = 900000
)

// Generator produces arena codes and team ids, regenerating on collision
// against caller-supplied liveness checks. Codes are hard to guess but not a
// security boundary.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithSeed is test-only for deterministic sequences.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// ArenaCode draws fixed-length codes until taken reports the code free.
func (g *Generator) ArenaCode(taken func(string) bool) string {
	for {
		code := g.randomCode()
		if taken == nil || !taken(code) {
			return code
		}
	}
}

// TeamID draws six-digit numeric ids until taken reports the id free.
func (g *Generator) TeamID(taken func(int) bool) int {
	for {
		g.mu.Lock()
		id := teamIDMin + g.rnd.Intn(teamIDSpan)
		g.mu.Unlock()
		if taken == nil || !taken(id) {
			return id
		}
	}
}

func (g *Generator) randomCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	code := make([]byte, CodeLength)
	for i := range code {
		code[i] = codeAlphabet[g.rnd.Intn(len(codeAlphabet))]
	}
	return string(code)
}
