package app

import (
	"context"
	"sync"

	"trivia-arena-service/internal/domain"
)

// Role distinguishes the two connection kinds.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTeam  Role = "team"
)

// Connection is one live connection's binding: its role, arena membership
// and (for teams) the team identity it plays as.
type Connection struct {
	ID        string
	Role      Role
	ArenaCode string
	TeamID    int
	TeamName  string
	AdminName string
}

// ConnectionDirectory is the sole component that answers "who is this
// connection and what may it do".
type ConnectionDirectory struct {
	mu    sync.RWMutex
	conns map[string]Connection
}

func NewConnectionDirectory() *ConnectionDirectory {
	return &ConnectionDirectory{conns: make(map[string]Connection)}
}

// Get returns a copy of the connection entry.
func (d *ConnectionDirectory) Get(connID string) (Connection, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	conn, ok := d.conns[connID]
	return conn, ok
}

// BindAdmin records a connection as the admin owning an arena.
func (d *ConnectionDirectory) BindAdmin(connID, adminName, arenaCode string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[connID] = Connection{
		ID:        connID,
		Role:      RoleAdmin,
		ArenaCode: arenaCode,
		AdminName: adminName,
	}
}

// BindTeam records a connection as a team member of an arena.
func (d *ConnectionDirectory) BindTeam(connID, arenaCode string, teamID int, teamName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conns[connID] = Connection{
		ID:        connID,
		Role:      RoleTeam,
		ArenaCode: arenaCode,
		TeamID:    teamID,
		TeamName:  teamName,
	}
}

// Remove drops the entry entirely.
func (d *ConnectionDirectory) Remove(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.conns, connID)
}

// EvictArena detaches every connection from a closed arena. Team entries are
// deleted; the admin entry survives with its arena pointer cleared so the
// same connection can open a fresh arena afterwards.
func (d *ConnectionDirectory) EvictArena(code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, conn := range d.conns {
		if conn.ArenaCode != code {
			continue
		}
		if conn.Role == RoleAdmin {
			conn.ArenaCode = ""
			d.conns[id] = conn
		} else {
			delete(d.conns, id)
		}
	}
}

// WinnerArchive stores the bounded previous-winners history per admin
// connection (in-memory, Redis, Postgres-backed).
type WinnerArchive interface {
	Record(ctx context.Context, adminID string, winner domain.Winner) error
	List(ctx context.Context, adminID string) ([]domain.Winner, error)
}
