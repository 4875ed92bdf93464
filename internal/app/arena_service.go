package app

import (
	"context"
	"log"
	"strings"
	"time"

	"trivia-arena-service/internal/domain"
	"trivia-arena-service/internal/idgen"
)

// ArenaRepository abstracts how live arenas are registered (in-memory, Redis
// liveness-tracked, etc).
type ArenaRepository interface {
	Put(code string, arena *Arena)
	Get(code string) (*Arena, bool)
	Delete(code string)
	Exists(code string) bool
}

// ArenaService translates connection-scoped commands into arena operations.
// It owns arena lifecycle (creation, replacement, teardown) and the
// connection directory; arenas own their own phase machines.
type ArenaService struct {
	arenas     ArenaRepository
	winners    WinnerArchive
	directory  *ConnectionDirectory
	ids        *idgen.Generator
	scoring    domain.Scoring
	closeDelay time.Duration
}

func NewArenaService(arenas ArenaRepository, winners WinnerArchive, ids *idgen.Generator, scoring domain.Scoring, closeDelay time.Duration) *ArenaService {
	return &ArenaService{
		arenas:     arenas,
		winners:    winners,
		directory:  NewConnectionDirectory(),
		ids:        ids,
		scoring:    scoring,
		closeDelay: closeDelay,
	}
}

// CreateArena opens a fresh arena owned by the connection. If the connection
// already owns one it is torn down first with reason "replaced"; the admin's
// winner history survives the swap.
func (s *ArenaService) CreateArena(ctx context.Context, connID, adminName string) (*Arena, []domain.Winner, error) {
	adminName = strings.TrimSpace(adminName)
	if adminName == "" {
		return nil, nil, domain.ErrNameRequired
	}

	s.detachExisting(connID, domain.CloseReplaced)

	code := s.ids.ArenaCode(s.arenas.Exists)
	arena := NewArena(code, connID, s.scoring)
	s.arenas.Put(code, arena)
	s.directory.BindAdmin(connID, adminName, code)

	history, err := s.winners.List(ctx, connID)
	if err != nil {
		log.Printf("list winners for %s: %v", connID, err)
		history = nil
	}
	return arena, history, nil
}

// JoinArena registers the connection as a new team in the coded arena.
func (s *ArenaService) JoinArena(_ context.Context, connID, code, teamName string) (*Arena, domain.Team, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return nil, domain.Team{}, domain.ErrNameRequired
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.Team{}, domain.ErrArenaNotFound
	}
	arena, ok := s.arenas.Get(code)
	if !ok {
		return nil, domain.Team{}, domain.ErrArenaNotFound
	}

	s.detachExisting(connID, domain.CloseGeneric)

	teamID := s.ids.TeamID(arena.HasTeam)
	team := arena.AddTeam(teamID, teamName)
	s.directory.BindTeam(connID, code, teamID, teamName)
	return arena, team, nil
}

// Buzz admits the connection's team into the current buzz queue. Every
// failure path is silent: buzz races are expected, not errors.
func (s *ArenaService) Buzz(connID string) {
	conn, ok := s.directory.Get(connID)
	if !ok || conn.Role != RoleTeam || conn.ArenaCode == "" {
		return
	}
	arena, ok := s.arenas.Get(conn.ArenaCode)
	if !ok {
		return
	}
	arena.Buzz(conn.TeamID)
}

func (s *ArenaService) StartQuestion(connID string) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	return arena.StartQuestion()
}

func (s *ArenaService) SelectAnsweringTeam(connID string, teamID int) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	return arena.SelectAnsweringTeam(teamID)
}

func (s *ArenaService) EvaluateAnswer(connID string, teamID int, verdict domain.Verdict, bonus bool) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	return arena.EvaluateAnswer(teamID, verdict, bonus)
}

func (s *ArenaService) OpenChallenge(connID string) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	return arena.OpenChallenge()
}

func (s *ArenaService) CloseChallenge(connID string) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	return arena.CloseChallenge()
}

func (s *ArenaService) EvaluateChallenge(connID string, teamID int, verdict domain.Verdict, bonus bool) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	return arena.EvaluateChallenge(teamID, verdict, bonus)
}

func (s *ArenaService) NextQuestion(connID string) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	arena.NextQuestion()
	return nil
}

func (s *ArenaService) CustomScore(connID string, teamID, delta int) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	return arena.CustomScore(teamID, delta)
}

func (s *ArenaService) SetLeaderboardFrozen(connID string, frozen bool) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	arena.SetLeaderboardFrozen(frozen)
	return nil
}

// AnnounceFinalWinner records the winner in the admin's history, broadcasts
// the announcement and schedules teardown after the display delay. The timer
// re-checks the registry so an arena torn down earlier (admin disconnect,
// replacement) is not closed twice.
func (s *ArenaService) AnnounceFinalWinner(ctx context.Context, connID, winnerName string) error {
	arena, err := s.adminArena(connID)
	if err != nil {
		return err
	}
	winnerName = strings.TrimSpace(winnerName)
	if winnerName == "" {
		return domain.ErrWinnerNameRequired
	}

	if err := s.winners.Record(ctx, connID, domain.Winner{Name: winnerName, Timestamp: time.Now().UTC()}); err != nil {
		log.Printf("record winner for %s: %v", connID, err)
	}
	arena.Publish(domain.Event{
		Type:    domain.EventFinalWinner,
		Payload: domain.FinalWinnerPayload{WinnerName: winnerName},
	})

	code := arena.Code()
	time.AfterFunc(s.closeDelay, func() {
		if current, ok := s.arenas.Get(code); ok && current == arena {
			s.closeArena(current, domain.CloseRoundComplete)
		}
	})
	return nil
}

// PreviousWinners returns the admin's bounded winner history.
func (s *ArenaService) PreviousWinners(ctx context.Context, connID string) ([]domain.Winner, error) {
	conn, ok := s.directory.Get(connID)
	if !ok || conn.Role != RoleAdmin {
		return nil, domain.ErrUnauthorized
	}
	return s.winners.List(ctx, connID)
}

// CloseArena tears down an arena by code. Idempotent; unknown codes are a
// no-op.
func (s *ArenaService) CloseArena(code string, reason domain.CloseReason) {
	if arena, ok := s.arenas.Get(code); ok {
		s.closeArena(arena, reason)
	}
}

// Disconnect handles a dropped connection: a team is removed from its arena,
// an admin takes the whole arena down with it.
func (s *ArenaService) Disconnect(connID string) {
	conn, ok := s.directory.Get(connID)
	if !ok {
		return
	}
	switch conn.Role {
	case RoleAdmin:
		if conn.ArenaCode != "" {
			if arena, ok := s.arenas.Get(conn.ArenaCode); ok {
				s.closeArena(arena, domain.CloseAdminDisconnected)
			}
		}
	case RoleTeam:
		if arena, ok := s.arenas.Get(conn.ArenaCode); ok {
			arena.RemoveTeam(conn.TeamID)
		}
	}
	s.directory.Remove(connID)
}

// Directory exposes the connection directory for transports and tests.
func (s *ArenaService) Directory() *ConnectionDirectory { return s.directory }

// Arena looks up a live arena by code.
func (s *ArenaService) Arena(code string) (*Arena, bool) {
	return s.arenas.Get(code)
}

func (s *ArenaService) adminArena(connID string) (*Arena, error) {
	conn, ok := s.directory.Get(connID)
	if !ok || conn.Role != RoleAdmin || conn.ArenaCode == "" {
		return nil, domain.ErrUnauthorized
	}
	arena, ok := s.arenas.Get(conn.ArenaCode)
	if !ok {
		return nil, domain.ErrArenaNotFound
	}
	return arena, nil
}

// detachExisting unwinds whatever arena binding the connection already has
// before it assumes a new role.
func (s *ArenaService) detachExisting(connID string, adminReason domain.CloseReason) {
	conn, ok := s.directory.Get(connID)
	if !ok || conn.ArenaCode == "" {
		return
	}
	switch conn.Role {
	case RoleAdmin:
		if arena, ok := s.arenas.Get(conn.ArenaCode); ok {
			s.closeArena(arena, adminReason)
		}
	case RoleTeam:
		if arena, ok := s.arenas.Get(conn.ArenaCode); ok {
			arena.RemoveTeam(conn.TeamID)
		}
		s.directory.Remove(connID)
	}
}

func (s *ArenaService) closeArena(arena *Arena, reason domain.CloseReason) {
	arena.Close(reason)
	s.directory.EvictArena(arena.Code())
	s.arenas.Delete(arena.Code())
}
