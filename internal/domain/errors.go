package domain

import "errors"

var (
	// ErrNameRequired is returned when a create/join command omits the name.
	ErrNameRequired = errors.New("name is required")
	// ErrWinnerNameRequired is returned for a blank final-winner announcement.
	ErrWinnerNameRequired = errors.New("winner name is required")
	// ErrArenaNotFound indicates an unknown or blank arena code.
	ErrArenaNotFound = errors.New("arena not found")
	// ErrTeamNotFound indicates a team reference not present in the arena.
	ErrTeamNotFound = errors.New("team not found in arena")
	// ErrPhaseViolation is returned for admin commands issued in the wrong
	// question state. Team buzz races are dropped silently instead.
	ErrPhaseViolation = errors.New("command not valid in current question state")
	// ErrUnauthorized is returned when a connection lacks the required role.
	ErrUnauthorized = errors.New("connection is not permitted to issue this command")
	// ErrNoAnsweringTeam is returned when an evaluation names no team and no
	// team currently holds the mic.
	ErrNoAnsweringTeam = errors.New("no team selected to answer")
	// ErrUnknownVerdict indicates an evaluation result outside correct/wrong.
	ErrUnknownVerdict = errors.New("unknown evaluation result")
	// ErrZeroDelta rejects custom score adjustments of zero.
	ErrZeroDelta = errors.New("score delta must be non-zero")
)
