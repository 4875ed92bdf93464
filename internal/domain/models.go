package domain

import "time"

// QuestionState is the per-arena round phase.
type QuestionState string

const (
	QuestionIdle      QuestionState = "idle"
	QuestionAnswering QuestionState = "answering"
	QuestionChallenge QuestionState = "challenge"
	QuestionFinished  QuestionState = "finished"
)

// Verdict is the admin's ruling on an answer attempt.
type Verdict string

const (
	VerdictCorrect Verdict = "correct"
	VerdictWrong   Verdict = "wrong"
)

// CloseReason explains why an arena was torn down.
type CloseReason string

const (
	CloseRoundComplete     CloseReason = "round-complete"
	CloseAdminDisconnected CloseReason = "admin-disconnected"
	CloseReplaced          CloseReason = "replaced"
	CloseGeneric           CloseReason = "closed"
)

// EndReason explains how a question was resolved.
type EndReason string

const (
	EndAnswered  EndReason = "answered"
	EndChallenge EndReason = "challenge"
	EndExhausted EndReason = "exhausted"
)

// Team is one competing team in an arena.
type Team struct {
	ID    int    `json:"teamId"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// BuzzEntry records one admitted buzz, in admission order.
type BuzzEntry struct {
	TeamID int    `json:"teamId"`
	Name   string `json:"name"`
}

// Winner is one entry in an admin's previous-winners history.
type Winner struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// Scoring holds the signed point deltas applied at evaluation time.
// Bonus is added on top of a correct delta when the admin flags it.
type Scoring struct {
	Correct          int
	Wrong            int
	ChallengeCorrect int
	ChallengeWrong   int
	Bonus            int
}

// DefaultScoring returns the standard buzzer point values.
func DefaultScoring() Scoring {
	return Scoring{
		Correct:          10,
		Wrong:            -5,
		ChallengeCorrect: 20,
		ChallengeWrong:   -20,
		Bonus:            5,
	}
}

// ArenaSnapshot is the full denormalized arena state pushed to clients on
// join and after resets. A team id of zero means "none". Membership sets
// are serialized as sorted id slices.
type ArenaSnapshot struct {
	ArenaCode             string        `json:"arenaCode"`
	QuestionState         QuestionState `json:"questionState"`
	BuzzOrder             []BuzzEntry   `json:"buzzOrder"`
	ChallengeBuzzOrder    []BuzzEntry   `json:"challengeBuzzOrder"`
	CurrentAnsweringTeam  int           `json:"currentAnsweringTeam"`
	WrongAnswerTeamID     int           `json:"wrongAnswerTeamId"`
	LastWrongAnswerTeamID int           `json:"lastWrongAnswerTeamId"`
	ChallengeAvailable    bool          `json:"challengeAvailable"`
	Teams                 []Team        `json:"teams"`
	AnsweredTeams         []int         `json:"answeredTeams"`
	ChallengeIneligible   []int         `json:"challengeIneligibleTeams"`
	LeaderboardFrozen     bool          `json:"leaderboardFrozen"`
}
