package domain

// EventType names an outbound broadcast or unicast message.
type EventType string

const (
	EventArenaCreated       EventType = "arena-created"
	EventJoinSuccess        EventType = "join-success"
	EventTeamUpdate         EventType = "team-update"
	EventStateSync          EventType = "state-sync"
	EventStateReset         EventType = "state-reset"
	EventScoreUpdate        EventType = "score-update"
	EventBuzzUpdate         EventType = "buzz-update"
	EventChallengeBuzz      EventType = "challenge-buzz-update"
	EventQuestionStarted    EventType = "question-started"
	EventChallengeAvailable EventType = "challenge-available"
	EventChallengeOpen      EventType = "challenge-open"
	EventChallengeClosed    EventType = "challenge-closed"
	EventQuestionEnded      EventType = "question-ended"
	EventLeaderboardFreeze  EventType = "leaderboard-freeze-update"
	EventFinalWinner        EventType = "final-winner"
	EventPreviousWinners    EventType = "previous-winners"
	EventArenaClosed        EventType = "arena-closed"
	EventError              EventType = "error"
)

// Event is one tagged message delivered to clients. Payload carries one of
// the typed payload structs below (or an ArenaSnapshot for state events).
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

type ArenaCreatedPayload struct {
	Code            string   `json:"code"`
	AdminName       string   `json:"adminName"`
	PreviousWinners []Winner `json:"previousWinners"`
}

type JoinSuccessPayload struct {
	TeamID    int    `json:"teamId"`
	TeamName  string `json:"teamName"`
	ArenaCode string `json:"arenaCode"`
}

type TeamUpdatePayload struct {
	TeamID int    `json:"teamId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

type ScoreUpdatePayload struct {
	Teams []Team `json:"teams"`
}

type BuzzUpdatePayload struct {
	BuzzOrder            []BuzzEntry `json:"buzzOrder"`
	CurrentAnsweringTeam int         `json:"currentAnsweringTeam"`
}

type ChallengeBuzzPayload struct {
	ChallengeBuzzOrder []BuzzEntry `json:"challengeBuzzOrder"`
}

type QuestionStartedPayload struct {
	QuestionState QuestionState `json:"questionState"`
}

type ChallengeAvailablePayload struct {
	WrongAnswerTeamID int         `json:"wrongAnswerTeamId"`
	WrongTeamName     string      `json:"wrongTeamName"`
	BuzzOrder         []BuzzEntry `json:"buzzOrder"`
}

type ChallengeOpenPayload struct {
	CurrentAnsweringTeam int         `json:"currentAnsweringTeam"`
	BuzzOrder            []BuzzEntry `json:"buzzOrder"`
	WrongAnswerTeamID    int         `json:"wrongAnswerTeamId"`
}

type QuestionEndedPayload struct {
	Reason      EndReason `json:"reason"`
	WinningTeam string    `json:"winningTeam,omitempty"`
}

type LeaderboardFreezePayload struct {
	LeaderboardFrozen bool `json:"leaderboardFrozen"`
}

type FinalWinnerPayload struct {
	WinnerName string `json:"winnerName"`
}

type PreviousWinnersPayload struct {
	Winners []Winner `json:"winners"`
}

type ArenaClosedPayload struct {
	Reason CloseReason `json:"reason"`
	Code   string      `json:"code"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
