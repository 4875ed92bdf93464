package app

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"trivia-arena-service/internal/domain"
)

// Arena holds one live trivia session: roster, scores, buzz queues and the
// question phase machine. All mutation goes through its methods; a single
// mutex serializes them so buzz admission order is exactly call order.
type Arena struct {
	code        string
	adminConnID string
	scoring     domain.Scoring

	mu                    sync.RWMutex
	teams                 map[int]*domain.Team
	questionState         domain.QuestionState
	buzzOrder             []domain.BuzzEntry
	challengeBuzzOrder    []domain.BuzzEntry
	currentAnsweringTeam  int
	wrongAnswerTeamID     int
	lastWrongAnswerTeamID int
	challengeAvailable    bool
	answeredTeams         map[int]struct{}
	challengeIneligible   map[int]struct{}
	leaderboardFrozen     bool
	closed                bool
	subscribers           map[chan domain.Event]struct{}
}

func NewArena(code, adminConnID string, scoring domain.Scoring) *Arena {
	return &Arena{
		code:                code,
		adminConnID:         adminConnID,
		scoring:             scoring,
		teams:               make(map[int]*domain.Team),
		questionState:       domain.QuestionIdle,
		answeredTeams:       make(map[int]struct{}),
		challengeIneligible: make(map[int]struct{}),
		subscribers:         make(map[chan domain.Event]struct{}),
	}
}

func (a *Arena) Code() string { return a.code }

func (a *Arena) AdminConnID() string { return a.adminConnID }

// HasTeam reports whether a team id is currently registered.
func (a *Arena) HasTeam(id int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.teams[id]
	return ok
}

// AddTeam registers a team with score zero and announces it to the room.
// A blank name falls back to a numbered placeholder so queue displays never
// render empty.
func (a *Arena) AddTeam(id int, name string) domain.Team {
	a.mu.Lock()
	defer a.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		name = placeholderName(id)
	}
	team := domain.Team{ID: id, Name: name}
	a.teams[id] = &team
	a.broadcastLocked(
		domain.Event{Type: domain.EventTeamUpdate, Payload: domain.TeamUpdatePayload{TeamID: id, Name: name, Score: 0}},
		a.scoreEventLocked(),
	)
	return team
}

// RemoveTeam deletes a team and purges every reference to it: both queues,
// the answering/wrong-answer pointers and the eligibility sets.
func (a *Arena) RemoveTeam(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.teams[id]; !ok {
		return
	}
	delete(a.teams, id)
	a.buzzOrder = withoutTeam(a.buzzOrder, id)
	a.challengeBuzzOrder = withoutTeam(a.challengeBuzzOrder, id)
	if a.currentAnsweringTeam == id {
		a.currentAnsweringTeam = 0
	}
	if a.wrongAnswerTeamID == id {
		a.wrongAnswerTeamID = 0
	}
	if a.lastWrongAnswerTeamID == id {
		a.lastWrongAnswerTeamID = 0
	}
	delete(a.answeredTeams, id)
	delete(a.challengeIneligible, id)

	a.broadcastLocked(a.scoreEventLocked(), a.syncEventLocked())
}

// StartQuestion opens the primary buzz window. Double-start while a question
// is already open is rejected.
func (a *Arena) StartQuestion() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.questionState == domain.QuestionAnswering {
		return domain.ErrPhaseViolation
	}
	a.resetRoundLocked()
	a.questionState = domain.QuestionAnswering

	a.broadcastLocked(
		a.syncEventLocked(),
		domain.Event{Type: domain.EventQuestionStarted, Payload: domain.QuestionStartedPayload{QuestionState: a.questionState}},
	)
	return nil
}

// Buzz admits a team into the queue matching the current phase. Every
// rejection here is a silent drop: stale or duplicate buzzes are expected
// races between client taps and server phase changes, never errors.
func (a *Arena) Buzz(teamID int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	team, ok := a.teams[teamID]
	if !ok {
		return false
	}

	switch a.questionState {
	case domain.QuestionAnswering:
		if _, answered := a.answeredTeams[teamID]; answered {
			return false
		}
		if containsTeam(a.buzzOrder, teamID) {
			return false
		}
		a.buzzOrder = append(a.buzzOrder, domain.BuzzEntry{TeamID: teamID, Name: team.Name})
		a.broadcastLocked(a.buzzEventLocked())
		return true

	case domain.QuestionChallenge:
		if _, barred := a.challengeIneligible[teamID]; barred {
			return false
		}
		if teamID == a.currentAnsweringTeam {
			return false
		}
		if containsTeam(a.challengeBuzzOrder, teamID) {
			return false
		}
		a.challengeBuzzOrder = append(a.challengeBuzzOrder, domain.BuzzEntry{TeamID: teamID, Name: team.Name})
		a.broadcastLocked(domain.Event{
			Type:    domain.EventChallengeBuzz,
			Payload: domain.ChallengeBuzzPayload{ChallengeBuzzOrder: cloneEntries(a.challengeBuzzOrder)},
		})
		return true
	}

	// idle / finished: late buzz from a stale client.
	return false
}

// SelectAnsweringTeam grants the mic to a team. Valid in any state; queue
// order is informative but selection stays at the admin's discretion.
func (a *Arena) SelectAnsweringTeam(teamID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.teams[teamID]; !ok {
		return domain.ErrTeamNotFound
	}
	a.currentAnsweringTeam = teamID
	a.broadcastLocked(a.buzzEventLocked())
	return nil
}

// EvaluateAnswer scores a primary attempt. teamID zero defaults to the team
// currently holding the mic; with neither set the command is rejected rather
// than silently dropped.
func (a *Arena) EvaluateAnswer(teamID int, verdict domain.Verdict, bonus bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.questionState != domain.QuestionAnswering && a.questionState != domain.QuestionChallenge {
		return domain.ErrPhaseViolation
	}
	if teamID == 0 {
		teamID = a.currentAnsweringTeam
	}
	if teamID == 0 {
		return domain.ErrNoAnsweringTeam
	}
	team, ok := a.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}

	switch verdict {
	case domain.VerdictCorrect:
		team.Score += a.scoring.Correct
		if bonus {
			team.Score += a.scoring.Bonus
		}
		a.answeredTeams[teamID] = struct{}{}
		a.wrongAnswerTeamID = 0
		a.lastWrongAnswerTeamID = 0
		a.challengeAvailable = false
		a.challengeBuzzOrder = nil
		a.currentAnsweringTeam = teamID
		a.questionState = domain.QuestionFinished

		a.broadcastLocked(
			a.scoreEventLocked(),
			domain.Event{Type: domain.EventQuestionEnded, Payload: domain.QuestionEndedPayload{Reason: domain.EndAnswered, WinningTeam: team.Name}},
		)
		return nil

	case domain.VerdictWrong:
		team.Score += a.scoring.Wrong
		a.answeredTeams[teamID] = struct{}{}
		a.wrongAnswerTeamID = teamID
		a.lastWrongAnswerTeamID = teamID
		a.currentAnsweringTeam = 0

		if a.questionState == domain.QuestionAnswering {
			// A failed challenge never reopens the window, so only a wrong
			// primary answer arms it.
			a.challengeAvailable = true
			a.broadcastLocked(
				a.scoreEventLocked(),
				domain.Event{Type: domain.EventChallengeAvailable, Payload: domain.ChallengeAvailablePayload{
					WrongAnswerTeamID: teamID,
					WrongTeamName:     team.Name,
					BuzzOrder:         cloneEntries(a.buzzOrder),
				}},
			)
		} else {
			a.broadcastLocked(a.scoreEventLocked(), a.syncEventLocked())
		}
		return nil

	default:
		return domain.ErrUnknownVerdict
	}
}

// OpenChallenge opens the secondary buzz window. Only valid immediately
// after a wrong primary answer that has not already been challenge-opened.
func (a *Arena) OpenChallenge() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.questionState != domain.QuestionAnswering || !a.challengeAvailable {
		return domain.ErrPhaseViolation
	}
	if a.wrongAnswerTeamID != 0 {
		a.challengeIneligible[a.wrongAnswerTeamID] = struct{}{}
	}
	a.challengeBuzzOrder = nil
	a.challengeAvailable = false
	a.questionState = domain.QuestionChallenge

	a.broadcastLocked(domain.Event{Type: domain.EventChallengeOpen, Payload: domain.ChallengeOpenPayload{
		CurrentAnsweringTeam: a.currentAnsweringTeam,
		BuzzOrder:            cloneEntries(a.buzzOrder),
		WrongAnswerTeamID:    a.wrongAnswerTeamID,
	}})
	return nil
}

// CloseChallenge ends the challenge window without a ruling. The round
// returns to answering while unanswered teams remain, otherwise finishes
// exhausted.
func (a *Arena) CloseChallenge() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.questionState != domain.QuestionChallenge {
		return domain.ErrPhaseViolation
	}
	a.challengeBuzzOrder = nil
	a.challengeAvailable = false
	a.wrongAnswerTeamID = 0

	if a.remainingCandidatesLocked() {
		a.questionState = domain.QuestionAnswering
		a.broadcastLocked(
			domain.Event{Type: domain.EventChallengeClosed, Payload: domain.QuestionStartedPayload{QuestionState: a.questionState}},
			a.syncEventLocked(),
		)
		return nil
	}
	a.questionState = domain.QuestionFinished
	a.broadcastLocked(
		domain.Event{Type: domain.EventQuestionEnded, Payload: domain.QuestionEndedPayload{Reason: domain.EndExhausted}},
	)
	return nil
}

// EvaluateChallenge scores a challenge attempt. teamID zero defaults to the
// head of the challenge queue; the ruled team must be queued.
func (a *Arena) EvaluateChallenge(teamID int, verdict domain.Verdict, bonus bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.questionState != domain.QuestionChallenge {
		return domain.ErrPhaseViolation
	}
	if teamID == 0 {
		if len(a.challengeBuzzOrder) == 0 {
			return domain.ErrNoAnsweringTeam
		}
		teamID = a.challengeBuzzOrder[0].TeamID
	}
	if !containsTeam(a.challengeBuzzOrder, teamID) {
		return domain.ErrTeamNotFound
	}
	team, ok := a.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}

	switch verdict {
	case domain.VerdictCorrect:
		team.Score += a.scoring.ChallengeCorrect
		if bonus {
			team.Score += a.scoring.Bonus
		}
		a.answeredTeams[teamID] = struct{}{}
		a.challengeIneligible[teamID] = struct{}{}
		a.challengeBuzzOrder = nil
		a.challengeAvailable = false
		a.wrongAnswerTeamID = 0
		a.currentAnsweringTeam = teamID
		a.questionState = domain.QuestionFinished

		a.broadcastLocked(
			a.scoreEventLocked(),
			domain.Event{Type: domain.EventQuestionEnded, Payload: domain.QuestionEndedPayload{Reason: domain.EndChallenge, WinningTeam: team.Name}},
		)
		return nil

	case domain.VerdictWrong:
		team.Score += a.scoring.ChallengeWrong
		a.answeredTeams[teamID] = struct{}{}
		a.challengeIneligible[teamID] = struct{}{}
		a.challengeBuzzOrder = nil
		a.challengeAvailable = false
		a.wrongAnswerTeamID = 0
		a.currentAnsweringTeam = 0

		if a.remainingCandidatesLocked() {
			a.questionState = domain.QuestionAnswering
			a.broadcastLocked(a.scoreEventLocked(), a.syncEventLocked())
			return nil
		}
		a.questionState = domain.QuestionFinished
		a.broadcastLocked(
			a.scoreEventLocked(),
			domain.Event{Type: domain.EventQuestionEnded, Payload: domain.QuestionEndedPayload{Reason: domain.EndExhausted}},
		)
		return nil

	default:
		return domain.ErrUnknownVerdict
	}
}

// NextQuestion clears every round-scoped field and returns to idle. Scores
// and the roster are untouched.
func (a *Arena) NextQuestion() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.resetRoundLocked()
	a.questionState = domain.QuestionIdle

	sync := a.syncEventLocked()
	a.broadcastLocked(
		sync,
		a.scoreEventLocked(),
		domain.Event{Type: domain.EventStateReset, Payload: sync.Payload},
	)
}

// CustomScore applies an arbitrary non-zero delta with no phase effect.
func (a *Arena) CustomScore(teamID, delta int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if delta == 0 {
		return domain.ErrZeroDelta
	}
	team, ok := a.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	team.Score += delta
	a.broadcastLocked(a.scoreEventLocked())
	return nil
}

// SetLeaderboardFrozen toggles the spectator scoreboard display.
func (a *Arena) SetLeaderboardFrozen(frozen bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.leaderboardFrozen = frozen
	a.broadcastLocked(domain.Event{
		Type:    domain.EventLeaderboardFreeze,
		Payload: domain.LeaderboardFreezePayload{LeaderboardFrozen: frozen},
	})
}

// Publish broadcasts a service-level event (final winner announcements) to
// every subscriber.
func (a *Arena) Publish(ev domain.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.broadcastLocked(ev)
}

// Close announces teardown and drops every subscriber. Idempotent.
func (a *Arena) Close(reason domain.CloseReason) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true
	a.broadcastLocked(domain.Event{
		Type:    domain.EventArenaClosed,
		Payload: domain.ArenaClosedPayload{Reason: reason, Code: a.code},
	})
	for ch := range a.subscribers {
		close(ch)
		delete(a.subscribers, ch)
	}
}

// Closed reports whether teardown already ran.
func (a *Arena) Closed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.closed
}

// Subscribe registers a listener and seeds it with the current full state.
// The caller must invoke the returned cancel function to avoid leaks.
func (a *Arena) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	a.subscribers[ch] = struct{}{}
	ch <- a.syncEventLocked()
	ch <- a.scoreEventLocked()
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		if _, ok := a.subscribers[ch]; ok {
			delete(a.subscribers, ch)
			close(ch)
		}
		a.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot returns the full denormalized arena state.
func (a *Arena) Snapshot() domain.ArenaSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshotLocked()
}

// Teams returns the roster sorted by team id.
func (a *Arena) Teams() []domain.Team {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.teamsLocked()
}

func (a *Arena) resetRoundLocked() {
	a.buzzOrder = nil
	a.challengeBuzzOrder = nil
	a.currentAnsweringTeam = 0
	a.wrongAnswerTeamID = 0
	a.lastWrongAnswerTeamID = 0
	a.challengeAvailable = false
	a.answeredTeams = make(map[int]struct{})
	a.challengeIneligible = make(map[int]struct{})
}

// remainingCandidatesLocked reports whether any registered team has not yet
// had an answer ruled on this question.
func (a *Arena) remainingCandidatesLocked() bool {
	for id := range a.teams {
		if _, done := a.answeredTeams[id]; !done {
			return true
		}
	}
	return false
}

func (a *Arena) snapshotLocked() domain.ArenaSnapshot {
	return domain.ArenaSnapshot{
		ArenaCode:             a.code,
		QuestionState:         a.questionState,
		BuzzOrder:             cloneEntries(a.buzzOrder),
		ChallengeBuzzOrder:    cloneEntries(a.challengeBuzzOrder),
		CurrentAnsweringTeam:  a.currentAnsweringTeam,
		WrongAnswerTeamID:     a.wrongAnswerTeamID,
		LastWrongAnswerTeamID: a.lastWrongAnswerTeamID,
		ChallengeAvailable:    a.challengeAvailable,
		Teams:                 a.teamsLocked(),
		AnsweredTeams:         sortedIDs(a.answeredTeams),
		ChallengeIneligible:   sortedIDs(a.challengeIneligible),
		LeaderboardFrozen:     a.leaderboardFrozen,
	}
}

func (a *Arena) teamsLocked() []domain.Team {
	teams := make([]domain.Team, 0, len(a.teams))
	for _, team := range a.teams {
		teams = append(teams, *team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams
}

func (a *Arena) syncEventLocked() domain.Event {
	return domain.Event{Type: domain.EventStateSync, Payload: a.snapshotLocked()}
}

func (a *Arena) scoreEventLocked() domain.Event {
	return domain.Event{Type: domain.EventScoreUpdate, Payload: domain.ScoreUpdatePayload{Teams: a.teamsLocked()}}
}

func (a *Arena) buzzEventLocked() domain.Event {
	return domain.Event{Type: domain.EventBuzzUpdate, Payload: domain.BuzzUpdatePayload{
		BuzzOrder:            cloneEntries(a.buzzOrder),
		CurrentAnsweringTeam: a.currentAnsweringTeam,
	}}
}

func (a *Arena) broadcastLocked(events ...domain.Event) {
	for _, ev := range events {
		for ch := range a.subscribers {
			select {
			case ch <- ev:
			default:
				// Drop the oldest update rather than block the arena on a
				// slow consumer.
				select {
				case <-ch:
				default:
				}
				ch <- ev
			}
		}
	}
}

func containsTeam(entries []domain.BuzzEntry, teamID int) bool {
	for _, e := range entries {
		if e.TeamID == teamID {
			return true
		}
	}
	return false
}

func withoutTeam(entries []domain.BuzzEntry, teamID int) []domain.BuzzEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.TeamID != teamID {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneEntries(entries []domain.BuzzEntry) []domain.BuzzEntry {
	out := make([]domain.BuzzEntry, len(entries))
	copy(out, entries)
	return out
}

func placeholderName(id int) string {
	return "Team " + strconv.Itoa(id)
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
