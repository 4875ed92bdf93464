package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"trivia-arena-service/internal/app"
	"trivia-arena-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler is the session coordinator: it upgrades connections, resolves
// each inbound command against the arena service and relays arena broadcasts
// back out. It is the only component aware of connections and rooms.
type WSHandler struct {
	service  *app.ArenaService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ArenaService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createArenaPayload struct {
	AdminName string `json:"adminName"`
}

type joinArenaPayload struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type selectTeamPayload struct {
	TeamID int `json:"teamId"`
}

type evaluateAnswerPayload struct {
	Result string `json:"result"`
	TeamID int    `json:"teamId"`
	Bonus  bool   `json:"bonus"`
}

type evaluateChallengePayload struct {
	Team   int    `json:"team"`
	Result string `json:"result"`
	Bonus  bool   `json:"bonus"`
}

type customScorePayload struct {
	TeamID int `json:"teamId"`
	Delta  int `json:"delta"`
}

type freezePayload struct {
	Frozen bool `json:"frozen"`
}

type finalWinnerPayload struct {
	WinnerName string `json:"winnerName"`
}

// ServeWS upgrades the request and runs the per-connection command loop.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	defer h.service.Disconnect(connID)

	send := make(chan domain.Event, 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var forwarders sync.WaitGroup

	go func() {
		defer close(writerDone)
		for ev := range send {
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	emit := func(ev domain.Event) {
		select {
		case send <- ev:
		case <-closeSignals:
		}
	}
	emitErr := func(err error) {
		emit(domain.Event{Type: domain.EventError, Payload: domain.ErrorPayload{Message: err.Error()}})
	}

	// cancelSub detaches the previous arena subscription when the connection
	// creates or joins a new arena; only the read loop touches it.
	var cancelSub func()
	attach := func(arena *app.Arena) {
		if cancelSub != nil {
			cancelSub()
		}
		events, cancel := arena.Subscribe()
		cancelSub = cancel
		forwarders.Add(1)
		go func() {
			defer forwarders.Done()
			for ev := range events {
				select {
				case send <- ev:
				case <-closeSignals:
					return
				}
			}
		}()
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, connID, inbound, emit, emitErr, attach)
	}

	if cancelSub != nil {
		cancelSub()
	}
	close(closeSignals)
	forwarders.Wait()
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, connID string, inbound inboundMessage, emit func(domain.Event), emitErr func(error), attach func(*app.Arena)) {
	ctx := r.Context()

	switch inbound.Type {
	case "create-arena":
		var p createArenaPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			emitErr(domain.ErrNameRequired)
			return
		}
		arena, history, err := h.service.CreateArena(ctx, connID, p.AdminName)
		if err != nil {
			emitErr(err)
			return
		}
		attach(arena)
		if history == nil {
			history = []domain.Winner{}
		}
		emit(domain.Event{Type: domain.EventArenaCreated, Payload: domain.ArenaCreatedPayload{
			Code:            arena.Code(),
			AdminName:       p.AdminName,
			PreviousWinners: history,
		}})

	case "join-arena":
		var p joinArenaPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			emitErr(domain.ErrNameRequired)
			return
		}
		arena, team, err := h.service.JoinArena(ctx, connID, p.Code, p.Name)
		if err != nil {
			emitErr(err)
			return
		}
		attach(arena)
		emit(domain.Event{Type: domain.EventJoinSuccess, Payload: domain.JoinSuccessPayload{
			TeamID:    team.ID,
			TeamName:  team.Name,
			ArenaCode: arena.Code(),
		}})

	case "buzz":
		// Identity comes from the connection; rejections are silent.
		h.service.Buzz(connID)

	case "start-question":
		if err := h.service.StartQuestion(connID); err != nil {
			emitErr(err)
		}

	case "select-answer-team":
		var p selectTeamPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			emitErr(domain.ErrTeamNotFound)
			return
		}
		if err := h.service.SelectAnsweringTeam(connID, p.TeamID); err != nil {
			emitErr(err)
		}

	case "evaluate-answer":
		var p evaluateAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			emitErr(domain.ErrUnknownVerdict)
			return
		}
		verdict, err := parseVerdict(p.Result)
		if err != nil {
			emitErr(err)
			return
		}
		if err := h.service.EvaluateAnswer(connID, p.TeamID, verdict, p.Bonus); err != nil {
			emitErr(err)
		}

	case "open-challenge":
		if err := h.service.OpenChallenge(connID); err != nil {
			emitErr(err)
		}

	case "close-challenge":
		if err := h.service.CloseChallenge(connID); err != nil {
			emitErr(err)
		}

	case "evaluate-challenge":
		var p evaluateChallengePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			emitErr(domain.ErrUnknownVerdict)
			return
		}
		verdict, err := parseVerdict(p.Result)
		if err != nil {
			emitErr(err)
			return
		}
		if err := h.service.EvaluateChallenge(connID, p.Team, verdict, p.Bonus); err != nil {
			emitErr(err)
		}

	case "next-question":
		if err := h.service.NextQuestion(connID); err != nil {
			emitErr(err)
		}

	case "custom-score":
		var p customScorePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			emitErr(domain.ErrZeroDelta)
			return
		}
		if err := h.service.CustomScore(connID, p.TeamID, p.Delta); err != nil {
			emitErr(err)
		}

	case "set-leaderboard-frozen":
		var p freezePayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			emitErr(domain.ErrUnauthorized)
			return
		}
		if err := h.service.SetLeaderboardFrozen(connID, p.Frozen); err != nil {
			emitErr(err)
		}

	case "announce-final-winner":
		var p finalWinnerPayload
		if err := json.Unmarshal(inbound.Payload, &p); err != nil {
			emitErr(domain.ErrWinnerNameRequired)
			return
		}
		if err := h.service.AnnounceFinalWinner(ctx, connID, p.WinnerName); err != nil {
			emitErr(err)
		}

	case "request-winners":
		winners, err := h.service.PreviousWinners(ctx, connID)
		if err != nil {
			emitErr(err)
			return
		}
		if winners == nil {
			winners = []domain.Winner{}
		}
		emit(domain.Event{Type: domain.EventPreviousWinners, Payload: domain.PreviousWinnersPayload{Winners: winners}})

	default:
		emit(domain.Event{Type: domain.EventError, Payload: domain.ErrorPayload{Message: "unsupported message type"}})
	}
}

func parseVerdict(result string) (domain.Verdict, error) {
	switch domain.Verdict(result) {
	case domain.VerdictCorrect:
		return domain.VerdictCorrect, nil
	case domain.VerdictWrong:
		return domain.VerdictWrong, nil
	default:
		return "", domain.ErrUnknownVerdict
	}
}
