package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"ballknowledge-game-service/internal/app"
	"ballknowledge-game-service/internal/chat"
	"ballknowledge-game-service/internal/domain"
)

const defaultLeaderboardSize = 5

// Deps bundles what a connection needs: the question generator, the
// durable score store, the engine timing knobs, and (optionally) the
// assistant replier and its history store.
type Deps struct {
	Generator   app.Generator
	Scores      app.ScoreStore
	Engine      app.EngineConfig
	Replier     chat.Replier
	ChatHistory chat.HistoryStore
}

// WSHandler runs one game session per websocket connection.
type WSHandler struct {
	deps     Deps
	upgrader websocket.Upgrader
}

func NewWSHandler(deps Deps) *WSHandler {
	return &WSHandler{
		deps: deps,
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

type startPayload struct {
	GameMode domain.GameMode `json:"gameMode"`
	Topic    string          `json:"topic"`
}

type answerPayload struct {
	Option string `json:"option"`
}

type namePayload struct {
	Name string `json:"name"`
}

type tokenPayload struct {
	Token string `json:"token"`
}

type limitPayload struct {
	Limit int `json:"limit"`
}

type chatPayload struct {
	Message string `json:"message"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type leaderboardPayload struct {
	Entries []domain.LeaderboardEntry `json:"entries"`
}

// ServeWS upgrades the request, resolves the typed start state from the
// optional ?challenge= token, and runs the session loop. Game events flow
// out through a single writer; inbound messages drive the session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	startCfg := app.ResolveStart(r.URL.Query().Get("challenge"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	svc := app.NewGameService(h.deps.Generator, h.deps.Scores, h.deps.Engine)
	defer svc.Close()

	events, cancel := svc.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev}:
				case <-closeSignals:
					return
				}
				if ev.Type == app.EventStatus && ev.Status == domain.StatusIdle {
					// The idle screen shows the leaderboard; refresh it
					// alongside every return to idle.
					h.pushLeaderboard(r.Context(), svc, send, writerDone, defaultLeaderboardSize)
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// push delivers to the writer without wedging the reader if the
	// writer has already exited.
	push := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	if startCfg.Challenge != nil {
		// Seeded start from a share link; the payload is single-use and
		// not consulted again.
		if err := svc.IngestChallenge(startCfg.Challenge); err != nil {
			push(errorMessage(err))
		}
	}

	var chatSession *chat.Session

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(errorMessage(errInvalidPayload))
				continue
			}
			if err := svc.StartGame(r.Context(), payload.GameMode, payload.Topic); err != nil {
				push(errorMessage(err))
			}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(errorMessage(errInvalidPayload))
				continue
			}
			if err := svc.SelectAnswer(payload.Option); err != nil {
				push(errorMessage(err))
			}
		case "saveScore":
			var payload namePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(errorMessage(errInvalidPayload))
				continue
			}
			if err := svc.SaveScore(r.Context(), payload.Name); err != nil {
				push(errorMessage(err))
				continue
			}
			push(outboundMessage[any]{Type: "scoreSaved", Payload: namePayload{Name: payload.Name}})
			h.pushLeaderboard(r.Context(), svc, send, writerDone, defaultLeaderboardSize)
		case "challengeLink":
			var payload namePayload
			_ = json.Unmarshal(inbound.Payload, &payload)
			token, err := svc.ChallengeToken(payload.Name)
			if err != nil {
				push(errorMessage(err))
				continue
			}
			push(outboundMessage[any]{Type: "challengeLink", Payload: tokenPayload{Token: token}})
		case "challenge":
			var payload tokenPayload
			_ = json.Unmarshal(inbound.Payload, &payload)
			resolved := app.ResolveStart(payload.Token)
			if resolved.Challenge == nil {
				// Bad token is treated as no challenge at all: stay where
				// we are and resend the idle furniture.
				h.pushLeaderboard(r.Context(), svc, send, writerDone, defaultLeaderboardSize)
				continue
			}
			if err := svc.IngestChallenge(resolved.Challenge); err != nil {
				push(errorMessage(err))
			}
		case "playAgain":
			if err := svc.PlayAgain(r.Context()); err != nil {
				push(errorMessage(err))
			}
		case "goHome":
			svc.GoHome()
		case "leaderboard":
			var payload limitPayload
			_ = json.Unmarshal(inbound.Payload, &payload)
			limit := payload.Limit
			if limit <= 0 {
				limit = defaultLeaderboardSize
			}
			h.pushLeaderboard(r.Context(), svc, send, writerDone, limit)
		case "chat":
			var payload chatPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(errorMessage(errInvalidPayload))
				continue
			}
			if h.deps.Replier == nil {
				push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "assistant not configured"}})
				continue
			}
			if chatSession == nil {
				chatSession = chat.NewSession(h.deps.Replier, h.deps.ChatHistory)
			}
			go func(session *chat.Session, prompt string) {
				reply, err := session.Send(r.Context(), prompt)
				var msg outboundMessage[any]
				if err != nil {
					msg = outboundMessage[any]{Type: "chat", Payload: domain.ChatMessage{
						Role: "model",
						Text: "There was an error communicating with the AI. Please try again later.",
					}}
				} else {
					msg = outboundMessage[any]{Type: "chat", Payload: reply}
				}
				push(msg)
			}(chatSession, payload.Message)
		default:
			push(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-eventsDone
	<-writerDone
}

func (h *WSHandler) pushLeaderboard(ctx context.Context, svc *app.GameService, send chan<- outboundMessage[any], done <-chan struct{}, limit int) {
	entries := svc.TopScores(ctx, limit)
	select {
	case send <- outboundMessage[any]{Type: "leaderboard", Payload: leaderboardPayload{Entries: entries}}:
	case <-done:
	}
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

var errInvalidPayload = errors.New("invalid payload")
