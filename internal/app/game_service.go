package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ballknowledge-game-service/internal/challenge"
	"ballknowledge-game-service/internal/domain"
)

// Generator produces question sets for a topic. Implementations live in
// internal/content; failures surface as domain.ErrContentGeneration.
type Generator interface {
	QuizQuestions(ctx context.Context, topic string) ([]domain.QuizQuestion, error)
	PlayerQuizQuestions(ctx context.Context, topic string) ([]domain.PlayerQuizQuestion, error)
}

// ScoreStore is the durable, append-only leaderboard collection.
type ScoreStore interface {
	Append(ctx context.Context, entry domain.LeaderboardEntry) error
	Load(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

// GameService owns exactly one active game session at a time: it mediates
// between content acquisition, the mode-appropriate play engine, and the
// results stage. Transports create one GameService per connected player.
type GameService struct {
	id        string
	generator Generator
	scores    ScoreStore
	cfg       EngineConfig
	now       func() time.Time

	mu         sync.Mutex
	status     domain.GameStatus
	mode       domain.GameMode
	topic      string
	questions  domain.QuestionSet
	engine     engine
	score      int
	challenger *domain.Challenger
	scoreSaved bool
	savedName  string
	epoch      int
	cancelGen  context.CancelFunc

	subMu       sync.Mutex
	subscribers map[chan Event]struct{}
}

func NewGameService(generator Generator, scores ScoreStore, cfg EngineConfig) *GameService {
	return &GameService{
		id:          uuid.New().String(),
		generator:   generator,
		scores:      scores,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
		status:      domain.StatusIdle,
		subscribers: make(map[chan Event]struct{}),
	}
}

// ID identifies this session, mostly for log correlation.
func (s *GameService) ID() string { return s.id }

// Subscribe returns a channel of session events plus a cancel func the
// caller must invoke to avoid leaks. The current status is delivered
// first.
func (s *GameService) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	initial := Event{Type: EventStatus, Status: s.status}
	s.mu.Unlock()

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	ch <- initial

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *GameService) broadcast(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest queued event rather than blocking the engine.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// StartGame begins a new session for mode and topic: loading, then an
// asynchronous content request, then playing. At most one request may be
// in flight; starts are rejected while loading or playing.
func (s *GameService) StartGame(ctx context.Context, mode domain.GameMode, topic string) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown game mode %q", mode)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.ErrEmptyTopic
	}

	s.mu.Lock()
	if s.status == domain.StatusLoading || s.status == domain.StatusPlaying {
		s.mu.Unlock()
		return domain.ErrGameInProgress
	}
	s.resetSessionLocked()
	s.status = domain.StatusLoading
	s.mode = mode
	s.topic = topic
	s.epoch++
	epoch := s.epoch
	genCtx, cancel := context.WithCancel(ctx)
	s.cancelGen = cancel
	s.mu.Unlock()

	s.broadcast(Event{Type: EventStatus, Status: domain.StatusLoading})
	go s.generate(genCtx, epoch, mode, topic)
	return nil
}

func (s *GameService) generate(ctx context.Context, epoch int, mode domain.GameMode, topic string) {
	var set domain.QuestionSet
	var err error
	if mode == domain.ModePlayerGuess {
		set.Player, err = s.generator.PlayerQuizQuestions(ctx, topic)
	} else {
		set.Quiz, err = s.generator.QuizQuestions(ctx, topic)
	}
	if err == nil {
		// Provider output is validated before acceptance; a violated
		// invariant is a generation failure, not a playable set.
		if verr := domain.ValidateQuestionSet(mode, set); verr != nil {
			err = fmt.Errorf("%w: %v", domain.ErrContentGeneration, verr)
		}
	}

	s.mu.Lock()
	if epoch != s.epoch || s.status != domain.StatusLoading {
		// The session was reset or superseded while we were generating;
		// a late response must not mutate it.
		s.mu.Unlock()
		return
	}
	if err != nil {
		log.Printf("session %s: generation failed: %v", s.id, err)
		s.status = domain.StatusIdle
		s.cancelGen = nil
		s.mu.Unlock()
		s.broadcast(Event{Type: EventStatus, Status: domain.StatusIdle, Error: domain.ErrContentGeneration.Error()})
		return
	}
	s.questions = set
	s.cancelGen = nil
	eng := s.startEngineLocked(epoch)
	s.mu.Unlock()

	s.broadcast(Event{Type: EventStatus, Status: domain.StatusPlaying})
	eng.Start()
}

// startEngineLocked transitions to playing and builds the mode-appropriate
// engine. Caller holds s.mu.
func (s *GameService) startEngineLocked(epoch int) engine {
	s.status = domain.StatusPlaying
	s.score = 0
	s.scoreSaved = false
	onEnd := func(score int) { s.endGame(epoch, score) }
	switch s.mode {
	case domain.ModePlayerGuess:
		s.engine = newPlayerGuessEngine(s.questions.Player, s.cfg, s.broadcast, onEnd)
	case domain.ModeFastestFinger:
		s.engine = newFastestFingerEngine(s.questions.Quiz, s.cfg, s.broadcast, onEnd)
	default:
		s.engine = newTriviaEngine(s.questions.Quiz, s.cfg, s.broadcast, onEnd)
	}
	return s.engine
}

// endGame is the engine's completion callback; it fires exactly once per
// engine and moves the session to finished.
func (s *GameService) endGame(epoch int, score int) {
	s.mu.Lock()
	if epoch != s.epoch || s.status != domain.StatusPlaying {
		s.mu.Unlock()
		return
	}
	s.score = score
	s.status = domain.StatusFinished
	s.engine = nil
	result := s.resultLocked()
	s.mu.Unlock()

	s.broadcast(Event{Type: EventFinished, Status: domain.StatusFinished, Score: score, Result: &result})
}

// SelectAnswer forwards an answer selection to the active engine.
func (s *GameService) SelectAnswer(option string) error {
	s.mu.Lock()
	eng := s.engine
	playing := s.status == domain.StatusPlaying
	s.mu.Unlock()
	if !playing || eng == nil {
		return domain.ErrNotPlaying
	}
	eng.Select(option)
	return nil
}

// IngestChallenge seeds the session from a decoded challenge payload and
// enters playing directly, skipping loading. The payload is single-use;
// callers discard the token after a successful ingestion.
func (s *GameService) IngestChallenge(payload *domain.ChallengePayload) error {
	if payload == nil {
		return domain.ErrMalformedChallenge
	}
	s.mu.Lock()
	if s.status == domain.StatusLoading || s.status == domain.StatusPlaying {
		s.mu.Unlock()
		return domain.ErrGameInProgress
	}
	s.resetSessionLocked()
	s.mode = payload.GameType
	s.topic = payload.Topic
	s.questions = payload.Questions
	ch := payload.Challenger
	s.challenger = &ch
	s.epoch++
	eng := s.startEngineLocked(s.epoch)
	s.mu.Unlock()

	s.broadcast(Event{Type: EventStatus, Status: domain.StatusPlaying})
	eng.Start()
	return nil
}

// GoHome abandons whatever is running and returns to idle: engine timers
// are cancelled and any in-flight content request's effects discarded.
func (s *GameService) GoHome() {
	s.mu.Lock()
	s.epoch++
	if s.cancelGen != nil {
		s.cancelGen()
		s.cancelGen = nil
	}
	eng := s.engine
	s.resetSessionLocked()
	s.status = domain.StatusIdle
	s.mu.Unlock()

	if eng != nil {
		eng.Stop()
	}
	s.broadcast(Event{Type: EventStatus, Status: domain.StatusIdle})
}

// PlayAgain restarts with the prior mode and topic, falling back to
// GoHome when none is recorded.
func (s *GameService) PlayAgain(ctx context.Context) error {
	s.mu.Lock()
	mode, topic := s.mode, s.topic
	s.mu.Unlock()
	if mode == "" || topic == "" {
		s.GoHome()
		return nil
	}
	return s.StartGame(ctx, mode, topic)
}

// resetSessionLocked clears per-session state. Caller holds s.mu and is
// responsible for stopping any engine it grabbed beforehand.
func (s *GameService) resetSessionLocked() {
	s.engine = nil
	s.mode = ""
	s.topic = ""
	s.questions = domain.QuestionSet{}
	s.score = 0
	s.challenger = nil
	s.scoreSaved = false
	s.savedName = ""
}

// SaveScore appends a leaderboard entry for the finished session. It is
// idempotent per session; storage failures are logged and swallowed so
// the in-memory result stays valid.
func (s *GameService) SaveScore(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	if s.status != domain.StatusFinished {
		s.mu.Unlock()
		return domain.ErrNotFinished
	}
	if s.scoreSaved {
		s.mu.Unlock()
		return domain.ErrScoreSaved
	}
	if name == "" || len(name) > domain.MaxPlayerNameLen {
		s.mu.Unlock()
		return domain.ErrInvalidName
	}
	entry := domain.LeaderboardEntry{
		Name:     name,
		Score:    s.score,
		Topic:    s.topic,
		Date:     s.now().UTC(),
		GameMode: s.mode,
	}
	s.scoreSaved = true
	s.savedName = name
	s.mu.Unlock()

	if err := s.scores.Append(ctx, entry); err != nil {
		log.Printf("session %s: save score: %v", s.id, err)
	}
	return nil
}

// TopScores loads the leaderboard, degrades to empty on storage errors,
// and returns the n highest entries in rank order.
func (s *GameService) TopScores(ctx context.Context, n int) []domain.LeaderboardEntry {
	entries, err := s.scores.Load(ctx)
	if err != nil {
		log.Printf("session %s: load leaderboard: %v", s.id, err)
		return nil
	}
	return Rank(entries, n)
}

// ChallengeToken encodes the finished session as a shareable challenge
// for the named issuer. The saved name is reused when name is empty.
func (s *GameService) ChallengeToken(name string) (string, error) {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusFinished {
		return "", domain.ErrNotFinished
	}
	if name == "" {
		name = s.savedName
	}
	if name == "" || len(name) > domain.MaxPlayerNameLen {
		return "", domain.ErrInvalidName
	}
	return challenge.Encode(domain.ChallengePayload{
		GameType:  s.mode,
		Topic:     s.topic,
		Questions: s.questions,
		Challenger: domain.Challenger{
			Name:  name,
			Score: s.score,
		},
	})
}

// Close tears the session down: timers cancelled, in-flight generation
// discarded. Subscribers are cancelled by their own cancel funcs.
func (s *GameService) Close() {
	s.mu.Lock()
	s.epoch++
	if s.cancelGen != nil {
		s.cancelGen()
		s.cancelGen = nil
	}
	eng := s.engine
	s.engine = nil
	s.mu.Unlock()
	if eng != nil {
		eng.Stop()
	}
}

// resultLocked builds the results-stage summary. Caller holds s.mu.
func (s *GameService) resultLocked() Result {
	res := Result{Score: s.score}
	if s.mode == domain.ModeFastestFinger {
		res.Display = fmt.Sprintf("%d", s.score)
	} else {
		res.Denominator = domain.QuestionSetSize
		res.Display = fmt.Sprintf("%d/%d", s.score, domain.QuestionSetSize)
	}
	if s.challenger != nil {
		ch := *s.challenger
		res.Challenger = &ch
		switch {
		case s.score > ch.Score:
			res.Outcome = "won"
			res.Message = fmt.Sprintf("Congratulations! You beat %s!", ch.Name)
		case s.score < ch.Score:
			res.Outcome = "lost"
			res.Message = fmt.Sprintf("So close! %s won this time.", ch.Name)
		default:
			res.Outcome = "tie"
			res.Message = "It's a tie! What a match!"
		}
		return res
	}
	if s.mode == domain.ModeFastestFinger {
		switch {
		case s.score > 10000:
			res.Message = "Incredible Speed! A true champion!"
		case s.score > 5000:
			res.Message = "Excellent Job! You're fast and accurate."
		default:
			res.Message = "Good try! Keep practicing to improve your speed."
		}
		return res
	}
	percentage := s.score * 100 / domain.QuestionSetSize
	switch {
	case percentage == 100:
		res.Message = "Perfect Score! You're a true expert!"
	case percentage >= 80:
		res.Message = "Excellent Job! You really know your stuff."
	case percentage >= 50:
		res.Message = "Well Done! A solid performance."
	default:
		res.Message = "Good try! Keep learning and try again."
	}
	return res
}

// Status reports the current lifecycle state.
func (s *GameService) Status() domain.GameStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Score reports the current final score; meaningful once finished.
func (s *GameService) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// IsScoreSaved reports whether this session already wrote its entry.
func (s *GameService) IsScoreSaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreSaved
}
