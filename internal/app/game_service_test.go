package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ballknowledge-game-service/internal/app"
	"ballknowledge-game-service/internal/challenge"
	"ballknowledge-game-service/internal/content"
	"ballknowledge-game-service/internal/domain"
	"ballknowledge-game-service/internal/infra/memory"
)

// fastConfig makes full games complete in milliseconds while questions
// never time out on their own.
func fastConfig() app.EngineConfig {
	return app.EngineConfig{
		TickInterval: time.Hour,
		AdvanceDelay: time.Millisecond,
		QuestionTime: 10,
		GameDuration: 60,
	}
}

func newTestService() (*app.GameService, *memory.ScoreStore) {
	store := memory.NewScoreStore()
	return app.NewGameService(content.NewFixture(), store, fastConfig()), store
}

func waitEvent(t *testing.T, events <-chan app.Event, match func(app.Event) bool) app.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed while waiting")
			}
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event")
		}
	}
}

func statusEvent(status domain.GameStatus) func(app.Event) bool {
	return func(ev app.Event) bool {
		return ev.Type == app.EventStatus && ev.Status == status
	}
}

func questionAt(index int) func(app.Event) bool {
	return func(ev app.Event) bool {
		return ev.Type == app.EventQuestion && ev.Question != nil && ev.Question.Index == index
	}
}

func finished(ev app.Event) bool { return ev.Type == app.EventFinished }

// playThrough answers every trivia question correctly and returns the
// final event.
func playThrough(t *testing.T, service *app.GameService, events <-chan app.Event, topic string) app.Event {
	t.Helper()
	for i := 0; i < domain.QuestionSetSize; i++ {
		waitEvent(t, events, questionAt(i))
		if err := service.SelectAnswer(fmt.Sprintf("%s answer %d", topic, i)); err != nil {
			t.Fatalf("select answer %d: %v", i, err)
		}
	}
	return waitEvent(t, events, finished)
}

func TestStartGameLifecycle(t *testing.T) {
	service, _ := newTestService()
	defer service.Close()
	events, cancel := service.Subscribe()
	defer cancel()

	waitEvent(t, events, statusEvent(domain.StatusIdle))

	if err := service.StartGame(context.Background(), domain.ModeTrivia, "football"); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitEvent(t, events, statusEvent(domain.StatusLoading))
	waitEvent(t, events, statusEvent(domain.StatusPlaying))
	first := waitEvent(t, events, questionAt(0))
	if first.Question.Total != domain.QuestionSetSize {
		t.Fatalf("expected %d questions, got %d", domain.QuestionSetSize, first.Question.Total)
	}
	if first.Question.TimeLeft != 10 {
		t.Fatalf("expected 10s countdown, got %d", first.Question.TimeLeft)
	}
}

func TestStartGameValidatesInput(t *testing.T) {
	service, _ := newTestService()
	defer service.Close()

	if err := service.StartGame(context.Background(), domain.GameMode("chess"), "x"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	if err := service.StartGame(context.Background(), domain.ModeTrivia, "   "); !errors.Is(err, domain.ErrEmptyTopic) {
		t.Fatalf("expected ErrEmptyTopic, got %v", err)
	}
}

func TestStartGameRejectedWhileBusy(t *testing.T) {
	gate := make(chan struct{})
	gen := &gatedGenerator{inner: content.NewFixture(), gate: gate}
	service := app.NewGameService(gen, memory.NewScoreStore(), fastConfig())
	defer service.Close()

	if err := service.StartGame(context.Background(), domain.ModeTrivia, "football"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := service.StartGame(context.Background(), domain.ModeTrivia, "tennis"); !errors.Is(err, domain.ErrGameInProgress) {
		t.Fatalf("expected ErrGameInProgress while loading, got %v", err)
	}
	close(gate)
}

func TestGenerationFailureReturnsToIdle(t *testing.T) {
	service := app.NewGameService(failingGenerator{}, memory.NewScoreStore(), fastConfig())
	defer service.Close()
	events, cancel := service.Subscribe()
	defer cancel()

	if err := service.StartGame(context.Background(), domain.ModeTrivia, "football"); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitEvent(t, events, statusEvent(domain.StatusLoading))
	idle := waitEvent(t, events, statusEvent(domain.StatusIdle))
	if idle.Error == "" {
		t.Fatalf("expected error detail on idle event")
	}
	if service.Status() != domain.StatusIdle {
		t.Fatalf("expected idle after failure, got %s", service.Status())
	}
}

func TestFullTriviaGamePerfectScore(t *testing.T) {
	service, _ := newTestService()
	defer service.Close()
	events, cancel := service.Subscribe()
	defer cancel()

	if err := service.StartGame(context.Background(), domain.ModeTrivia, "football"); err != nil {
		t.Fatalf("start: %v", err)
	}
	final := playThrough(t, service, events, "football")

	if final.Score != domain.QuestionSetSize {
		t.Fatalf("expected perfect score, got %d", final.Score)
	}
	if final.Result == nil || final.Result.Display != "10/10" {
		t.Fatalf("expected display 10/10, got %+v", final.Result)
	}
	if final.Result.Message != "Perfect Score! You're a true expert!" {
		t.Fatalf("unexpected message %q", final.Result.Message)
	}
	if service.Status() != domain.StatusFinished {
		t.Fatalf("expected finished status, got %s", service.Status())
	}
}

func TestSaveScoreRules(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()
	defer service.Close()
	events, cancel := service.Subscribe()
	defer cancel()

	if err := service.SaveScore(ctx, "Dana"); !errors.Is(err, domain.ErrNotFinished) {
		t.Fatalf("expected ErrNotFinished before playing, got %v", err)
	}

	if err := service.StartGame(ctx, domain.ModeTrivia, "football"); err != nil {
		t.Fatalf("start: %v", err)
	}
	playThrough(t, service, events, "football")

	if err := service.SaveScore(ctx, "this name is way too long"); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if err := service.SaveScore(ctx, "  Dana  "); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := service.SaveScore(ctx, "Dana"); !errors.Is(err, domain.ErrScoreSaved) {
		t.Fatalf("expected ErrScoreSaved on repeat, got %v", err)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Name != "Dana" || entries[0].Score != domain.QuestionSetSize {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
	if entries[0].GameMode != domain.ModeTrivia || entries[0].Topic != "football" {
		t.Fatalf("unexpected entry metadata %+v", entries[0])
	}
}

func TestIngestChallengeBeatsChallenger(t *testing.T) {
	service, _ := newTestService()
	defer service.Close()
	events, cancel := service.Subscribe()
	defer cancel()

	questions, err := content.NewFixture().QuizQuestions(context.Background(), "football")
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	payload := &domain.ChallengePayload{
		GameType:   domain.ModeTrivia,
		Topic:      "football",
		Questions:  domain.QuestionSet{Quiz: questions},
		Challenger: domain.Challenger{Name: "Rival", Score: 7},
	}
	if err := service.IngestChallenge(payload); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	waitEvent(t, events, statusEvent(domain.StatusPlaying))

	if err := service.IngestChallenge(payload); !errors.Is(err, domain.ErrGameInProgress) {
		t.Fatalf("expected ErrGameInProgress mid-game, got %v", err)
	}

	final := playThrough(t, service, events, "football")
	if final.Result == nil || final.Result.Outcome != "won" {
		t.Fatalf("expected win over challenger, got %+v", final.Result)
	}
	if final.Result.Challenger == nil || final.Result.Challenger.Name != "Rival" {
		t.Fatalf("challenger missing from result: %+v", final.Result)
	}
}

func TestGoHomeDiscardsStaleGeneration(t *testing.T) {
	gate := make(chan struct{})
	gen := &gatedGenerator{inner: content.NewFixture(), gate: gate}
	service := app.NewGameService(gen, memory.NewScoreStore(), fastConfig())
	defer service.Close()
	events, cancel := service.Subscribe()
	defer cancel()

	if err := service.StartGame(context.Background(), domain.ModeTrivia, "football"); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitEvent(t, events, statusEvent(domain.StatusLoading))
	service.GoHome()
	waitEvent(t, events, statusEvent(domain.StatusIdle))

	// Let the stale generation complete; it must not resurrect the game.
	close(gate)
	time.Sleep(50 * time.Millisecond)
	if service.Status() != domain.StatusIdle {
		t.Fatalf("stale generation changed status to %s", service.Status())
	}
}

func TestChallengeTokenUsesSavedName(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	defer service.Close()
	events, cancel := service.Subscribe()
	defer cancel()

	if _, err := service.ChallengeToken("Zoe"); !errors.Is(err, domain.ErrNotFinished) {
		t.Fatalf("expected ErrNotFinished before playing, got %v", err)
	}

	if err := service.StartGame(ctx, domain.ModeTrivia, "football"); err != nil {
		t.Fatalf("start: %v", err)
	}
	playThrough(t, service, events, "football")

	if err := service.SaveScore(ctx, "Zoe"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, err := service.ChallengeToken("")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	decoded, err := challenge.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Challenger.Name != "Zoe" || decoded.Challenger.Score != domain.QuestionSetSize {
		t.Fatalf("unexpected challenger %+v", decoded.Challenger)
	}
	if decoded.Topic != "football" || decoded.GameType != domain.ModeTrivia {
		t.Fatalf("unexpected token header %+v", decoded)
	}
}

func TestPlayAgainRestartsSameGame(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	defer service.Close()
	events, cancel := service.Subscribe()
	defer cancel()

	if err := service.StartGame(ctx, domain.ModeTrivia, "football"); err != nil {
		t.Fatalf("start: %v", err)
	}
	playThrough(t, service, events, "football")

	if err := service.PlayAgain(ctx); err != nil {
		t.Fatalf("play again: %v", err)
	}
	waitEvent(t, events, statusEvent(domain.StatusLoading))
	waitEvent(t, events, statusEvent(domain.StatusPlaying))
	first := waitEvent(t, events, questionAt(0))
	if first.Question.Score != 0 {
		t.Fatalf("expected fresh score, got %d", first.Question.Score)
	}
}

// gatedGenerator blocks question generation until its gate closes.
type gatedGenerator struct {
	inner app.Generator
	gate  chan struct{}
}

func (g *gatedGenerator) QuizQuestions(ctx context.Context, topic string) ([]domain.QuizQuestion, error) {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.inner.QuizQuestions(ctx, topic)
}

func (g *gatedGenerator) PlayerQuizQuestions(ctx context.Context, topic string) ([]domain.PlayerQuizQuestion, error) {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.inner.PlayerQuizQuestions(ctx, topic)
}

type failingGenerator struct{}

func (failingGenerator) QuizQuestions(context.Context, string) ([]domain.QuizQuestion, error) {
	return nil, domain.ErrContentGeneration
}

func (failingGenerator) PlayerQuizQuestions(context.Context, string) ([]domain.PlayerQuizQuestion, error) {
	return nil, domain.ErrContentGeneration
}
