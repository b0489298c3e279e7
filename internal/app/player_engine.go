package app

import (
	"sync"

	"ballknowledge-game-service/internal/domain"
)

// playerGuessEngine drives the image-based guess-the-player mode. Unlike
// the per-question engines it runs one global countdown across all
// questions; locking an answer pauses question advancement but never the
// clock. When the clock reaches zero mid-question the game ends
// immediately with whatever score has accumulated.
type playerGuessEngine struct {
	cfg   EngineConfig
	emit  func(Event)
	onEnd func(score int)

	mu        sync.Mutex
	questions []domain.PlayerQuizQuestion
	idx       int
	timeLeft  int
	answered  bool
	selected  string
	score     int
	finished  bool
	clock     *ticker
	advance   *delay
	endOnce   sync.Once
}

func newPlayerGuessEngine(questions []domain.PlayerQuizQuestion, cfg EngineConfig, emit func(Event), onEnd func(int)) *playerGuessEngine {
	return &playerGuessEngine{
		cfg:       cfg.withDefaults(),
		emit:      emit,
		onEnd:     onEnd,
		questions: questions,
	}
}

func (e *playerGuessEngine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished {
		return
	}
	if len(e.questions) == 0 {
		e.finishLocked()
		return
	}
	e.timeLeft = e.cfg.GameDuration
	e.emit(Event{Type: EventQuestion, Question: e.questionViewLocked()})
	e.clock = startTicker(e.cfg.TickInterval, e.tick)
}

func (e *playerGuessEngine) Select(option string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished || e.answered {
		return
	}
	e.answered = true
	e.selected = option

	q := e.questions[e.idx]
	awarded := 0
	if option == q.CorrectAnswer {
		awarded = 1
		e.score++
	}
	e.emit(Event{Type: EventAnswer, Answer: &AnswerView{
		Index:         e.idx,
		Selected:      option,
		CorrectAnswer: q.CorrectAnswer,
		Correct:       awarded > 0,
		Awarded:       awarded,
		Score:         e.score,
	}})
	// The global clock keeps running through the reveal pause.
	e.advance = startDelay(e.cfg.AdvanceDelay, e.advanceNext)
}

func (e *playerGuessEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished = true
	e.clock.halt()
	e.advance.halt()
}

func (e *playerGuessEngine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished {
		return
	}
	e.timeLeft--
	if e.timeLeft <= 0 {
		e.timeLeft = 0
		// Hard preemption: end mid-question, no graceful stop at the
		// question boundary.
		e.finishLocked()
		return
	}
	e.emit(Event{Type: EventTick, TimeLeft: e.timeLeft, Score: e.score})
}

func (e *playerGuessEngine) advanceNext() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished {
		return
	}
	e.advance = nil
	e.idx++
	if e.idx >= len(e.questions) {
		e.finishLocked()
		return
	}
	e.answered = false
	e.selected = ""
	e.emit(Event{Type: EventQuestion, Question: e.questionViewLocked()})
}

func (e *playerGuessEngine) finishLocked() {
	if e.finished {
		return
	}
	e.finished = true
	e.clock.halt()
	e.advance.halt()
	score := e.score
	e.endOnce.Do(func() { go e.onEnd(score) })
}

func (e *playerGuessEngine) questionViewLocked() *QuestionView {
	q := e.questions[e.idx]
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return &QuestionView{
		Index:    e.idx,
		Total:    len(e.questions),
		Image:    q.Image,
		Options:  options,
		TimeLeft: e.timeLeft,
		Score:    e.score,
	}
}
