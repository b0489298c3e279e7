package app

import (
	"sync"

	"ballknowledge-game-service/internal/domain"
)

// quizEngine drives the per-question-countdown modes: trivia and fastest
// finger. The two differ only in how a correct answer is scored, so the
// award rule is injected by the constructors below.
//
// All transitions happen under mu; once answered is set, further ticks
// and selections for the current question are no-ops until the advance
// delay moves the engine forward.
type quizEngine struct {
	cfg   EngineConfig
	award func(timeLeft int) int
	emit  func(Event)
	onEnd func(score int)

	mu        sync.Mutex
	questions []domain.QuizQuestion
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

// newTriviaEngine scores one point per correct answer.
func newTriviaEngine(questions []domain.QuizQuestion, cfg EngineConfig, emit func(Event), onEnd func(int)) *quizEngine {
	return &quizEngine{
		cfg:       cfg.withDefaults(),
		award:     func(int) int { return 1 },
		emit:      emit,
		onEnd:     onEnd,
		questions: questions,
	}
}

// newFastestFingerEngine scores remaining time times the points
// multiplier for a correct answer, nothing otherwise.
func newFastestFingerEngine(questions []domain.QuizQuestion, cfg EngineConfig, emit func(Event), onEnd func(int)) *quizEngine {
	cfg = cfg.withDefaults()
	return &quizEngine{
		cfg:       cfg,
		award:     func(timeLeft int) int { return timeLeft * cfg.PointsMultiplier },
		emit:      emit,
		onEnd:     onEnd,
		questions: questions,
	}
}

func (e *quizEngine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished {
		return
	}
	if len(e.questions) == 0 {
		e.finishLocked()
		return
	}
	e.timeLeft = e.cfg.QuestionTime
	e.emit(Event{Type: EventQuestion, Question: e.questionViewLocked()})
	e.clock = startTicker(e.cfg.TickInterval, e.tick)
}

// Select locks in the first answer for the current question. Selections
// after lockout, including repeats of the locked answer, are no-ops.
func (e *quizEngine) Select(option string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished || e.answered {
		return
	}
	e.lockAnswerLocked(option)
}

func (e *quizEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished = true
	e.clock.halt()
	e.advance.halt()
}

func (e *quizEngine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finished || e.answered {
		return
	}
	e.timeLeft--
	if e.timeLeft <= 0 {
		e.timeLeft = 0
		// Time is up: treated as an unanswered, incorrect response.
		e.lockAnswerLocked("")
		return
	}
	e.emit(Event{Type: EventTick, TimeLeft: e.timeLeft, Score: e.score})
}

func (e *quizEngine) lockAnswerLocked(selected string) {
	e.answered = true
	e.selected = selected
	e.clock.halt()
	e.clock = nil

	q := e.questions[e.idx]
	awarded := 0
	if selected != "" && selected == q.CorrectAnswer {
		awarded = e.award(e.timeLeft)
		e.score += awarded
	}
	e.emit(Event{Type: EventAnswer, Answer: &AnswerView{
		Index:         e.idx,
		Selected:      selected,
		CorrectAnswer: q.CorrectAnswer,
		Correct:       awarded > 0,
		Awarded:       awarded,
		Score:         e.score,
	}})
	e.advance = startDelay(e.cfg.AdvanceDelay, e.advanceNext)
}

func (e *quizEngine) advanceNext() {
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
	e.timeLeft = e.cfg.QuestionTime
	e.emit(Event{Type: EventQuestion, Question: e.questionViewLocked()})
	e.clock = startTicker(e.cfg.TickInterval, e.tick)
}

func (e *quizEngine) finishLocked() {
	if e.finished {
		return
	}
	e.finished = true
	e.clock.halt()
	e.advance.halt()
	score := e.score
	// Report off the engine goroutine so the callback can take its own
	// locks without ordering against mu.
	e.endOnce.Do(func() { go e.onEnd(score) })
}

func (e *quizEngine) questionViewLocked() *QuestionView {
	q := e.questions[e.idx]
	options := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		options = append(options, opt.AnswerText)
	}
	return &QuestionView{
		Index:    e.idx,
		Total:    len(e.questions),
		Prompt:   q.Question,
		Options:  options,
		TimeLeft: e.timeLeft,
		Score:    e.score,
	}
}
