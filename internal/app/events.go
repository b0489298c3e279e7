package app

import "ballknowledge-game-service/internal/domain"

// EventType tags the session events pushed to subscribers.
type EventType string

const (
	// EventStatus reports a session lifecycle transition.
	EventStatus EventType = "status"
	// EventQuestion presents the current question (without its answer).
	EventQuestion EventType = "question"
	// EventTick reports the countdown for the current question or game.
	EventTick EventType = "tick"
	// EventAnswer reveals the outcome of a locked-in answer or timeout.
	EventAnswer EventType = "answer"
	// EventFinished carries the final result of the session.
	EventFinished EventType = "finished"
)

// QuestionView is the client-facing projection of the current question.
// The correct answer is withheld until the question is locked.
type QuestionView struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Prompt   string   `json:"prompt,omitempty"`
	Image    string   `json:"image,omitempty"`
	Options  []string `json:"options"`
	TimeLeft int      `json:"timeLeft"`
	Score    int      `json:"score"`
}

// AnswerView reveals the correct answer after lockout, along with what
// was selected (empty on timeout) and the points awarded.
type AnswerView struct {
	Index         int    `json:"index"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correctAnswer"`
	Correct       bool   `json:"correct"`
	Awarded       int    `json:"awarded"`
	Score         int    `json:"score"`
}

// Result summarizes a finished session for the results stage.
type Result struct {
	Score       int                `json:"score"`
	Display     string             `json:"display"`
	Denominator int                `json:"denominator,omitempty"`
	Message     string             `json:"message"`
	Challenger  *domain.Challenger `json:"challenger,omitempty"`
	Outcome     string             `json:"outcome,omitempty"` // won, lost, tie
}

// Event is one update on a session's subscription channel.
type Event struct {
	Type     EventType         `json:"type"`
	Status   domain.GameStatus `json:"status,omitempty"`
	Error    string            `json:"error,omitempty"`
	Question *QuestionView     `json:"question,omitempty"`
	TimeLeft int               `json:"timeLeft,omitempty"`
	Score    int               `json:"score,omitempty"`
	Answer   *AnswerView       `json:"answer,omitempty"`
	Result   *Result           `json:"result,omitempty"`
}
