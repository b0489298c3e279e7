package domain

import "time"

// GameMode selects which play engine drives a session. The wire names
// ("trivia", "player", "fastestFinger") are shared with challenge tokens
// and leaderboard entries, so they must stay stable.
type GameMode string

const (
	ModeTrivia        GameMode = "trivia"
	ModePlayerGuess   GameMode = "player"
	ModeFastestFinger GameMode = "fastestFinger"
)

// Valid reports whether m is one of the known game modes.
func (m GameMode) Valid() bool {
	switch m {
	case ModeTrivia, ModePlayerGuess, ModeFastestFinger:
		return true
	}
	return false
}

// GameStatus is the lifecycle of a single game session.
type GameStatus string

const (
	StatusIdle     GameStatus = "idle"
	StatusLoading  GameStatus = "loading"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// QuestionSetSize is the fixed length of every generated question set.
const QuestionSetSize = 10

// QuizOption wraps a single answer choice for a trivia question.
type QuizOption struct {
	AnswerText string `json:"answerText"`
}

// QuizQuestion is a text multiple-choice question used by the trivia and
// fastest-finger modes. CorrectAnswer must equal exactly one option's text.
type QuizQuestion struct {
	ID            int          `json:"id"`
	Question      string       `json:"question"`
	Options       []QuizOption `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
}

// PlayerQuizQuestion is an image-backed "guess the player" question.
// Image is a URI or data blob reference; CorrectAnswer must be one of
// Options.
type PlayerQuizQuestion struct {
	ID            int      `json:"id"`
	Image         string   `json:"image"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// QuestionSet holds the questions for one session. Exactly one of the two
// slices is populated, matching the session's mode; the set is immutable
// once generated so a challenge issuer and receiver see identical content.
type QuestionSet struct {
	Quiz   []QuizQuestion       `json:"quiz,omitempty"`
	Player []PlayerQuizQuestion `json:"player,omitempty"`
}

// Len returns the number of questions in whichever variant is populated.
func (s QuestionSet) Len() int {
	if len(s.Player) > 0 {
		return len(s.Player)
	}
	return len(s.Quiz)
}

// Challenger identifies the issuer of a challenge and their score.
type Challenger struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ChallengePayload is the self-contained wire format for a shareable
// challenge. It carries the full question set because issuer and receiver
// share no backing store.
type ChallengePayload struct {
	GameType   GameMode    `json:"gameType"`
	Topic      string      `json:"topic"`
	Questions  QuestionSet `json:"questions"`
	Challenger Challenger  `json:"challenger"`
}

// MaxPlayerNameLen caps leaderboard and challenger names.
const MaxPlayerNameLen = 15

// LeaderboardEntry is one durable score record. Entries are append-only;
// they are never mutated after being written.
type LeaderboardEntry struct {
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	Topic    string    `json:"topic"`
	Date     time.Time `json:"date"`
	GameMode GameMode  `json:"gameMode"`
}

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	ID   string `json:"id"`
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}
