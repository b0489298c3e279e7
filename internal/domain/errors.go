package domain

import "errors"

var (
	// ErrContentGeneration is returned when the content provider is
	// unreachable, misconfigured, or produced an unusable question set.
	ErrContentGeneration = errors.New("could not generate questions")
	// ErrMalformedChallenge is returned when a challenge token does not
	// decode into a well-formed payload. Callers treat it as "no
	// challenge present".
	ErrMalformedChallenge = errors.New("malformed challenge token")
	// ErrGameInProgress rejects a start while another is loading or playing.
	ErrGameInProgress = errors.New("a game is already in progress")
	// ErrEmptyTopic rejects a start with no topic.
	ErrEmptyTopic = errors.New("topic must not be empty")
	// ErrNotPlaying is returned for answers outside an active game.
	ErrNotPlaying = errors.New("no game is being played")
	// ErrNotFinished is returned when a result-stage action (save score,
	// issue challenge) is attempted before the session finishes.
	ErrNotFinished = errors.New("game is not finished")
	// ErrScoreSaved guards against double score saves for one session.
	ErrScoreSaved = errors.New("score already saved for this session")
	// ErrInvalidName rejects empty or over-long player names.
	ErrInvalidName = errors.New("invalid player name")
)
