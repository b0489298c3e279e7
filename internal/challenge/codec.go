// Package challenge encodes a finished session as a compact, fully
// self-contained text token that fits in a URL query parameter. The
// token carries the question set itself (not a reference) because issuer
// and receiver share no backing store.
package challenge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"ballknowledge-game-service/internal/domain"
)

// wirePayload is the JSON structure inside a token. Questions stay a raw
// array whose element shape depends on gameType, matching the format
// produced by existing share links.
type wirePayload struct {
	GameType   domain.GameMode    `json:"gameType"`
	Topic      string             `json:"topic"`
	Questions  json.RawMessage    `json:"questions"`
	Challenger *domain.Challenger `json:"challenger"`
}

// Encode serializes a challenge payload to a base64url token.
func Encode(p domain.ChallengePayload) (string, error) {
	if !p.GameType.Valid() {
		return "", fmt.Errorf("encode challenge: unknown game mode %q", p.GameType)
	}
	name := strings.TrimSpace(p.Challenger.Name)
	if name == "" || len(name) > domain.MaxPlayerNameLen {
		return "", domain.ErrInvalidName
	}
	p.Challenger.Name = name

	var questions any
	if p.GameType == domain.ModePlayerGuess {
		questions = p.Questions.Player
	} else {
		questions = p.Questions.Quiz
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("encode challenge questions: %w", err)
	}
	data, err := json.Marshal(wirePayload{
		GameType:   p.GameType,
		Topic:      p.Topic,
		Questions:  raw,
		Challenger: &p.Challenger,
	})
	if err != nil {
		return "", fmt.Errorf("encode challenge: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode is the inverse of Encode. Every structural mismatch, from bad
// encoding and missing fields to a wrong question count, collapses to
// domain.ErrMalformedChallenge so callers can treat the token as absent.
func Decode(token string) (*domain.ChallengePayload, error) {
	if token == "" {
		return nil, domain.ErrMalformedChallenge
	}
	data, err := decodeBase64(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedChallenge, err)
	}
	var wire wirePayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedChallenge, err)
	}
	if !wire.GameType.Valid() {
		return nil, fmt.Errorf("%w: unknown game mode %q", domain.ErrMalformedChallenge, wire.GameType)
	}
	if strings.TrimSpace(wire.Topic) == "" {
		return nil, fmt.Errorf("%w: missing topic", domain.ErrMalformedChallenge)
	}
	if wire.Challenger == nil || strings.TrimSpace(wire.Challenger.Name) == "" {
		return nil, fmt.Errorf("%w: missing challenger", domain.ErrMalformedChallenge)
	}
	if len(wire.Questions) == 0 {
		return nil, fmt.Errorf("%w: missing questions", domain.ErrMalformedChallenge)
	}

	var set domain.QuestionSet
	if wire.GameType == domain.ModePlayerGuess {
		if err := json.Unmarshal(wire.Questions, &set.Player); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedChallenge, err)
		}
	} else {
		if err := json.Unmarshal(wire.Questions, &set.Quiz); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedChallenge, err)
		}
	}
	if err := domain.ValidateQuestionSet(wire.GameType, set); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedChallenge, err)
	}

	return &domain.ChallengePayload{
		GameType:   wire.GameType,
		Topic:      wire.Topic,
		Questions:  set,
		Challenger: *wire.Challenger,
	}, nil
}

// decodeBase64 accepts the url-safe alphabet this package emits plus the
// standard alphabet older links used.
func decodeBase64(token string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(token); err == nil {
		return data, nil
	}
	if data, err := base64.URLEncoding.DecodeString(token); err == nil {
		return data, nil
	}
	return base64.StdEncoding.DecodeString(token)
}
