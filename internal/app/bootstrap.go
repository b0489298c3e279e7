package app

import (
	"log"

	"ballknowledge-game-service/internal/challenge"
	"ballknowledge-game-service/internal/domain"
)

// StartConfig is the typed initial state resolved for a connecting
// client before its session loop begins. A nil Challenge means a plain
// idle start.
type StartConfig struct {
	Challenge *domain.ChallengePayload
}

// ResolveStart turns an optional raw challenge token (from the
// connection URL) into a StartConfig. Any decode failure resolves to a
// plain start: stale or mangled links must never surface as errors.
func ResolveStart(rawToken string) StartConfig {
	if rawToken == "" {
		return StartConfig{}
	}
	payload, err := challenge.Decode(rawToken)
	if err != nil {
		log.Printf("ignoring challenge token: %v", err)
		return StartConfig{}
	}
	return StartConfig{Challenge: payload}
}
