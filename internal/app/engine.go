package app

import "time"

// EngineConfig carries the timing and scoring knobs shared by the play
// engines. Zero values fall back to the classic rules: 10s per question,
// a 60s global clock for guess-the-player, a 1.2s advance pause, and 100
// points per remaining second in fastest-finger.
type EngineConfig struct {
	TickInterval     time.Duration
	AdvanceDelay     time.Duration
	QuestionTime     int
	GameDuration     int
	PointsMultiplier int
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.AdvanceDelay <= 0 {
		c.AdvanceDelay = 1200 * time.Millisecond
	}
	if c.QuestionTime <= 0 {
		c.QuestionTime = 10
	}
	if c.GameDuration <= 0 {
		c.GameDuration = 60
	}
	if c.PointsMultiplier <= 0 {
		c.PointsMultiplier = 100
	}
	return c
}

// engine is the common contract of the three play engines: drive the
// player through each question exactly once, in order, then report the
// final score exactly once via the onGameEnd callback supplied at
// construction. Stop tears the engine down without reporting.
type engine interface {
	Start()
	Select(option string)
	Stop()
}
