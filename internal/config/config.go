package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Gemini struct {
		APIKey     string `yaml:"apiKey"`
		Model      string `yaml:"model"`
		ImageModel string `yaml:"imageModel"`
	} `yaml:"gemini"`
	Game struct {
		QuestionTime     int    `yaml:"questionTime"`     // seconds per trivia/fastest-finger question
		PlayerGuessTime  int    `yaml:"playerGuessTime"`  // global seconds for guess-the-player
		AdvanceDelay     string `yaml:"advanceDelay"`     // pause before auto-advancing
		QuestionCacheTTL string `yaml:"questionCacheTTL"` // generated question set cache
		PointsMultiplier int    `yaml:"pointsMultiplier"` // points per remaining second in fastest finger
	} `yaml:"game"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	// Environment wins over file for the credential so deployments don't
	// have to write the key to disk.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or
// unparseable.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// Seconds returns raw if positive, otherwise the fallback.
func Seconds(raw, fallback int) int {
	if raw > 0 {
		return raw
	}
	return fallback
}
