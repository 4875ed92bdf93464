package config

import (
	"os"
	"time"

	"trivia-arena-service/internal/domain"
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
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Scoring struct {
		Correct          int `yaml:"correct"`
		Wrong            int `yaml:"wrong"`
		ChallengeCorrect int `yaml:"challengeCorrect"`
		ChallengeWrong   int `yaml:"challengeWrong"`
		Bonus            int `yaml:"bonus"`
	} `yaml:"scoring"`
	Arena struct {
		CloseDelay string `yaml:"closeDelay"`
		WinnersTTL string `yaml:"winnersTTL"`
	} `yaml:"arena"`
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
	return cfg, nil
}

// ScoringValues returns the configured point deltas, falling back to the
// defaults for any value left at zero.
func (c Config) ScoringValues() domain.Scoring {
	s := domain.DefaultScoring()
	if c.Scoring.Correct != 0 {
		s.Correct = c.Scoring.Correct
	}
	if c.Scoring.Wrong != 0 {
		s.Wrong = c.Scoring.Wrong
	}
	if c.Scoring.ChallengeCorrect != 0 {
		s.ChallengeCorrect = c.Scoring.ChallengeCorrect
	}
	if c.Scoring.ChallengeWrong != 0 {
		s.ChallengeWrong = c.Scoring.ChallengeWrong
	}
	if c.Scoring.Bonus != 0 {
		s.Bonus = c.Scoring.Bonus
	}
	return s
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
