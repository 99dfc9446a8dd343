package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
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
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Quiz        QuizConfig `yaml:"quiz"`
	Leaderboard struct {
		DefaultLimit int `yaml:"default_limit"`
		MaxLimit     int `yaml:"max_limit"`
	} `yaml:"leaderboard"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// QuizConfig holds the game rules.
type QuizConfig struct {
	TTL                 string   `yaml:"ttl"` // question pool cache
	QuestionsFile       string   `yaml:"questions_file"`
	Length              int      `yaml:"length"`
	TimeLimitSeconds    int      `yaml:"time_limit_seconds"`
	MaxBonusPerQuestion float64  `yaml:"max_bonus_per_question"`
	MaxAccuracyPoints   float64  `yaml:"max_accuracy_points"`
	AccuracyDenominator string   `yaml:"accuracy_denominator"` // "answered" or "fixed"
	VerifyAttempts      int      `yaml:"verify_attempts"`
	PenanceCount        int      `yaml:"penance_count"`
	Locations           []string `yaml:"locations"`
}

// DefaultLocations are the states offered at registration.
var DefaultLocations = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh", "Goa",
	"Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka", "Kerala",
	"Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram", "Nagaland",
	"Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu", "Telangana",
	"Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal",
}

// Load reads YAML config from path, expanding ${ENV} references.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns a config with every default applied and no backing stores.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "quiz-game-completed"
	}
	if c.Quiz.Length == 0 {
		c.Quiz.Length = 15
	}
	if c.Quiz.TimeLimitSeconds == 0 {
		c.Quiz.TimeLimitSeconds = 30
	}
	if c.Quiz.MaxBonusPerQuestion == 0 {
		c.Quiz.MaxBonusPerQuestion = 500
	}
	if c.Quiz.MaxAccuracyPoints == 0 {
		c.Quiz.MaxAccuracyPoints = 1000
	}
	if c.Quiz.AccuracyDenominator == "" {
		c.Quiz.AccuracyDenominator = "answered"
	}
	if c.Quiz.VerifyAttempts == 0 {
		c.Quiz.VerifyAttempts = 2
	}
	if c.Quiz.PenanceCount == 0 {
		c.Quiz.PenanceCount = 5
	}
	if len(c.Quiz.Locations) == 0 {
		c.Quiz.Locations = append([]string(nil), DefaultLocations...)
	}
	if c.Leaderboard.DefaultLimit == 0 {
		c.Leaderboard.DefaultLimit = 50
	}
	if c.Leaderboard.MaxLimit == 0 {
		c.Leaderboard.MaxLimit = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) validate() error {
	switch c.Quiz.AccuracyDenominator {
	case "answered", "fixed":
	default:
		return fmt.Errorf("invalid quiz.accuracy_denominator %q: want \"answered\" or \"fixed\"", c.Quiz.AccuracyDenominator)
	}
	return nil
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

// LogLevel maps a level name onto slog; unknown names mean info.
func LogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger from the log section.
func NewLogger(c Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: LogLevel(c.Log.Level)}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
