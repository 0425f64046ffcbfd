package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Board defaults
const (
	DefaultGridSize = 20
	MaxGridSize     = 64 // food placement scans every cell, keep boards small
)

// Speed settings (tick period; lower is faster)
const (
	DefaultInitialSpeed   = 150 * time.Millisecond
	DefaultSpeedIncrement = 5 * time.Millisecond
	MinSpeed              = 50 * time.Millisecond
)

// Scoring
const (
	DefaultPointsPerFood = 10
)

// Demo (spectator) settings
const (
	DemoTickInterval = 120 * time.Millisecond
	DemoRespawnBonus = 50
	DemoGameCount    = 3
)

// Server settings
const (
	DefaultServerAddr     = ":8080"
	DefaultDBPath         = "data/game.db"
	DefaultRecordDir      = "records"
	SubmitTimeout         = 5 * time.Second
	DefaultLeaderboardTop = 10
)

// Characters for terminal rendering
const (
	CharEmpty = "  " // Two spaces to match emoji width
	CharWall  = "⬜"
	CharHead  = "🟢"
	CharBody  = "🟩"
	CharFood  = "🔴"
	CharCrash = "💥"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// GameConfig is fixed for the lifetime of a game.
type GameConfig struct {
	GridSize       int           `json:"gridSize" validate:"min=4,max=64"`
	InitialSpeed   time.Duration `json:"initialSpeed" validate:"gte=50ms"`
	SpeedIncrement time.Duration `json:"speedIncrement" validate:"gte=0"`
	PointsPerFood  int           `json:"pointsPerFood" validate:"gt=0"`
}

// DefaultGame returns the standard 20x20 configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		GridSize:       DefaultGridSize,
		InitialSpeed:   DefaultInitialSpeed,
		SpeedIncrement: DefaultSpeedIncrement,
		PointsPerFood:  DefaultPointsPerFood,
	}
}

// Validate checks the configuration bounds.
func (c GameConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}
	return nil
}

// Config holds all application configuration
type Config struct {
	Addr      string     `json:"addr" validate:"required"`
	DBPath    string     `json:"dbPath" validate:"required"`
	RecordDir string     `json:"recordDir"`
	LogLevel  string     `json:"logLevel" validate:"omitempty,oneof=trace debug info warn error"`
	Mode      string     `json:"mode" validate:"oneof=walls pass-through"`
	DemoGames int        `json:"demoGames" validate:"gte=0,lte=32"`
	Record    bool       `json:"record"`
	Game      GameConfig `json:"game"`
}

// Load reads the optional JSON file named by SNAKE_CONFIG, then applies
// SNAKE_* environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:      DefaultServerAddr,
		DBPath:    DefaultDBPath,
		RecordDir: DefaultRecordDir,
		LogLevel:  "info",
		Mode:      "walls",
		DemoGames: DemoGameCount,
		Game:      DefaultGame(),
	}

	if path := os.Getenv("SNAKE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("SNAKE_ADDR", &cfg.Addr)
	setString("SNAKE_DB", &cfg.DBPath)
	setString("SNAKE_RECORD_DIR", &cfg.RecordDir)
	setString("SNAKE_LOG_LEVEL", &cfg.LogLevel)
	setString("SNAKE_MODE", &cfg.Mode)

	ints := []struct {
		key string
		dst *int
	}{
		{"SNAKE_DEMO_GAMES", &cfg.DemoGames},
		{"SNAKE_GRID_SIZE", &cfg.Game.GridSize},
		{"SNAKE_POINTS_PER_FOOD", &cfg.Game.PointsPerFood},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}

	if v := os.Getenv("SNAKE_INITIAL_SPEED"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SNAKE_INITIAL_SPEED: %w", err)
		}
		cfg.Game.InitialSpeed = d
	}
	if v := os.Getenv("SNAKE_RECORD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SNAKE_RECORD: %w", err)
		}
		cfg.Record = b
	}
	return nil
}
