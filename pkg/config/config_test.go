package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SNAKE_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultServerAddr || cfg.Mode != "walls" || cfg.Game != DefaultGame() {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snake.json")
	body := `{"addr":":9000","mode":"pass-through","demoGames":1,"game":{"gridSize":12,"initialSpeed":200000000,"speedIncrement":0,"pointsPerFood":5}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SNAKE_CONFIG", path)
	t.Setenv("SNAKE_GRID_SIZE", "16")
	t.Setenv("SNAKE_INITIAL_SPEED", "120ms")
	t.Setenv("SNAKE_RECORD", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Mode != "pass-through" || cfg.DemoGames != 1 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Game.GridSize != 16 || cfg.Game.InitialSpeed != 120*time.Millisecond || !cfg.Record {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Game.PointsPerFood != 5 {
		t.Errorf("PointsPerFood = %d, want 5", cfg.Game.PointsPerFood)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown mode", "SNAKE_MODE", "maze"},
		{"grid too small", "SNAKE_GRID_SIZE", "2"},
		{"grid not a number", "SNAKE_GRID_SIZE", "big"},
		{"too fast", "SNAKE_INITIAL_SPEED", "10ms"},
		{"bad bool", "SNAKE_RECORD", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SNAKE_CONFIG", "")
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s accepted", tt.key, tt.val)
			}
		})
	}
}

func TestGameConfigValidate(t *testing.T) {
	if err := DefaultGame().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	bad := DefaultGame()
	bad.PointsPerFood = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero points per food accepted")
	}
}
