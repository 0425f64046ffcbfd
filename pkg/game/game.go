package game

import (
	"time"

	"github.com/trytobebee/gridsnake/pkg/config"
)

// Engine binds a game configuration to a source of randomness.
// It holds no per-game state; every call takes and returns a State.
type Engine struct {
	Config config.GameConfig
	Rand   Rand
}

// NewEngine creates an engine. A nil rng uses the global math/rand source.
func NewEngine(cfg config.GameConfig, rng Rand) *Engine {
	return &Engine{Config: cfg, Rand: orGlobal(rng)}
}

// NewState creates a fresh idle game.
func (e *Engine) NewState(mode Mode) State {
	return NewState(mode, e.Config, e.Rand)
}

// Reset discards s and returns a fresh game, already playing if autoStart.
func (e *Engine) Reset(mode Mode, autoStart bool) State {
	return Reset(mode, e.Config, e.Rand, autoStart)
}

// Tick advances s by one move.
func (e *Engine) Tick(s State) State {
	return Tick(s, e.Config, e.Rand)
}

// NewState creates a centered three-segment snake heading right.
func NewState(mode Mode, cfg config.GameConfig, rng Rand) State {
	c := cfg.GridSize / 2
	snake := []Point{
		{X: c, Y: c},
		{X: c - 1, Y: c},
		{X: c - 2, Y: c},
	}
	return State{
		Snake:         snake,
		Food:          PlaceFood(snake, cfg.GridSize, rng),
		Direction:     Right,
		NextDirection: Right,
		Score:         0,
		Status:        StatusIdle,
		Mode:          mode,
		Speed:         cfg.InitialSpeed,
		GridSize:      cfg.GridSize,
	}
}

// Tick applies one move. It is a no-op unless the game is playing.
func Tick(s State, cfg config.GameConfig, rng Rand) State {
	if s.Status != StatusPlaying {
		return s
	}

	head := Neighbor(s.Head(), s.NextDirection)

	switch s.Mode {
	case ModeWalls:
		if !InBounds(head, s.GridSize) {
			s.Status = StatusGameOver
			return s
		}
	case ModePassThrough:
		head = Wrap(head, s.GridSize)
	}

	// The tail cell is vacated by this move, so it is not an obstacle.
	body := s.Snake[:len(s.Snake)-1]
	for _, seg := range body {
		if seg == head {
			s.Status = StatusGameOver
			return s
		}
	}

	eating := head == s.Food

	keep := len(s.Snake) - 1
	if eating {
		keep = len(s.Snake)
	}
	snake := make([]Point, 0, keep+1)
	snake = append(snake, head)
	snake = append(snake, s.Snake[:keep]...)

	next := s
	next.Snake = snake
	next.Direction = s.NextDirection

	if eating {
		next.Score += cfg.PointsPerFood
		next.Speed = maxDuration(config.MinSpeed, s.Speed-cfg.SpeedIncrement)
		next.Food = PlaceFood(snake, s.GridSize, rng)
	}
	return next
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// Start moves an idle game into play.
func Start(s State) State {
	if s.Status == StatusIdle {
		s.Status = StatusPlaying
	}
	return s
}

// TogglePause toggles the pause state
func TogglePause(s State) State {
	switch s.Status {
	case StatusPlaying:
		s.Status = StatusPaused
	case StatusPaused:
		s.Status = StatusPlaying
	}
	return s
}

// Reset returns a fresh game for mode.
func Reset(mode Mode, cfg config.GameConfig, rng Rand, autoStart bool) State {
	s := NewState(mode, cfg, rng)
	if autoStart {
		s = Start(s)
	}
	return s
}

// RequestDirection buffers a heading for the next tick. Requests while not
// playing, and reversals of the committed heading, are ignored.
func RequestDirection(s State, d Direction) State {
	if s.Status != StatusPlaying {
		return s
	}
	if IsOpposite(s.Direction, d) {
		return s
	}
	s.NextDirection = d
	return s
}
