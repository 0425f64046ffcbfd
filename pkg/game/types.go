package game

import (
	"fmt"
	"time"
)

// Point represents a coordinate on the game board
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is one of the four headings a snake can take.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every heading in the order the navigator considers them.
var Directions = [4]Direction{Up, Down, Left, Right}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	panic(fmt.Sprintf("game: invalid direction %d", uint8(d)))
}

// Delta returns the (dx, dy) offset of one step. Y grows downward.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	panic(fmt.Sprintf("game: invalid direction %d", uint8(d)))
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if d > Right {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection parses "UP", "DOWN", "LEFT" or "RIGHT".
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if d.String() == s {
			return d, nil
		}
	}
	return Up, fmt.Errorf("unknown direction %q", s)
}

// Status is the lifecycle stage of a game.
type Status uint8

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusGameOver
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusGameOver:
		return "gameOver"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for _, st := range []Status{StatusIdle, StatusPlaying, StatusPaused, StatusGameOver} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}

// Mode is the boundary policy.
type Mode uint8

const (
	ModeWalls       Mode = iota // leaving the grid ends the game
	ModePassThrough             // leaving one edge re-enters at the opposite edge
)

func (m Mode) String() string {
	if m == ModePassThrough {
		return "pass-through"
	}
	return "walls"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode parses "walls" or "pass-through".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "walls":
		return ModeWalls, nil
	case "pass-through":
		return ModePassThrough, nil
	}
	return ModeWalls, fmt.Errorf("unknown mode %q", s)
}

// State is one immutable frame of a game. Operations in this package
// return new values and never write into the receiver's Snake slice.
type State struct {
	Snake         []Point // head first
	Food          Point
	Direction     Direction // committed heading
	NextDirection Direction // buffered heading, applied on the next tick
	Score         int
	Status        Status
	Mode          Mode
	Speed         time.Duration // tick period
	GridSize      int
}

// Head returns the first snake segment.
func (s State) Head() Point {
	return s.Snake[0]
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	c := s
	c.Snake = make([]Point, len(s.Snake))
	copy(c.Snake, s.Snake)
	return c
}

// Occupies reports whether p is one of the snake's cells.
func (s State) Occupies(p Point) bool {
	for _, seg := range s.Snake {
		if seg == p {
			return true
		}
	}
	return false
}

// ScoreResult is the answer of a score submission.
type ScoreResult struct {
	Accepted bool `json:"success"`
	Rank     int  `json:"rank"`
}

// Snapshot is a DTO of State for client synchronization and recordings
type Snapshot struct {
	Snake         []Point   `json:"snake"`
	Food          Point     `json:"food"`
	Direction     Direction `json:"direction"`
	NextDirection Direction `json:"nextDirection"`
	Score         int       `json:"score"`
	Status        Status    `json:"status"`
	Mode          Mode      `json:"mode"`
	SpeedMs       int64     `json:"speedMs"`
	GridSize      int       `json:"gridSize"`
}

// Snapshot converts the state into its wire form.
func (s State) Snapshot() Snapshot {
	c := s.Clone()
	return Snapshot{
		Snake:         c.Snake,
		Food:          c.Food,
		Direction:     c.Direction,
		NextDirection: c.NextDirection,
		Score:         c.Score,
		Status:        c.Status,
		Mode:          c.Mode,
		SpeedMs:       c.Speed.Milliseconds(),
		GridSize:      c.GridSize,
	}
}

// State converts a snapshot back into a game state.
func (s Snapshot) State() State {
	st := State{
		Food:          s.Food,
		Direction:     s.Direction,
		NextDirection: s.NextDirection,
		Score:         s.Score,
		Status:        s.Status,
		Mode:          s.Mode,
		Speed:         time.Duration(s.SpeedMs) * time.Millisecond,
		GridSize:      s.GridSize,
	}
	st.Snake = make([]Point, len(s.Snake))
	copy(st.Snake, s.Snake)
	return st
}
