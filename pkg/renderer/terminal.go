package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/game"
)

// HUD carries the status lines drawn around the board.
type HUD struct {
	Player   string
	Autoplay bool
	Message  string
}

// TerminalRenderer handles terminal-based rendering
type TerminalRenderer struct {
	out    io.Writer
	board  [][]int
	buffer strings.Builder
}

// Cell types for the board
const (
	cellEmpty = iota
	cellWall
	cellHead
	cellBody
	cellFood
	cellCrash
)

// NewTerminalRenderer creates a renderer for a gridSize board. The board
// gets a one-cell border on every side.
func NewTerminalRenderer(out io.Writer, gridSize int) *TerminalRenderer {
	r := &TerminalRenderer{out: out}
	r.resize(gridSize)
	return r
}

func (r *TerminalRenderer) resize(gridSize int) {
	n := gridSize + 2
	if len(r.board) == n {
		return
	}
	// Pre-allocate board to reduce GC pressure
	r.board = make([][]int, n)
	for i := range r.board {
		r.board[i] = make([]int, n)
	}
}

// ShowCursor shows the cursor (call on exit)
func (r *TerminalRenderer) ShowCursor() {
	fmt.Fprint(r.out, "\033[?25h")
}

// HideCursor hides the cursor (call on start)
func (r *TerminalRenderer) HideCursor() {
	fmt.Fprint(r.out, "\033[?25l")
}

// Render clears the screen and draws one frame in a single write.
func (r *TerminalRenderer) Render(st game.State, hud HUD) error {
	frame := r.Frame(st, hud)
	_, err := io.WriteString(r.out, "\033[H\033[2J\033[3J"+frame)
	return err
}

// Frame builds the text of one frame without writing it.
func (r *TerminalRenderer) Frame(st game.State, hud HUD) string {
	r.resize(st.GridSize)
	r.buffer.Reset()

	last := len(r.board) - 1
	for y := range r.board {
		for x := range r.board[y] {
			if x == 0 || y == 0 || x == last || y == last {
				r.board[y][x] = cellWall
			} else {
				r.board[y][x] = cellEmpty
			}
		}
	}

	// Board coordinates are offset by the border.
	if st.Status != game.StatusGameOver || !st.Occupies(st.Food) {
		r.set(st.Food, cellFood)
	}
	for i := len(st.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			r.set(st.Snake[i], cellHead)
		} else {
			r.set(st.Snake[i], cellBody)
		}
	}
	if st.Status == game.StatusGameOver && len(st.Snake) > 0 {
		r.set(st.Head(), cellCrash)
	}

	r.buffer.WriteString("\n  🐍 SNAKE 🐍\n")

	who := hud.Player
	if who == "" {
		who = "guest"
	}
	control := "manual"
	if hud.Autoplay {
		control = "autoplay"
	}
	fmt.Fprintf(&r.buffer, "  Score: %d  |  Length: %d  |  Speed: %dms  |  Mode: %s  |  %s (%s)\n",
		st.Score, len(st.Snake), st.Speed.Milliseconds(), st.Mode, who, control)

	if hud.Message != "" {
		r.buffer.WriteString("  " + hud.Message + "\n")
	} else {
		r.buffer.WriteString("\n")
	}
	r.buffer.WriteString("\n")

	for _, row := range r.board {
		r.buffer.WriteString("  ")
		for _, cell := range row {
			switch cell {
			case cellEmpty:
				r.buffer.WriteString(config.CharEmpty)
			case cellWall:
				r.buffer.WriteString(config.CharWall)
			case cellHead:
				r.buffer.WriteString(config.CharHead)
			case cellBody:
				r.buffer.WriteString(config.CharBody)
			case cellFood:
				r.buffer.WriteString(config.CharFood)
			case cellCrash:
				r.buffer.WriteString(config.CharCrash)
			}
		}
		r.buffer.WriteString("\n")
	}

	r.buffer.WriteString("\n  Use WASD or Arrow keys to move, T toggles autoplay\n")
	r.buffer.WriteString("  Enter to start, P or Space to pause, Q to quit\n")

	switch st.Status {
	case game.StatusIdle:
		r.buffer.WriteString("\n  ▶️  Press Enter to start\n")
	case game.StatusPaused:
		r.buffer.WriteString("\n  ⏸️  PAUSED - Press P to continue\n")
	case game.StatusGameOver:
		r.buffer.WriteString("\n  💀 GAME OVER! Press R to restart or Q to quit\n")
	}

	return r.buffer.String()
}

func (r *TerminalRenderer) set(p game.Point, cell int) {
	y, x := p.Y+1, p.X+1
	if y <= 0 || x <= 0 || y >= len(r.board)-1 || x >= len(r.board)-1 {
		return
	}
	r.board[y][x] = cell
}
