package input

import (
	"strings"

	"github.com/eiannone/keyboard"

	"github.com/trytobebee/gridsnake/pkg/game"
)

// Command is a player intent decoded from a key or a client message.
type Command int

const (
	CmdNone Command = iota
	CmdUp
	CmdDown
	CmdLeft
	CmdRight
	CmdPause
	CmdStart
	CmdRestart
	CmdAutoplay
	CmdQuit
)

var commandNames = map[Command]string{
	CmdUp:       "up",
	CmdDown:     "down",
	CmdLeft:     "left",
	CmdRight:    "right",
	CmdPause:    "pause",
	CmdStart:    "start",
	CmdRestart:  "restart",
	CmdAutoplay: "autoplay",
	CmdQuit:     "quit",
}

func (c Command) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return "none"
}

// Direction returns the heading for a movement command.
func (c Command) Direction() (game.Direction, bool) {
	switch c {
	case CmdUp:
		return game.Up, true
	case CmdDown:
		return game.Down, true
	case CmdLeft:
		return game.Left, true
	case CmdRight:
		return game.Right, true
	}
	return 0, false
}

// KeyboardHandler handles keyboard input
type KeyboardHandler struct {
	inputChan chan KeyInput
}

// KeyInput represents a keyboard input event
type KeyInput struct {
	Char rune
	Key  keyboard.Key
}

// NewKeyboardHandler creates a new keyboard input handler
func NewKeyboardHandler() *KeyboardHandler {
	return &KeyboardHandler{
		inputChan: make(chan KeyInput),
	}
}

// Start begins listening for keyboard input
func (h *KeyboardHandler) Start() error {
	if err := keyboard.Open(); err != nil {
		return err
	}

	go func() {
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				close(h.inputChan)
				return
			}
			h.inputChan <- KeyInput{Char: char, Key: key}
		}
	}()

	return nil
}

// Stop stops the keyboard handler
func (h *KeyboardHandler) Stop() {
	keyboard.Close()
}

// Input returns the input channel. It is closed when the terminal goes away.
func (h *KeyboardHandler) Input() <-chan KeyInput {
	return h.inputChan
}

// ParseKey maps a key press to a command.
// Arrows and WASD steer, space or P pauses, Enter starts, R restarts,
// T toggles autoplay, Q or Esc or Ctrl-C quits.
func ParseKey(in KeyInput) Command {
	switch in.Key {
	case keyboard.KeyArrowUp:
		return CmdUp
	case keyboard.KeyArrowDown:
		return CmdDown
	case keyboard.KeyArrowLeft:
		return CmdLeft
	case keyboard.KeyArrowRight:
		return CmdRight
	case keyboard.KeySpace:
		return CmdPause
	case keyboard.KeyEnter:
		return CmdStart
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return CmdQuit
	}

	switch in.Char {
	case 'w', 'W':
		return CmdUp
	case 's', 'S':
		return CmdDown
	case 'a', 'A':
		return CmdLeft
	case 'd', 'D':
		return CmdRight
	case 'p', 'P', ' ':
		return CmdPause
	case 'r', 'R':
		return CmdRestart
	case 't', 'T':
		return CmdAutoplay
	case 'q', 'Q':
		return CmdQuit
	}
	return CmdNone
}

// ParseAction maps a client action name (case-insensitive) to a command.
func ParseAction(action string) Command {
	action = strings.ToLower(strings.TrimSpace(action))
	for c, name := range commandNames {
		if name == action {
			return c
		}
	}
	return CmdNone
}
