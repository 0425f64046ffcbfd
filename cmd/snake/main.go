package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/game"
	"github.com/trytobebee/gridsnake/pkg/input"
	"github.com/trytobebee/gridsnake/pkg/leaderboard"
	"github.com/trytobebee/gridsnake/pkg/logging"
	"github.com/trytobebee/gridsnake/pkg/recorder"
	"github.com/trytobebee/gridsnake/pkg/renderer"
	"github.com/trytobebee/gridsnake/pkg/session"
)

func main() {
	player := flag.String("player", "", "name to submit scores under (empty plays anonymously)")
	modeFlag := flag.String("mode", "", "walls or pass-through (default from config)")
	autoplay := flag.Bool("auto", false, "let the greedy navigator play")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if *modeFlag != "" {
		cfg.Mode = *modeFlag
	}
	mode, err := game.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	// The screen belongs to the renderer; logs go to a file.
	logFile, err := os.OpenFile("snake.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error opening log file:", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log := logging.NewWithWriter(logFile, cfg.LogLevel, false)

	opts := session.Options{
		Config:   cfg.Game,
		Mode:     mode,
		Identity: session.Identity{Player: *player},
		Logger:   log,
	}
	if *autoplay {
		opts.Navigator = game.NewGreedyNavigator(nil)
	}

	if *player != "" {
		store, err := leaderboard.Open(cfg.DBPath)
		if err != nil {
			log.Error().Err(err).Msg("leaderboard unavailable, scores will not be saved")
		} else {
			defer store.Close()
			opts.Submitter = store
		}
	}

	sess := session.New(opts)
	defer sess.Close()

	if cfg.Record {
		rec, err := recorder.New(cfg.RecordDir, sess.ID(), log)
		if err != nil {
			log.Error().Err(err).Msg("recording disabled")
		} else {
			defer rec.Close()
			sess.Subscribe(rec.Record)
		}
	}

	inputHandler := input.NewKeyboardHandler()
	if err := inputHandler.Start(); err != nil {
		fmt.Println("Error opening keyboard:", err)
		return
	}
	defer inputHandler.Stop()

	render := renderer.NewTerminalRenderer(os.Stdout, cfg.Game.GridSize)
	render.HideCursor()
	defer render.ShowCursor()

	hud := func() renderer.HUD {
		return renderer.HUD{Player: *player, Autoplay: sess.Autoplay()}
	}

	// Frames are rendered from this goroutine only; observers just signal.
	frames := make(chan game.State, 1)
	sess.Subscribe(func(st game.State) {
		select {
		case frames <- st:
		default:
			// Replace the pending frame with the newer one.
			select {
			case <-frames:
			default:
			}
			select {
			case frames <- st:
			default:
			}
		}
	})

	render.Render(sess.Snapshot(), hud())

	keys := inputHandler.Input()
	for {
		select {
		case st := <-frames:
			render.Render(st, hud())

		case key, ok := <-keys:
			if !ok {
				return
			}
			cmd := input.ParseKey(key)
			if d, ok := cmd.Direction(); ok {
				sess.RequestDirection(d)
				continue
			}
			switch cmd {
			case input.CmdQuit:
				fmt.Println("\n  Thanks for playing! 👋")
				return
			case input.CmdStart:
				sess.Start()
			case input.CmdPause:
				sess.TogglePause()
			case input.CmdRestart:
				sess.Reset(false)
			case input.CmdAutoplay:
				if sess.Autoplay() {
					sess.SetNavigator(nil)
				} else {
					sess.SetNavigator(game.NewGreedyNavigator(nil))
				}
				render.Render(sess.Snapshot(), hud())
			}
		}
	}
}
