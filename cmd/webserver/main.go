package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/leaderboard"
	"github.com/trytobebee/gridsnake/pkg/logging"
	"github.com/trytobebee/gridsnake/pkg/server"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run returns after every deferred cleanup so main can exit non-zero.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New("info", true)
		l.Error().Err(err).Msg("failed to load config")
		return err
	}
	log := logging.New(cfg.LogLevel, false)

	store, err := leaderboard.Open(cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Str("db", cfg.DBPath).Msg("failed to open leaderboard")
		return err
	}
	defer store.Close()

	srv := server.New(cfg, store, log)
	defer srv.Close()
	srv.StartDemos(cfg.DemoGames)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Msg("🚀 snake server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
