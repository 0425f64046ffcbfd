package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/leaderboard"
	"github.com/trytobebee/gridsnake/pkg/logging"
)

// export is the wrapped form {"leaderboard": [...]} some backups use.
type export struct {
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
}

func main() {
	dbPath := flag.String("db", config.DefaultDBPath, "SQLite database to load into")
	flag.Parse()
	log := logging.New("info", true)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: import_scores [-db path] <leaderboard.json>")
		os.Exit(2)
	}

	n, err := importFile(context.Background(), flag.Arg(0), *dbPath)
	if err != nil {
		log.Error().Err(err).Msg("import failed, nothing was written")
		os.Exit(1)
	}
	log.Info().Int("count", n).Str("db", *dbPath).Msg("✅ import complete")
}

// importFile loads the export at path into the database at dbPath.
func importFile(ctx context.Context, path, dbPath string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read export: %w", err)
	}

	entries, err := parse(content)
	if err != nil {
		return 0, fmt.Errorf("failed to parse export: %w", err)
	}

	store, err := leaderboard.Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.Import(ctx, entries)
}

// parse accepts a bare array of entries or the wrapped export object.
func parse(content []byte) ([]leaderboard.Entry, error) {
	var entries []leaderboard.Entry
	if err := json.Unmarshal(content, &entries); err == nil {
		return entries, nil
	}

	var wrapped export
	if err := json.Unmarshal(content, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Leaderboard, nil
}
