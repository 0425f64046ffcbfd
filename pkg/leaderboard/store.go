// Package leaderboard persists submitted scores in SQLite.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/trytobebee/gridsnake/pkg/game"
)

// ErrInvalidSubmission is returned for entries without a player or a positive score.
var ErrInvalidSubmission = errors.New("leaderboard: invalid submission")

// Entry is one leaderboard row.
type Entry struct {
	ID       string    `db:"id" json:"id"`
	Username string    `db:"username" json:"username"`
	Score    int       `db:"score" json:"score"`
	Mode     string    `db:"mode" json:"mode"`
	Date     time.Time `db:"created_at" json:"date"`
}

// PlayerStats summarises one player's submissions.
type PlayerStats struct {
	HighScore   int `db:"high_score" json:"highScore"`
	GamesPlayed int `db:"games_played" json:"gamesPlayed"`
	Rank        int `json:"rank"`
}

// Store is a SQLite-backed leaderboard.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			score INTEGER NOT NULL,
			mode TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_mode_score ON scores (mode, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_username ON scores (username)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table (%s): %w", query, err)
		}
	}
	return nil
}

// SubmitScore records a finished game and returns its rank within the mode.
// Entries with an equal score that were submitted earlier rank higher.
func (s *Store) SubmitScore(ctx context.Context, player string, score int, mode game.Mode) (game.ScoreResult, error) {
	player = strings.TrimSpace(player)
	if player == "" || score <= 0 {
		return game.ScoreResult{Accepted: false}, nil
	}

	e := Entry{
		ID:       uuid.NewString(),
		Username: player,
		Score:    score,
		Mode:     mode.String(),
		Date:     time.Now().UTC(),
	}

	// The rank must not see entries inserted after this one.
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return game.ScoreResult{}, fmt.Errorf("failed to begin submission: %w", err)
	}
	defer tx.Rollback()

	if err := s.insert(ctx, tx, e); err != nil {
		return game.ScoreResult{}, err
	}

	var rank int
	err = tx.GetContext(ctx, &rank,
		`SELECT COUNT(*) FROM scores WHERE mode = ? AND score >= ?`, e.Mode, e.Score)
	if err != nil {
		return game.ScoreResult{}, fmt.Errorf("failed to compute rank: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return game.ScoreResult{}, fmt.Errorf("failed to commit submission: %w", err)
	}
	return game.ScoreResult{Accepted: true, Rank: rank}, nil
}

// Top returns the best entries, optionally filtered by mode ("" for all).
func (s *Store) Top(ctx context.Context, mode string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, username, score, mode, created_at FROM scores`
	args := []any{}
	if mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, mode)
	}
	query += ` ORDER BY score DESC, created_at ASC LIMIT ?`
	args = append(args, limit)

	entries := []Entry{}
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return entries, nil
}

// PlayerStats returns the high score, number of games and the player's
// rank among every player's best score. Unknown players get zero values.
func (s *Store) PlayerStats(ctx context.Context, player string) (PlayerStats, error) {
	var st PlayerStats
	err := s.db.GetContext(ctx, &st,
		`SELECT COALESCE(MAX(score), 0) AS high_score, COUNT(*) AS games_played
		 FROM scores WHERE username = ?`, player)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("failed to load player stats: %w", err)
	}
	if st.GamesPlayed == 0 {
		return st, nil
	}

	var better int
	err = s.db.GetContext(ctx, &better,
		`SELECT COUNT(*) FROM (
			SELECT username, MAX(score) AS best FROM scores GROUP BY username
		 ) WHERE best > ?`, st.HighScore)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("failed to compute player rank: %w", err)
	}
	st.Rank = better + 1
	return st, nil
}

// Import bulk-loads entries in one transaction. Missing ids and dates are
// filled in; the whole batch is rejected if any entry is invalid.
func (s *Store) Import(ctx context.Context, entries []Entry) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	for i, e := range entries {
		if strings.TrimSpace(e.Username) == "" || e.Score <= 0 {
			return 0, fmt.Errorf("entry %d: %w", i, ErrInvalidSubmission)
		}
		if _, err := game.ParseMode(e.Mode); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Date.IsZero() {
			e.Date = time.Now().UTC()
		}
		if err := s.insert(ctx, tx, e); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(entries), nil
}

func (s *Store) insert(ctx context.Context, ex sqlx.ExtContext, e Entry) error {
	_, err := sqlx.NamedExecContext(ctx, ex,
		`INSERT INTO scores (id, username, score, mode, created_at)
		 VALUES (:id, :username, :score, :mode, :created_at)`, e)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}
