package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/trytobebee/gridsnake/pkg/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "game.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSubmitScoreRanksWithinMode(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	steps := []struct {
		player string
		score  int
		mode   game.Mode
		rank   int
	}{
		{"alice", 50, game.ModeWalls, 1},
		{"bob", 80, game.ModeWalls, 1},
		{"carol", 60, game.ModeWalls, 2},
		{"dave", 10, game.ModePassThrough, 1}, // other mode is ranked separately
		{"erin", 60, game.ModeWalls, 3},       // ties rank below earlier entries
	}
	for _, st := range steps {
		res, err := s.SubmitScore(ctx, st.player, st.score, st.mode)
		if err != nil {
			t.Fatalf("SubmitScore(%s): %v", st.player, err)
		}
		if !res.Accepted || res.Rank != st.rank {
			t.Errorf("SubmitScore(%s, %d) = %+v, want rank %d", st.player, st.score, res, st.rank)
		}
	}
}

func TestSubmitScoreRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, tc := range []struct {
		player string
		score  int
	}{
		{"", 10},
		{"   ", 10},
		{"alice", 0},
		{"alice", -5},
	} {
		res, err := s.SubmitScore(ctx, tc.player, tc.score, game.ModeWalls)
		if err != nil {
			t.Fatalf("SubmitScore(%q, %d): %v", tc.player, tc.score, err)
		}
		if res.Accepted {
			t.Errorf("SubmitScore(%q, %d) accepted", tc.player, tc.score)
		}
	}

	top, err := s.Top(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 0 {
		t.Errorf("rejected submissions were stored: %+v", top)
	}
}

func TestTopOrdersAndFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SubmitScore(ctx, "alice", 30, game.ModeWalls)
	s.SubmitScore(ctx, "bob", 90, game.ModePassThrough)
	s.SubmitScore(ctx, "carol", 70, game.ModeWalls)
	s.SubmitScore(ctx, "dave", 20, game.ModeWalls)

	all, err := s.Top(ctx, "", 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bob", "carol", "alice", "dave"}
	if len(all) != len(want) {
		t.Fatalf("got %d entries, want %d", len(all), len(want))
	}
	for i, name := range want {
		if all[i].Username != name {
			t.Errorf("entry %d = %s, want %s", i, all[i].Username, name)
		}
	}

	walls, err := s.Top(ctx, "walls", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(walls) != 2 || walls[0].Username != "carol" || walls[1].Username != "alice" {
		t.Errorf("walls top 2 = %+v", walls)
	}
	for _, e := range walls {
		if e.Mode != "walls" || e.ID == "" || e.Date.IsZero() {
			t.Errorf("incomplete entry %+v", e)
		}
	}
}

func TestPlayerStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SubmitScore(ctx, "alice", 30, game.ModeWalls)
	s.SubmitScore(ctx, "alice", 60, game.ModePassThrough)
	s.SubmitScore(ctx, "bob", 90, game.ModeWalls)
	s.SubmitScore(ctx, "carol", 40, game.ModeWalls)

	st, err := s.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if st.HighScore != 60 || st.GamesPlayed != 2 || st.Rank != 2 {
		t.Errorf("alice stats = %+v, want high 60, games 2, rank 2", st)
	}

	none, err := s.PlayerStats(ctx, "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if none != (PlayerStats{}) {
		t.Errorf("unknown player stats = %+v", none)
	}
}

func TestImport(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n, err := s.Import(ctx, []Entry{
		{Username: "alice", Score: 40, Mode: "walls", Date: when},
		{ID: "fixed-id", Username: "bob", Score: 20, Mode: "pass-through"},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}

	top, _ := s.Top(ctx, "", 10)
	if len(top) != 2 {
		t.Fatalf("got %d entries after import", len(top))
	}
	if !top[0].Date.Equal(when) {
		t.Errorf("date = %v, want %v", top[0].Date, when)
	}
	if top[1].ID != "fixed-id" {
		t.Errorf("id = %q, want fixed-id", top[1].ID)
	}
}

func TestImportRejectsWholeBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Import(ctx, []Entry{
		{Username: "alice", Score: 40, Mode: "walls"},
		{Username: "", Score: 20, Mode: "walls"},
	})
	if !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("err = %v, want ErrInvalidSubmission", err)
	}

	if _, err := s.Import(ctx, []Entry{{Username: "x", Score: 1, Mode: "maze"}}); err == nil {
		t.Error("unknown mode accepted")
	}

	top, _ := s.Top(ctx, "", 10)
	if len(top) != 0 {
		t.Errorf("partial import stored %d entries", len(top))
	}
}

// TestConcurrentSubmitRanksAreDistinct submits equal scores in parallel; each
// submission must see only itself and earlier entries.
func TestConcurrentSubmitRanksAreDistinct(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const n = 20
	ranks := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.SubmitScore(ctx, fmt.Sprintf("p%d", i), 50, game.ModeWalls)
			if err != nil {
				t.Errorf("SubmitScore: %v", err)
				return
			}
			ranks[i] = res.Rank
		}(i)
	}
	wg.Wait()

	sort.Ints(ranks)
	for i, r := range ranks {
		if r != i+1 {
			t.Fatalf("ranks = %v, want 1..%d each once", ranks, n)
		}
	}
}
