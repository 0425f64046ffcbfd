// Package server exposes live games over websockets and the leaderboard
// over a JSON API.
package server

import (
	"context"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/game"
	"github.com/trytobebee/gridsnake/pkg/leaderboard"
	"github.com/trytobebee/gridsnake/pkg/recorder"
	"github.com/trytobebee/gridsnake/pkg/session"
)

const maxPlayerName = 20

// Scores is the leaderboard the server reads and writes.
type Scores interface {
	session.ScoreSubmitter
	Top(ctx context.Context, mode string, limit int) ([]leaderboard.Entry, error)
	PlayerStats(ctx context.Context, player string) (leaderboard.PlayerStats, error)
}

// Game kinds
const (
	KindPlayer = "player"
	KindDemo   = "demo"
)

type liveGame struct {
	kind string
	sess *session.Session
	rec  *recorder.Recorder

	done      chan struct{} // closed once the game is over for good
	closeOnce sync.Once
}

// GameInfo is the listing entry of a running game.
type GameInfo struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	Player    string      `json:"player,omitempty"`
	Score     int         `json:"score"`
	Length    int         `json:"length"`
	Status    game.Status `json:"status"`
	Mode      game.Mode   `json:"mode"`
	StartedAt time.Time   `json:"startedAt"`
}

// Server holds the live games and the HTTP handlers.
type Server struct {
	cfg      *config.Config
	scores   Scores
	log      zerolog.Logger
	sanitize *bluemonday.Policy
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	games map[string]*liveGame
}

// New creates a server. scores may be nil, in which case nothing is
// submitted and the leaderboard routes answer 503.
func New(cfg *config.Config, scores Scores, logger zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		scores:   scores,
		log:      logger,
		sanitize: bluemonday.StrictPolicy(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		games: make(map[string]*liveGame),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/ws", s.handlePlay)
	r.Get("/ws/watch/{id}", s.handleWatch)

	r.Route("/api", func(r chi.Router) {
		r.Get("/games", s.listGames)
		r.Get("/games/{id}", s.getGame)

		r.Get("/leaderboard", s.getLeaderboard)
		r.Post("/leaderboard", s.postScore)
		r.Get("/players/{name}/stats", s.getPlayerStats)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "games": s.gameCount()})
		})
	})

	return r
}

// StartDemos launches n unattended games steered by the greedy navigator.
func (s *Server) StartDemos(n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(i)))
		sess := session.New(session.Options{
			Config:    s.cfg.Game,
			Mode:      s.defaultMode(),
			Rand:      rng,
			Navigator: game.NewGreedyNavigator(rng),
			Demo:      session.DefaultDemoPolicy(),
			Logger:    s.log,
		})
		s.register(KindDemo, sess)
		sess.Start()
		ids = append(ids, sess.ID())
	}
	s.log.Info().Int("count", n).Msg("demo games started")
	return ids
}

// Close stops every live game.
func (s *Server) Close() {
	s.mu.Lock()
	games := s.games
	s.games = make(map[string]*liveGame)
	s.mu.Unlock()

	for _, g := range games {
		s.closeGame(g)
	}
}

func (s *Server) register(kind string, sess *session.Session) *liveGame {
	g := &liveGame{kind: kind, sess: sess, done: make(chan struct{})}
	if s.cfg.Record {
		rec, err := recorder.New(s.cfg.RecordDir, sess.ID(), s.log)
		if err != nil {
			s.log.Error().Err(err).Str("game_id", sess.ID()).Msg("recording disabled")
		} else {
			g.rec = rec
			sess.Subscribe(rec.Record)
		}
	}

	s.mu.Lock()
	s.games[sess.ID()] = g
	s.mu.Unlock()
	return g
}

func (s *Server) unregister(id string) {
	s.mu.Lock()
	g, ok := s.games[id]
	delete(s.games, id)
	s.mu.Unlock()

	if ok {
		s.closeGame(g)
	}
}

func (s *Server) closeGame(g *liveGame) {
	g.closeOnce.Do(func() { close(g.done) })
	g.sess.Close()
	if g.rec != nil {
		if err := g.rec.Close(); err != nil {
			s.log.Error().Err(err).Str("game_id", g.sess.ID()).Msg("failed to close recording")
		}
	}
}

func (s *Server) lookup(id string) (*liveGame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *Server) gameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

func (s *Server) gameInfos() []GameInfo {
	s.mu.RLock()
	infos := make([]GameInfo, 0, len(s.games))
	for id, g := range s.games {
		st := g.sess.Snapshot()
		infos = append(infos, GameInfo{
			ID:        id,
			Kind:      g.kind,
			Player:    g.sess.Player(),
			Score:     st.Score,
			Length:    len(st.Snake),
			Status:    st.Status,
			Mode:      st.Mode,
			StartedAt: g.sess.StartedAt(),
		})
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

func (s *Server) defaultMode() game.Mode {
	m, err := game.ParseMode(s.cfg.Mode)
	if err != nil {
		return game.ModeWalls
	}
	return m
}

// playerName strips markup and clamps the length. An empty result means
// the player stays anonymous.
func (s *Server) playerName(raw string) string {
	name := strings.TrimSpace(s.sanitize.Sanitize(raw))
	if utf8.RuneCountInString(name) > maxPlayerName {
		name = string([]rune(name)[:maxPlayerName])
	}
	return name
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
