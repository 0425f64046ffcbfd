package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/game"
	"github.com/trytobebee/gridsnake/pkg/input"
	"github.com/trytobebee/gridsnake/pkg/session"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 64
	readLimit  = 512 // bytes per client message
)

// ServerMessage is sent to websocket clients.
type ServerMessage struct {
	Type   string            `json:"type"` // config, state, score, error, closed
	GameID string            `json:"gameId,omitempty"`
	Config *GameSettings     `json:"config,omitempty"`
	State  *game.Snapshot    `json:"state,omitempty"`
	Result *game.ScoreResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// GameSettings is the board description sent once per connection.
type GameSettings struct {
	GridSize       int    `json:"gridSize"`
	InitialSpeedMs int64  `json:"initialSpeedMs"`
	MinSpeedMs     int64  `json:"minSpeedMs"`
	PointsPerFood  int    `json:"pointsPerFood"`
	Player         string `json:"player,omitempty"`
}

// ClientMessage is read from players.
type ClientMessage struct {
	Action string `json:"action"`
	Mode   string `json:"mode,omitempty"` // with action "mode"
}

// outbox serialises writes to one connection.
type outbox struct {
	ch       chan ServerMessage
	done     chan struct{}
	stopped  chan struct{} // closed when the write loop returns
	stopOnce sync.Once
}

func newOutbox() *outbox {
	return &outbox{
		ch:      make(chan ServerMessage, sendBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (o *outbox) stop() {
	o.stopOnce.Do(func() { close(o.done) })
}

// send never blocks; a client that cannot keep up misses frames.
func (o *outbox) send(m ServerMessage) {
	select {
	case o.ch <- m:
	default:
	}
}

func (o *outbox) stateSender(id string) func(game.State) {
	return func(st game.State) {
		snap := st.Snapshot()
		o.send(ServerMessage{Type: "state", GameID: id, State: &snap})
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, o *outbox) {
	defer close(o.stopped)
	for {
		select {
		case <-o.done:
			return
		case m := <-o.ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				s.log.Debug().Err(err).Msg("write error")
				return
			}
		}
	}
}

func (s *Server) settings(player string) *GameSettings {
	return &GameSettings{
		GridSize:       s.cfg.Game.GridSize,
		InitialSpeedMs: s.cfg.Game.InitialSpeed.Milliseconds(),
		MinSpeedMs:     config.MinSpeed.Milliseconds(),
		PointsPerFood:  s.cfg.Game.PointsPerFood,
		Player:         player,
	}
}

// handlePlay runs one player's game for the lifetime of the connection.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	mode := s.defaultMode()
	if q := r.URL.Query().Get("mode"); q != "" {
		m, err := game.ParseMode(q)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}
	player := s.playerName(r.URL.Query().Get("player"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade error")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(readLimit)

	out := newOutbox()
	defer out.stop()

	sess := session.New(session.Options{
		Config:    s.cfg.Game,
		Mode:      mode,
		Submitter: s.scores,
		Identity:  session.Identity{Player: player},
		Logger:    s.log,
		OnSubmitted: func(res game.ScoreResult, err error) {
			if err != nil {
				out.send(ServerMessage{Type: "error", Error: "score submission failed"})
				return
			}
			out.send(ServerMessage{Type: "score", Result: &res})
		},
	})
	id := sess.ID()
	s.register(KindPlayer, sess)
	defer s.unregister(id)

	log := s.log.With().Str("game_id", id).Str("player", player).Str("remote", r.RemoteAddr).Logger()
	log.Info().Stringer("mode", mode).Msg("player connected")

	out.send(ServerMessage{Type: "config", GameID: id, Config: s.settings(player)})
	initial := sess.Snapshot().Snapshot()
	out.send(ServerMessage{Type: "state", GameID: id, State: &initial})
	sess.Subscribe(out.stateSender(id))

	go s.writeLoop(conn, out)

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Info().Err(err).Msg("player disconnected")
			return
		}
		if !s.apply(sess, msg) {
			return
		}
	}
}

// apply executes one client message. It returns false when the client quits.
func (s *Server) apply(sess *session.Session, msg ClientMessage) bool {
	if msg.Action == "mode" {
		if m, err := game.ParseMode(msg.Mode); err == nil {
			sess.SetMode(m)
		}
		return true
	}

	cmd := input.ParseAction(msg.Action)
	if d, ok := cmd.Direction(); ok {
		sess.RequestDirection(d)
		return true
	}
	switch cmd {
	case input.CmdStart:
		sess.Start()
	case input.CmdPause:
		sess.TogglePause()
	case input.CmdRestart:
		sess.Reset(true)
	case input.CmdAutoplay:
		if sess.Autoplay() {
			sess.SetNavigator(nil)
		} else {
			sess.SetNavigator(game.NewGreedyNavigator(nil))
		}
	case input.CmdQuit:
		return false
	}
	return true
}

// handleWatch streams an existing game to a spectator.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g, ok := s.lookup(id)
	if !ok {
		respondError(w, http.StatusNotFound, "game not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade error")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(readLimit)

	out := newOutbox()
	defer out.stop()

	out.send(ServerMessage{Type: "config", GameID: id, Config: s.settings(g.sess.Player())})
	initial := g.sess.Snapshot().Snapshot()
	out.send(ServerMessage{Type: "state", GameID: id, State: &initial})
	unsubscribe := g.sess.Subscribe(out.stateSender(id))
	defer unsubscribe()

	go s.writeLoop(conn, out)

	s.log.Debug().Str("game_id", id).Str("remote", r.RemoteAddr).Msg("spectator joined")

	// Spectators only read; drain until the connection goes away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	select {
	case <-gone:
	case <-g.done:
		// Take over the connection from the write loop for the last words.
		out.stop()
		<-out.stopped
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteJSON(ServerMessage{Type: "closed", GameID: id})
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game ended"))
	}
}
