// Package session runs one game: it owns the current state, advances it on
// a scheduler, applies player commands and reports the result.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/game"
	"github.com/trytobebee/gridsnake/pkg/scheduler"
)

// ScoreSubmitter receives the final score of an identified player's game.
type ScoreSubmitter interface {
	SubmitScore(ctx context.Context, player string, score int, mode game.Mode) (game.ScoreResult, error)
}

// Identity says who is playing. The zero value is an anonymous player.
type Identity struct {
	Player string
}

// Identified reports whether scores can be attributed to someone.
func (i Identity) Identified() bool {
	return i.Player != ""
}

// DemoPolicy makes a game play forever: on death the snake respawns in
// the middle, the score gets Bonus, and play continues.
type DemoPolicy struct {
	Bonus  int
	Period time.Duration // fixed tick period; zero follows the game speed
}

// DefaultDemoPolicy is the spectator policy.
func DefaultDemoPolicy() *DemoPolicy {
	return &DemoPolicy{Bonus: config.DemoRespawnBonus, Period: config.DemoTickInterval}
}

// Options configures a Session.
type Options struct {
	ID        string // generated when empty
	Config    config.GameConfig
	Mode      game.Mode
	Rand      game.Rand
	Navigator game.Navigator // nil for human play
	Demo      *DemoPolicy
	Submitter ScoreSubmitter
	Identity  Identity
	Logger    zerolog.Logger

	// OnSubmitted is called from the submission goroutine with the result.
	OnSubmitted func(game.ScoreResult, error)
}

// Session is safe for concurrent use.
type Session struct {
	id        string
	startedAt time.Time
	engine    *game.Engine
	sched     *scheduler.Scheduler
	demo      *DemoPolicy
	submitter ScoreSubmitter
	identity  Identity
	onSubmit  func(game.ScoreResult, error)
	log       zerolog.Logger

	mu        sync.Mutex
	state     game.State
	mode      game.Mode
	nav       game.Navigator
	observers map[int]func(game.State)
	nextObs   int
	submitted bool
	assisted  bool // a navigator steered this game; its score is not the player's
	closed    bool

	submitWG sync.WaitGroup
}

// New creates an idle session.
func New(opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	s := &Session{
		id:        id,
		startedAt: time.Now(),
		engine:    game.NewEngine(opts.Config, opts.Rand),
		demo:      opts.Demo,
		submitter: opts.Submitter,
		identity:  opts.Identity,
		onSubmit:  opts.OnSubmitted,
		log:       opts.Logger.With().Str("game_id", id).Logger(),
		mode:      opts.Mode,
		nav:       opts.Navigator,
		observers: make(map[int]func(game.State)),
	}
	s.state = s.engine.NewState(opts.Mode)
	s.sched = scheduler.New(s.periodFor(s.state), s.onTick)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Player returns the identified player name, if any.
func (s *Session) Player() string { return s.identity.Player }

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive a snapshot after every committed
// change. fn runs with the session locked and must not call back into it.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(game.State)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// Start begins an idle game.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = game.Start(s.state)
	s.commit()
}

// TogglePause toggles the pause state
func (s *Session) TogglePause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Cancel first so a tick already in flight is discarded.
	s.sched.SetRunning(false)
	s.state = game.TogglePause(s.state)
	s.commit()
}

// Reset replaces the game with a fresh one in the configured mode.
func (s *Session) Reset(autoStart bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.SetRunning(false)
	s.state = s.engine.Reset(s.mode, autoStart)
	s.submitted = false
	s.assisted = false
	s.commit()
}

// SetMode changes the mode used by the next Reset.
func (s *Session) SetMode(m game.Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// SetNavigator switches between autoplay (non-nil) and manual control.
// A game the navigator has steered, even briefly, is never submitted.
func (s *Session) SetNavigator(nav game.Navigator) {
	s.mu.Lock()
	s.nav = nav
	s.mu.Unlock()
}

// Autoplay reports whether a navigator is steering.
func (s *Session) Autoplay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav != nil
}

// RequestDirection buffers a heading for the next tick.
func (s *Session) RequestDirection(d game.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = game.RequestDirection(s.state, d)
}

// Close stops the timer and waits for pending score submissions.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.observers = make(map[int]func(game.State))
	s.mu.Unlock()

	s.sched.Close()
	s.submitWG.Wait()
}

func (s *Session) onTick(t scheduler.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || t.Stale() {
		return
	}

	cur := s.state
	if s.nav != nil {
		s.assisted = true
		cur = game.RequestDirection(cur, s.nav.ChooseDirection(cur))
	}
	next := s.engine.Tick(cur)

	if next.Status == game.StatusGameOver && cur.Status == game.StatusPlaying {
		if s.demo != nil {
			next = s.respawn(cur)
		} else {
			s.sched.SetRunning(false)
			s.finish(next)
		}
	}

	s.state = next
	s.commit()
}

func (s *Session) respawn(prev game.State) game.State {
	fresh := s.engine.Reset(prev.Mode, true)
	fresh.Score = prev.Score + s.demo.Bonus
	fresh.Speed = prev.Speed
	s.log.Debug().Int("score", fresh.Score).Msg("demo snake respawned")
	return fresh
}

func (s *Session) finish(final game.State) {
	s.log.Info().Int("score", final.Score).Stringer("mode", final.Mode).Int("length", len(final.Snake)).Msg("game over")

	if s.submitted || s.submitter == nil || final.Score <= 0 || !s.identity.Identified() {
		return
	}
	if s.assisted {
		s.log.Info().Int("score", final.Score).Msg("autoplay game, score not submitted")
		return
	}
	s.submitted = true

	player, score, mode := s.identity.Player, final.Score, final.Mode
	s.submitWG.Add(1)
	go func() {
		defer s.submitWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), config.SubmitTimeout)
		defer cancel()

		res, err := s.submitter.SubmitScore(ctx, player, score, mode)
		if err != nil {
			s.log.Error().Err(err).Str("player", player).Int("score", score).Msg("score submission failed")
		} else {
			s.log.Info().Str("player", player).Int("score", score).Int("rank", res.Rank).Bool("accepted", res.Accepted).Msg("score submitted")
		}
		if s.onSubmit != nil {
			s.onSubmit(res, err)
		}
	}()
}

func (s *Session) periodFor(st game.State) time.Duration {
	if s.demo != nil && s.demo.Period > 0 {
		return s.demo.Period
	}
	return st.Speed
}

// commit syncs the scheduler with the state and notifies observers.
// Callers hold s.mu.
func (s *Session) commit() {
	s.sched.SetPeriod(s.periodFor(s.state))
	s.sched.SetRunning(!s.closed && s.state.Status == game.StatusPlaying)

	if len(s.observers) == 0 {
		return
	}
	snap := s.state.Clone()
	for _, fn := range s.observers {
		fn(snap)
	}
}
