// Package scheduler drives a callback at a fixed period with at most one
// live timer at any instant.
package scheduler

import (
	"sync"
	"time"
)

// Tick is handed to the callback on every firing.
type Tick struct {
	At  time.Time
	gen uint64
	s   *Scheduler
}

// Stale reports whether the timer that produced this tick has since been
// cancelled or replaced. Results computed for a stale tick must be dropped.
func (t Tick) Stale() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return !t.s.running || t.s.gen != t.gen
}

// Scheduler owns one repeating timer.
type Scheduler struct {
	mu       sync.Mutex
	period   time.Duration
	running  bool
	gen      uint64
	stop     chan struct{}
	callback func(Tick)
	installs int // number of timers installed so far
	wg       sync.WaitGroup
}

// New creates a stopped scheduler.
func New(period time.Duration, callback func(Tick)) *Scheduler {
	return &Scheduler{period: period, callback: callback}
}

// SetCallback swaps the callback. The running timer picks it up on its next
// firing without being reinstalled.
func (s *Scheduler) SetCallback(fn func(Tick)) {
	s.mu.Lock()
	s.callback = fn
	s.mu.Unlock()
}

// SetPeriod changes the period. A running timer is reinstalled only if the
// period actually changed.
func (s *Scheduler) SetPeriod(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == s.period {
		return
	}
	s.period = d
	if s.running {
		s.teardownLocked()
		s.installLocked()
	}
}

// SetRunning installs or cancels the timer. It is a no-op when the run
// state does not change.
func (s *Scheduler) SetRunning(run bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run == s.running {
		return
	}
	if run {
		s.running = true
		s.installLocked()
		return
	}
	s.teardownLocked()
	s.running = false
}

// Running reports whether a timer is installed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Period returns the current period.
func (s *Scheduler) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// Close cancels the timer and waits for its goroutine to exit.
// It must not be called from inside the callback.
func (s *Scheduler) Close() {
	s.SetRunning(false)
	s.wg.Wait()
}

func (s *Scheduler) installLocked() {
	s.gen++
	s.installs++
	s.stop = make(chan struct{})
	s.wg.Add(1)
	go s.loop(s.gen, s.period, s.stop)
}

func (s *Scheduler) teardownLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	// Bumping the generation makes every tick already handed out stale.
	s.gen++
}

func (s *Scheduler) loop(gen uint64, period time.Duration, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			current := s.running && s.gen == gen
			fn := s.callback
			s.mu.Unlock()

			if !current {
				return
			}
			if fn != nil {
				fn(Tick{At: now, gen: gen, s: s})
			}
		}
	}
}
