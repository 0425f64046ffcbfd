package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestFiresWhileRunning(t *testing.T) {
	var count atomic.Int32
	s := New(5*time.Millisecond, func(Tick) { count.Add(1) })
	defer s.Close()

	time.Sleep(30 * time.Millisecond)
	if count.Load() != 0 {
		t.Fatalf("fired %d times before SetRunning(true)", count.Load())
	}

	s.SetRunning(true)
	waitFor(t, func() bool { return count.Load() >= 3 })
}

func TestStopPreventsFurtherTicks(t *testing.T) {
	var count atomic.Int32
	s := New(5*time.Millisecond, func(Tick) { count.Add(1) })
	s.SetRunning(true)
	waitFor(t, func() bool { return count.Load() >= 1 })

	s.Close()
	after := count.Load()
	time.Sleep(40 * time.Millisecond)
	if got := count.Load(); got != after {
		t.Errorf("ticks after stop: %d -> %d", after, got)
	}
	if s.Running() {
		t.Error("Running() = true after Close")
	}
}

// TestCallbackSwapKeepsTimer swaps callbacks without reinstalling
func TestCallbackSwapKeepsTimer(t *testing.T) {
	var first, second atomic.Int32
	s := New(5*time.Millisecond, func(Tick) { first.Add(1) })
	defer s.Close()
	s.SetRunning(true)
	waitFor(t, func() bool { return first.Load() >= 1 })

	s.SetCallback(func(Tick) { second.Add(1) })
	waitFor(t, func() bool { return second.Load() >= 2 })

	s.mu.Lock()
	installs := s.installs
	s.mu.Unlock()
	if installs != 1 {
		t.Errorf("installs = %d, want 1", installs)
	}
}

func TestReinstallOnlyOnChange(t *testing.T) {
	s := New(10*time.Millisecond, nil)
	defer s.Close()

	s.SetRunning(true)
	s.SetRunning(true)
	s.SetPeriod(10 * time.Millisecond)
	s.mu.Lock()
	if s.installs != 1 {
		t.Errorf("installs = %d after redundant calls, want 1", s.installs)
	}
	s.mu.Unlock()

	s.SetPeriod(20 * time.Millisecond)
	s.mu.Lock()
	if s.installs != 2 {
		t.Errorf("installs = %d after period change, want 2", s.installs)
	}
	s.mu.Unlock()

	if got := s.Period(); got != 20*time.Millisecond {
		t.Errorf("Period() = %v", got)
	}
}

func TestPeriodChangeWhileStoppedDoesNotInstall(t *testing.T) {
	s := New(10*time.Millisecond, nil)
	defer s.Close()

	s.SetPeriod(30 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installs != 0 || s.running {
		t.Errorf("installs=%d running=%v, want 0/false", s.installs, s.running)
	}
}

// TestTickGoesStale hands a tick out, cancels, and checks the token
func TestTickGoesStale(t *testing.T) {
	ticks := make(chan Tick, 16)
	s := New(5*time.Millisecond, func(tk Tick) {
		select {
		case ticks <- tk:
		default:
		}
	})
	defer s.Close()
	s.SetRunning(true)

	tk := <-ticks
	if tk.Stale() {
		t.Fatal("fresh tick reported stale")
	}

	s.SetPeriod(7 * time.Millisecond)
	if !tk.Stale() {
		t.Error("tick should be stale after the timer was replaced")
	}

	tk2 := <-ticks
	for tk2.gen == tk.gen {
		tk2 = <-ticks
	}
	s.SetRunning(false)
	if !tk2.Stale() {
		t.Error("tick should be stale after cancellation")
	}
}

func TestCallbackCanChangePeriod(t *testing.T) {
	var count atomic.Int32
	var s *Scheduler
	s = New(5*time.Millisecond, func(Tick) {
		n := count.Add(1)
		s.SetPeriod(time.Duration(5+n) * time.Millisecond)
	})
	defer s.Close()
	s.SetRunning(true)

	waitFor(t, func() bool { return count.Load() >= 3 })
}
