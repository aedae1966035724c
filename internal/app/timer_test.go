package app_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

// fakeClock records every ticker a Timer creates.
type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeClock) NewTicker(time.Duration) app.Ticker {
	t := &fakeTicker{c: make(chan time.Time)}
	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()
	return t
}

func (f *fakeClock) latest() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

func (f *fakeClock) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func TestCountdownStopsAtZero(t *testing.T) {
	c := app.NewCountdown(2)
	if !c.Tick() || !c.Tick() {
		t.Fatalf("expected two successful ticks")
	}
	if c.Tick() {
		t.Fatalf("expected tick at zero to report expiry")
	}
	if c.Remaining() != 0 {
		t.Fatalf("expected zero, got %d", c.Remaining())
	}
	c.Reset(5)
	if c.Remaining() != 5 {
		t.Fatalf("expected reset to 5, got %d", c.Remaining())
	}
}

func TestTimerRestartStopsPreviousTicker(t *testing.T) {
	clock := &fakeClock{}
	timer := app.NewTimer(time.Second, clock.NewTicker)

	if timer.C() != nil || timer.Running() {
		t.Fatalf("expected a stopped timer before the first restart")
	}

	timer.Restart()
	first := clock.latest()
	timer.Restart()
	second := clock.latest()

	if clock.count() != 2 {
		t.Fatalf("expected two tickers, got %d", clock.count())
	}
	if !first.stopped.Load() {
		t.Fatalf("expected the first ticker to be stopped")
	}
	if second.stopped.Load() {
		t.Fatalf("expected the second ticker to be live")
	}
	if timer.C() != (<-chan time.Time)(second.c) {
		t.Fatalf("expected the timer to expose the live ticker only")
	}

	timer.Stop()
	if !second.stopped.Load() || timer.C() != nil {
		t.Fatalf("expected stop to cancel the live ticker")
	}
}

func TestTimingDurations(t *testing.T) {
	timing := app.DefaultTiming()
	cases := map[domain.Difficulty]int{
		domain.DifficultyEasy:   45,
		domain.DifficultyMedium: 30,
		domain.DifficultyHard:   20,
		domain.Difficulty("x"):  45,
	}
	for d, want := range cases {
		if got := timing.Duration(d); got != want {
			t.Fatalf("%s: expected %d, got %d", d, want, got)
		}
	}

	legacy := app.Timing{ResetPolicy: app.ResetToEasy}
	if got := legacy.Duration(domain.DifficultyHard); got != 45 {
		t.Fatalf("expected legacy timing to use easy, got %d", got)
	}
}
