package app

import (
	"time"

	"trivia-quiz-service/internal/domain"
)

// DefaultDurations is the per-question time budget in seconds.
var DefaultDurations = map[domain.Difficulty]int{
	domain.DifficultyEasy:   45,
	domain.DifficultyMedium: 30,
	domain.DifficultyHard:   20,
}

// TimerReset selects which duration a countdown is reseeded with after an answer.
type TimerReset string

const (
	// ResetToDifficulty reseeds with the configured difficulty's duration.
	ResetToDifficulty TimerReset = "difficulty"
	// ResetToEasy reseeds every question with the easy duration, matching the
	// legacy client. Kept only for parity checks.
	ResetToEasy TimerReset = "easy"
)

// Timing resolves countdown durations for a session.
type Timing struct {
	Durations   map[domain.Difficulty]int
	ResetPolicy TimerReset
}

// DefaultTiming uses DefaultDurations and resets to the configured difficulty.
func DefaultTiming() Timing {
	return Timing{Durations: DefaultDurations, ResetPolicy: ResetToDifficulty}
}

// Duration is the countdown length for a question of a session configured
// with difficulty d.
func (t Timing) Duration(d domain.Difficulty) int {
	if t.ResetPolicy == ResetToEasy {
		return t.resolve(domain.DifficultyEasy)
	}
	return t.resolve(d)
}

func (t Timing) resolve(d domain.Difficulty) int {
	durations := t.Durations
	if durations == nil {
		durations = DefaultDurations
	}
	if secs, ok := durations[d]; ok && secs > 0 {
		return secs
	}
	return DefaultDurations[domain.DifficultyEasy]
}

// Countdown counts whole seconds down to zero.
type Countdown struct {
	remaining int
}

func NewCountdown(seconds int) Countdown {
	return Countdown{remaining: seconds}
}

// Tick decrements the countdown and reports false when it was already at zero.
func (c *Countdown) Tick() bool {
	if c.remaining > 0 {
		c.remaining--
		return true
	}
	return false
}

func (c *Countdown) Reset(seconds int) {
	c.remaining = seconds
}

func (c *Countdown) Remaining() int {
	return c.remaining
}

// Ticker is the part of *time.Ticker the timer depends on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Timer owns at most one live ticker. Restart always stops the previous
// ticker before creating the next one, and only the channel of the current
// ticker is ever handed out, so ticks of a replaced ticker are never observed.
type Timer struct {
	interval  time.Duration
	newTicker TickerFunc
	current   Ticker
}

func NewTimer(interval time.Duration, newTicker TickerFunc) *Timer {
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{interval: interval, newTicker: newTicker}
}

// Restart cancels the running ticker and starts a fresh one.
func (t *Timer) Restart() {
	t.Stop()
	t.current = t.newTicker(t.interval)
}

// Stop cancels the running ticker, if any.
func (t *Timer) Stop() {
	if t.current != nil {
		t.current.Stop()
		t.current = nil
	}
}

// C returns the current tick channel, or nil when stopped. Receiving from a
// nil channel blocks forever, which keeps a stopped timer silent in a select.
func (t *Timer) C() <-chan time.Time {
	if t.current == nil {
		return nil
	}
	return t.current.C()
}

// Running reports whether a ticker is live.
func (t *Timer) Running() bool {
	return t.current != nil
}
