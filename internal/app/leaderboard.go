package app

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// DefaultPageSize is used when callers do not ask for a page size.
const DefaultPageSize = 10

// Leaderboard aggregates finished sessions for the lifetime of the process.
type Leaderboard struct {
	now func() time.Time

	mu          sync.RWMutex
	entries     []domain.LeaderboardEntry
	chart       domain.ChartSeries
	lastID      int64
	subscribers map[chan []domain.LeaderboardEntry]struct{}
}

func NewLeaderboard() *Leaderboard {
	return NewLeaderboardWithClock(time.Now)
}

// NewLeaderboardWithClock allows deterministic ids in tests.
func NewLeaderboardWithClock(now func() time.Time) *Leaderboard {
	return &Leaderboard{
		now:         now,
		chart:       make(domain.ChartSeries),
		subscribers: make(map[chan []domain.LeaderboardEntry]struct{}),
	}
}

// RecordResult appends an entry for player, keeps the list sorted by score
// (ties stay in insertion order) and extends the player's score history.
func (l *Leaderboard) RecordResult(player domain.Player, score int) domain.LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id

	entry := domain.LeaderboardEntry{
		ID:        id,
		FirstName: player.FirstName,
		LastName:  player.LastName,
		Email:     player.Email,
		Score:     score,
	}
	l.entries = append(l.entries, entry)
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Score > l.entries[j].Score
	})

	l.chart[player.Email] = append(l.chart[player.Email], domain.ScorePoint{
		Day:   strconv.FormatInt(id, 10),
		Score: score,
	})

	l.broadcastLocked()
	return entry
}

// Entries returns a copy of the ordered leaderboard.
func (l *Leaderboard) Entries() []domain.LeaderboardEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

// Len is the number of recorded results.
func (l *Leaderboard) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Paginate returns the 1-based page of the leaderboard. Pages past the end
// are empty.
func (l *Leaderboard) Paginate(page, pageSize int) domain.LeaderboardPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	total := len(l.entries)
	result := domain.LeaderboardPage{
		Entries:    []domain.LeaderboardEntry{},
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
		Total:      total,
	}
	start := (page - 1) * pageSize
	if start >= total {
		return result
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	result.Entries = append(result.Entries, l.entries[start:end]...)
	return result
}

// Chart returns a deep copy of every player's score history.
func (l *Leaderboard) Chart() domain.ChartSeries {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(domain.ChartSeries, len(l.chart))
	for email, points := range l.chart {
		out[email] = append([]domain.ScorePoint(nil), points...)
	}
	return out
}

// Series returns the score history for one email.
func (l *Leaderboard) Series(email string) []domain.ScorePoint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.ScorePoint(nil), l.chart[email]...)
}

// Subscribe returns a channel that receives the ordered entries after every
// insertion. The caller must invoke the returned cancel function.
func (l *Leaderboard) Subscribe() (<-chan []domain.LeaderboardEntry, func()) {
	ch := make(chan []domain.LeaderboardEntry, 8)

	// The initial snapshot goes out under the lock so no newer broadcast can
	// overtake it.
	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	ch <- l.snapshotLocked()
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

func (l *Leaderboard) broadcastLocked() {
	if len(l.subscribers) == 0 {
		return
	}
	snapshot := l.snapshotLocked()
	for ch := range l.subscribers {
		select {
		case ch <- snapshot:
		default:
			// slow subscriber: replace its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func (l *Leaderboard) snapshotLocked() []domain.LeaderboardEntry {
	return append([]domain.LeaderboardEntry{}, l.entries...)
}
