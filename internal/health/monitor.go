package health

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

const defaultFailureLimit = 200

// CompetitionStatus is the outcome of the latest poll of one competition.
type CompetitionStatus struct {
	Competition string    `json:"competition"`
	OK          bool      `json:"ok"`
	EventsCount int       `json:"eventsCount"`
	InCount     int       `json:"inCount"`
	PostCount   int       `json:"postCount"`
	PreCount    int       `json:"preCount"`
	CheckedAt   time.Time `json:"checkedAt"`
}

// Failure is one entry of the rolling failure log.
type Failure struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Monitor aggregates poll outcomes per competition.
type Monitor struct {
	mu           sync.RWMutex
	competitions map[string]CompetitionStatus
	failures     []Failure
	limit        int
	now          func() time.Time
}

// NewMonitor keeps at most limit failures (200 when limit <= 0).
func NewMonitor(limit int) *Monitor {
	if limit <= 0 {
		limit = defaultFailureLimit
	}
	return &Monitor{
		competitions: make(map[string]CompetitionStatus),
		limit:        limit,
		now:          time.Now,
	}
}

// RecordSuccess stores the state breakdown of a successful scoreboard poll.
func (m *Monitor) RecordSuccess(competition string, snaps []match.Snapshot) {
	if m == nil {
		return
	}
	status := CompetitionStatus{Competition: competition, OK: true, EventsCount: len(snaps)}
	for _, snap := range snaps {
		switch strings.ToLower(snap.Status.State) {
		case match.StateIn:
			status.InCount++
		case match.StatePost:
			status.PostCount++
		case match.StatePre:
			status.PreCount++
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	status.CheckedAt = m.now()
	m.competitions[competition] = status
}

// RecordFailure marks the competition as failing and appends to the failure log.
func (m *Monitor) RecordFailure(competition string, err error) {
	if m == nil || err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.competitions[competition] = CompetitionStatus{Competition: competition, CheckedAt: now}
	m.appendFailure(competition, err, now)
}

// RecordError logs a failure that is not tied to a competition's status, such as a tracker error.
func (m *Monitor) RecordError(label string, err error) {
	if m == nil || err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendFailure(label, err, m.now())
}

func (m *Monitor) appendFailure(label string, err error, at time.Time) {
	m.failures = append(m.failures, Failure{
		ID:        uuid.NewString(),
		Label:     label,
		Error:     err.Error(),
		Timestamp: at,
	})
	if over := len(m.failures) - m.limit; over > 0 {
		m.failures = append([]Failure(nil), m.failures[over:]...)
	}
}

// Competitions returns the latest status per competition, sorted by name.
func (m *Monitor) Competitions() []CompetitionStatus {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	out := make([]CompetitionStatus, 0, len(m.competitions))
	for _, st := range m.competitions {
		out = append(out, st)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Competition < out[j].Competition })
	return out
}

// Failures returns the failure log, newest first.
func (m *Monitor) Failures() []Failure {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Failure, len(m.failures))
	for i, f := range m.failures {
		out[len(out)-1-i] = f
	}
	return out
}
