package metrics

import (
	"sync"
	"time"
)

type feedStats struct {
	calls           int
	errors          int
	lastCallLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics alongside the optional otel instruments.
type Recorder struct {
	mu         sync.Mutex
	feeds      map[string]*feedStats
	events     map[string]int
	dispatched int
	failed     int
	ledgerOps  map[string]int
	rejections map[string]int
	otel       *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		feeds:      make(map[string]*feedStats),
		events:     make(map[string]int),
		ledgerOps:  make(map[string]int),
		rejections: make(map[string]int),
		otel:       otel,
	}
}

// RecordFeedAttempt counts a single scoreboard fetch attempt for a competition.
func (r *Recorder) RecordFeedAttempt(competition string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.feeds[competition]
	if !ok {
		stats = &feedStats{}
		r.feeds[competition] = stats
	}
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFeedAttempt(competition, duration, err)
	}
}

// RecordMatchEvent counts an emitted phase or goal event.
func (r *Recorder) RecordMatchEvent(kind string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events[kind]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordMatchEvent(kind)
	}
}

// RecordDispatch tracks a dispatch round: how many pushes were attempted and how many failed.
func (r *Recorder) RecordDispatch(attempted, failed int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.dispatched += attempted
	r.failed += failed
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordDispatch(attempted, failed)
	}
}

// RecordLedgerOp counts a ledger write and whether it was rejected.
func (r *Recorder) RecordLedgerOp(op string, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.ledgerOps[op]++
	if err != nil {
		r.rejections[op]++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordLedgerOp(op, err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// Snapshot is a copy of the in-memory counters.
type Snapshot struct {
	FeedCalls       int
	FeedErrors      int
	LastCallLatency time.Duration
	Events          map[string]int
	Dispatched      int
	DispatchFailed  int
	LedgerOps       map[string]int
	LedgerRejected  map[string]int
}

// Snapshot returns counters, with feed stats scoped to the given competition.
func (r *Recorder) Snapshot(competition string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Events:         copyCounts(r.events),
		Dispatched:     r.dispatched,
		DispatchFailed: r.failed,
		LedgerOps:      copyCounts(r.ledgerOps),
		LedgerRejected: copyCounts(r.rejections),
	}
	if stats, ok := r.feeds[competition]; ok && stats != nil {
		snap.FeedCalls = stats.calls
		snap.FeedErrors = stats.errors
		snap.LastCallLatency = stats.lastCallLatency
	}
	return snap
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
