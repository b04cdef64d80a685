package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/notify"
)

// StubCycler is a test double for poller.Cycler.
type StubCycler struct {
	mu     sync.Mutex
	err    error
	Calls  atomic.Int32
	Notify chan struct{}
}

// SetErr changes the error returned by subsequent cycles.
func (s *StubCycler) SetErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Cycle records the call, closes Notify on the first one and returns the configured error.
func (s *StubCycler) Cycle(ctx context.Context) error {
	_ = ctx
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// StubSource is a test double for feed.Source keyed by competition.
type StubSource struct {
	Snapshots map[string][]match.Snapshot
	Err       error
	Calls     atomic.Int32
}

func (s *StubSource) Scoreboard(ctx context.Context, competition string) ([]match.Snapshot, error) {
	_ = ctx
	s.Calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Snapshots[competition], nil
}

// RecordingNotifier keeps every message it is asked to send.
type RecordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
	Err  error
}

func (n *RecordingNotifier) Notify(ctx context.Context, msg notify.Message) error {
	_ = ctx
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.Err
}

// Messages returns a copy of the recorded messages.
func (n *RecordingNotifier) Messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.msgs...)
}
