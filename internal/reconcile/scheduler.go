package reconcile

import (
	"context"
	"sync"
)

type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler runs at most one loop per game id. Starting a game that is already running
// cancels and waits for the old loop first.
type Scheduler struct {
	mu    sync.Mutex
	loops map[string]*loop
}

func NewScheduler() *Scheduler {
	return &Scheduler{loops: make(map[string]*loop)}
}

// Start launches run for id under a child of ctx.
func (s *Scheduler) Start(ctx context.Context, id string, run func(ctx context.Context) error) {
	loopCtx, cancel := context.WithCancel(ctx)
	l := &loop{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	old := s.loops[id]
	s.loops[id] = l
	s.mu.Unlock()

	if old != nil {
		old.cancel()
		<-old.done
	}

	go func() {
		defer close(l.done)
		defer s.forget(id, l)
		_ = run(loopCtx)
	}()
}

// Stop cancels the loop for id and waits for it to exit.
func (s *Scheduler) Stop(id string) {
	s.mu.Lock()
	l, ok := s.loops[id]
	delete(s.loops, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	l.cancel()
	<-l.done
}

// StopAll cancels every loop and waits for them.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	loops := s.loops
	s.loops = make(map[string]*loop)
	s.mu.Unlock()

	for _, l := range loops {
		l.cancel()
	}
	for _, l := range loops {
		<-l.done
	}
}

// Running reports whether a loop for id is active.
func (s *Scheduler) Running(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[id]
	return ok
}

// Wait blocks until every loop has exited or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	pending := make([]*loop, 0, len(s.loops))
	for _, l := range s.loops {
		pending = append(pending, l)
	}
	s.mu.Unlock()

	for _, l := range pending {
		select {
		case <-l.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scheduler) forget(id string, l *loop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loops[id] == l {
		delete(s.loops, id)
	}
	l.cancel()
}
