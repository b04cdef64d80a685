package testutil

import (
	"context"
	"net/http"
	"sync/atomic"
)

// StubHTTPServer records calls. ListenErr is returned from every ListenAndServe,
// so http.ErrServerClosed models a clean close and any other error a bind failure.
type StubHTTPServer struct {
	AddrVal       string
	HandlerVal    http.Handler
	ListenErr     error
	ShutdownErr   error
	ListenCalls   atomic.Int32
	ShutdownCalls atomic.Int32
}

func (s *StubHTTPServer) ListenAndServe() error {
	s.ListenCalls.Add(1)
	return s.ListenErr
}

func (s *StubHTTPServer) Shutdown(context.Context) error {
	s.ShutdownCalls.Add(1)
	return s.ShutdownErr
}

func (s *StubHTTPServer) Addr() string          { return s.AddrVal }
func (s *StubHTTPServer) Handler() http.Handler { return s.HandlerVal }

// BlockingHTTPServer holds Shutdown until Unblock is closed or the context ends.
type BlockingHTTPServer struct {
	StubHTTPServer
	Unblock chan struct{}
}

func (b *BlockingHTTPServer) Shutdown(ctx context.Context) error {
	b.ShutdownCalls.Add(1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.Unblock:
		return nil
	}
}
