package feed

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"testing"
	"time"
)

func fastOptions(retries int) Options {
	return Options{Retries: retries, Timeout: time.Second, Backoff: time.Millisecond, Jitter: -1}
}

func TestFetchReturnsBodyOnFirstSuccess(t *testing.T) {
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if req.Header.Get("Accept") != "application/json" {
			t.Fatalf("expected json accept header")
		}
		return jsonResponse(http.StatusOK, `{"events":[]}`), nil
	})

	body, err := Fetch(context.Background(), client, "http://feed.test/x", fastOptions(3))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if string(body) != `{"events":[]}` {
		t.Fatalf("unexpected body %s", body)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestFetchRetriesUntilSuccess(t *testing.T) {
	calls := 0
	var seen []int
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection reset")
		}
		return jsonResponse(http.StatusOK, `{}`), nil
	})
	opts := fastOptions(3)
	opts.OnAttempt = func(attempt int, _ time.Duration, _ error) { seen = append(seen, attempt) }

	if _, err := Fetch(context.Background(), client, "http://feed.test/x", opts); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(seen) != 3 || seen[2] != 3 {
		t.Fatalf("expected attempts 1..3 observed, got %v", seen)
	}
}

func TestFetchReturnsNetworkErrorAfterRetries(t *testing.T) {
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusBadGateway, "upstream down"), nil
	})

	_, err := Fetch(context.Background(), client, "http://feed.test/x", fastOptions(2))
	netErr, ok := AsNetworkError(err)
	if !ok {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Attempts != 2 || calls != 2 {
		t.Fatalf("expected 2 attempts, got attempts=%d calls=%d", netErr.Attempts, calls)
	}
	if netErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected last status 502, got %d", netErr.StatusCode)
	}
}

func TestFetchTreatsInvalidJSONAsFailure(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "<html>"), nil
	})

	_, err := Fetch(context.Background(), client, "http://feed.test/x", fastOptions(1))
	if !errors.Is(err, errInvalidJSON) {
		t.Fatalf("expected invalid json error, got %v", err)
	}
}

func TestFetchStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		return nil, req.Context().Err()
	})

	_, err := Fetch(ctx, client, "http://feed.test/x", fastOptions(5))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if calls > 1 {
		t.Fatalf("expected no retries after cancel, got %d calls", calls)
	}
}

func TestFetchAppliesPerAttemptTimeout(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})
	opts := fastOptions(2)
	opts.Timeout = 5 * time.Millisecond

	start := time.Now()
	_, err := Fetch(context.Background(), client, "http://feed.test/x", opts)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("expected attempts to be bounded by timeout")
	}
}

func TestDoublingBackOffFollowsFormula(t *testing.T) {
	const seed = 7
	b := newDoublingBackOff(100*time.Millisecond, 200*time.Millisecond, rand.New(rand.NewSource(seed)))
	ref := rand.New(rand.NewSource(seed))

	for n := 1; n <= 4; n++ {
		want := 100*time.Millisecond<<(n-1) + time.Duration(ref.Int63n(int64(200*time.Millisecond)))
		if got := b.NextBackOff(); got != want {
			t.Fatalf("retry %d: expected %s, got %s", n, want, got)
		}
	}

	b.Reset()
	first := b.NextBackOff()
	if first < 100*time.Millisecond || first >= 300*time.Millisecond {
		t.Fatalf("expected reset to restart at base, got %s", first)
	}
}

func TestDoublingBackOffWithoutJitter(t *testing.T) {
	b := newDoublingBackOff(50*time.Millisecond, 0, nil)
	if got := b.NextBackOff(); got != 50*time.Millisecond {
		t.Fatalf("expected 50ms, got %s", got)
	}
	if got := b.NextBackOff(); got != 100*time.Millisecond {
		t.Fatalf("expected 100ms, got %s", got)
	}
}
