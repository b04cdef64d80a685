package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/squares-service/internal/logging"
)

var errInvalidJSON = errors.New("response body is not valid JSON")

// Options bound a single Fetch call. Zero values fall back to package defaults.
type Options struct {
	Retries int           // total attempts
	Timeout time.Duration // per attempt
	Backoff time.Duration // base delay before the second attempt, doubled afterwards
	Jitter  time.Duration // upper bound of the random delay added to each wait; negative disables
	Logger  *slog.Logger

	// OnAttempt observes every attempt (used for metrics).
	OnAttempt func(attempt int, took time.Duration, err error)

	rng *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.Retries <= 0 {
		o.Retries = defaultRetries
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Backoff <= 0 {
		o.Backoff = defaultBackoff
	}
	if o.Jitter == 0 {
		o.Jitter = defaultMaxJitter
	}
	if o.Jitter < 0 {
		o.Jitter = 0
	}
	return o
}

// Fetch GETs url and returns the JSON body. Each attempt is bounded by opts.Timeout; failed
// attempts (transport error, timeout, non-2xx, invalid JSON) are retried with doubling backoff
// plus jitter until opts.Retries attempts are spent. The final error is a *NetworkError.
func Fetch(ctx context.Context, doer httpDoer, url string, opts Options) (json.RawMessage, error) {
	opts = opts.withDefaults()
	doer = resolveHTTPClient(doer)

	var (
		body       json.RawMessage
		attempts   int
		lastStatus int
	)

	operation := func() error {
		attempts++
		start := time.Now()
		payload, status, err := fetchOnce(ctx, doer, url, opts.Timeout)
		lastStatus = status
		if opts.OnAttempt != nil {
			opts.OnAttempt(attempts, time.Since(start), err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		body = payload
		return nil
	}

	schedule := backoff.WithContext(
		backoff.WithMaxRetries(newDoublingBackOff(opts.Backoff, opts.Jitter, opts.rng), uint64(opts.Retries-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		logging.WarnContext(ctx, opts.Logger, "feed fetch retry", err,
			logging.FieldURL, url,
			logging.FieldAttempt, attempts,
			"max_attempts", opts.Retries,
			"wait_ms", wait.Milliseconds(),
		)
	}

	if err := backoff.RetryNotify(operation, schedule, notify); err != nil {
		return nil, &NetworkError{URL: url, StatusCode: lastStatus, Attempts: attempts, Err: err}
	}
	return body, nil
}

func fetchOnce(ctx context.Context, doer httpDoer, url string, timeout time.Duration) (json.RawMessage, int, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doer.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if !json.Valid(payload) {
		return nil, resp.StatusCode, errInvalidJSON
	}
	return json.RawMessage(payload), resp.StatusCode, nil
}
