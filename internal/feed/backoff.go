package feed

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// doublingBackOff yields base*2^(n-1) plus uniform jitter in [0, maxJitter) for the n-th retry.
type doublingBackOff struct {
	base      time.Duration
	maxJitter time.Duration

	mu      sync.Mutex
	rng     *rand.Rand
	attempt int
}

var _ backoff.BackOff = (*doublingBackOff)(nil)

func newDoublingBackOff(base, maxJitter time.Duration, rng *rand.Rand) *doublingBackOff {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &doublingBackOff{base: base, maxJitter: maxJitter, rng: rng}
}

func (b *doublingBackOff) NextBackOff() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempt++
	delay := b.base << (b.attempt - 1)
	if b.maxJitter > 0 {
		delay += time.Duration(b.rng.Int63n(int64(b.maxJitter)))
	}
	return delay
}

func (b *doublingBackOff) Reset() {
	b.mu.Lock()
	b.attempt = 0
	b.mu.Unlock()
}
