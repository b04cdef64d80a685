package feed

import "time"

const (
	defaultRetries   = 3
	defaultTimeout   = 8 * time.Second
	defaultBackoff   = 500 * time.Millisecond
	defaultMaxJitter = 200 * time.Millisecond
	maxErrorBody     = 512
)
