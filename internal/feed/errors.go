package feed

import (
	"errors"
	"fmt"
)

// NetworkError reports a scoreboard fetch that failed after all retries.
type NetworkError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *NetworkError) Error() string {
	msg := "feed fetch failed"
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DataShapeError reports a feed response missing a field the mapper needs.
type DataShapeError struct {
	Competition string
	Field       string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("feed %s: missing or malformed %s", e.Competition, e.Field)
}

// AsNetworkError attempts to unwrap an error into a NetworkError.
func AsNetworkError(err error) (*NetworkError, bool) {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr, true
	}
	return nil, false
}

// AsDataShapeError attempts to unwrap an error into a DataShapeError.
func AsDataShapeError(err error) (*DataShapeError, bool) {
	var shapeErr *DataShapeError
	if errors.As(err, &shapeErr) {
		return shapeErr, true
	}
	return nil, false
}
