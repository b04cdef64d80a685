package ledger

import (
	"errors"
	"fmt"
)

// Precondition reasons. Every rejected write wraps exactly one of these.
var (
	ErrNotReferee         = errors.New("caller is not the referee")
	ErrInactive           = errors.New("game is not active")
	ErrSoldOut            = errors.New("all squares are sold")
	ErrSquareTaken        = errors.New("square already owned")
	ErrInvalidCount       = errors.New("ticket count out of range")
	ErrWrongPayment       = errors.New("payment does not match square price")
	ErrNotFull            = errors.New("game is not full")
	ErrAlreadyFinalized   = errors.New("winning squares already set")
	ErrAlreadySettled     = errors.New("game already settled or refunded")
	ErrRefundWhenFull     = errors.New("cannot refund a full game")
	ErrInvalidSquares     = errors.New("winning squares must be 1 or 2 indices in 0..24")
	ErrInvalidPercentages = errors.New("winner percentages must match squares, be positive and sum to at most 100")
	ErrAmbiguousSquares   = errors.New("halftime and final squares are identical, pick a single square")
	ErrNotMonotonic       = errors.New("final square must not be below halftime on either axis")
	ErrNotFinalized       = errors.New("winning squares not set")
)

// Non-precondition failures.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrInvalidGame  = errors.New("invalid game")
)

var reasonCodes = map[error]string{
	ErrNotReferee:         "not_referee",
	ErrInactive:           "inactive",
	ErrSoldOut:            "sold_out",
	ErrSquareTaken:        "square_taken",
	ErrInvalidCount:       "invalid_count",
	ErrWrongPayment:       "wrong_payment",
	ErrNotFull:            "not_full",
	ErrAlreadyFinalized:   "already_finalized",
	ErrAlreadySettled:     "already_settled",
	ErrRefundWhenFull:     "refund_when_full",
	ErrInvalidSquares:     "invalid_squares",
	ErrInvalidPercentages: "invalid_percentages",
	ErrAmbiguousSquares:   "ambiguous_squares",
	ErrNotMonotonic:       "not_monotonic",
	ErrNotFinalized:       "not_finalized",
}

// PreconditionError reports a write the ledger refused. The game is unchanged.
type PreconditionError struct {
	Op     string
	GameID string
	Reason error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s %s rejected: %v", e.Op, e.GameID, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return e.Reason }

// Code is a stable machine-readable name for the reason.
func (e *PreconditionError) Code() string {
	if code, ok := reasonCodes[e.Reason]; ok {
		return code
	}
	return "precondition_failed"
}

// IsAuthorization reports whether the rejection is about who called, not game state.
func (e *PreconditionError) IsAuthorization() bool {
	return errors.Is(e.Reason, ErrNotReferee)
}

// AsPreconditionError attempts to unwrap an error into a PreconditionError.
func AsPreconditionError(err error) (*PreconditionError, bool) {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func reject(op string, g Game, reason error) error {
	return &PreconditionError{Op: op, GameID: g.ID, Reason: reason}
}
