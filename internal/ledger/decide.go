package ledger

import (
	"github.com/shopspring/decimal"
)

// Operation names used in rejections and metrics.
const (
	OpPurchase   = "purchase"
	OpFinalize   = "finalize"
	OpDistribute = "distribute"
	OpRefund     = "refund"
)

// The Decide functions are pure: they validate every precondition against g and return
// the next state without touching storage. A non-nil error means nothing may be written.

// DecidePurchase assigns squares to buyer when all are free and payment covers them exactly.
func DecidePurchase(g Game, buyer string, squares []int, payment decimal.Decimal) (Game, error) {
	if err := purchasable(g); err != nil {
		return Game{}, reject(OpPurchase, g, err)
	}
	if len(squares) == 0 || len(squares) > GridSize-g.TicketsSold() {
		return Game{}, reject(OpPurchase, g, ErrInvalidCount)
	}

	seen := make(map[int]struct{}, len(squares))
	for _, idx := range squares {
		if !validSquare(idx) {
			return Game{}, reject(OpPurchase, g, ErrInvalidSquares)
		}
		if _, dup := seen[idx]; dup || g.Owners[idx] != "" {
			return Game{}, reject(OpPurchase, g, ErrSquareTaken)
		}
		seen[idx] = struct{}{}
	}

	due := g.SquarePrice.Mul(decimal.NewFromInt(int64(len(squares))))
	if !payment.Equal(due) {
		return Game{}, reject(OpPurchase, g, ErrWrongPayment)
	}

	next := g.clone()
	for _, idx := range squares {
		next.Owners[idx] = buyer
	}
	return next, nil
}

func purchasable(g Game) error {
	switch {
	case g.Refunded, g.PrizeClaimed, !g.Active:
		return ErrInactive
	case g.TicketsSold() >= GridSize:
		return ErrSoldOut
	}
	return nil
}

// DecideFinalize records the winning squares and their share of the post-fee pool.
// With two squares the first is halftime and the second final; final must not fall below
// halftime on either axis and the two must differ.
func DecideFinalize(g Game, caller string, squares, percentages []int) (Game, error) {
	switch {
	case caller != g.Referee:
		return Game{}, reject(OpFinalize, g, ErrNotReferee)
	case g.Refunded, g.PrizeClaimed:
		return Game{}, reject(OpFinalize, g, ErrAlreadySettled)
	case g.Finalized():
		return Game{}, reject(OpFinalize, g, ErrAlreadyFinalized)
	case g.TicketsSold() < GridSize:
		return Game{}, reject(OpFinalize, g, ErrNotFull)
	}

	if len(squares) < 1 || len(squares) > 2 {
		return Game{}, reject(OpFinalize, g, ErrInvalidSquares)
	}
	for _, idx := range squares {
		if !validSquare(idx) {
			return Game{}, reject(OpFinalize, g, ErrInvalidSquares)
		}
	}
	if !validPercentages(squares, percentages) {
		return Game{}, reject(OpFinalize, g, ErrInvalidPercentages)
	}
	if len(squares) == 2 {
		if squares[0] == squares[1] {
			return Game{}, reject(OpFinalize, g, ErrAmbiguousSquares)
		}
		htHome, htAway := DecodeSquare(squares[0])
		ftHome, ftAway := DecodeSquare(squares[1])
		if ftHome < htHome || ftAway < htAway {
			return Game{}, reject(OpFinalize, g, ErrNotMonotonic)
		}
	}

	next := g.clone()
	next.WinningSquares = append([]int(nil), squares...)
	next.WinnerPercentages = append([]int(nil), percentages...)
	return next, nil
}

func validPercentages(squares, percentages []int) bool {
	if len(percentages) != len(squares) {
		return false
	}
	total := 0
	for _, p := range percentages {
		if p <= 0 {
			return false
		}
		total += p
	}
	return total <= 100
}

// DecideDistribute pays out a finalized game and marks the prize claimed.
func DecideDistribute(g Game, fees Fees) (Game, []Transfer, error) {
	switch {
	case g.Refunded, g.PrizeClaimed:
		return Game{}, nil, reject(OpDistribute, g, ErrAlreadySettled)
	case !g.Finalized():
		return Game{}, nil, reject(OpDistribute, g, ErrNotFinalized)
	}

	next := g.clone()
	next.PrizeClaimed = true
	next.Active = false
	return next, Payouts(g, fees), nil
}

// DecideRefund returns every holder's payment, without fees, for a game that never filled.
func DecideRefund(g Game, caller string) (Game, []Transfer, error) {
	switch {
	case caller != g.Referee:
		return Game{}, nil, reject(OpRefund, g, ErrNotReferee)
	case g.Refunded, g.PrizeClaimed:
		return Game{}, nil, reject(OpRefund, g, ErrAlreadySettled)
	case g.TicketsSold() >= GridSize:
		return Game{}, nil, reject(OpRefund, g, ErrRefundWhenFull)
	}

	next := g.clone()
	next.Refunded = true
	next.Active = false
	return next, Refunds(g), nil
}
