package ledger

import "github.com/shopspring/decimal"

// Wire types shared by the HTTP handlers and the HTTP ledger client.

// PurchaseRequest buys either one named square or Count squares picked by the ledger.
type PurchaseRequest struct {
	Square  *int            `json:"square,omitempty"`
	Count   int             `json:"count,omitempty"`
	Payment decimal.Decimal `json:"payment"`
}

type PurchaseResponse struct {
	Status  Status `json:"status"`
	Squares []int  `json:"squares"`
}

type FinalizeRequest struct {
	WinningSquares    []int `json:"winningSquares"`
	WinnerPercentages []int `json:"winnerPercentages"`
}

type TransfersResponse struct {
	GameID    string     `json:"gameId"`
	Transfers []Transfer `json:"transfers"`
}

// CallerHeader carries the identity of whoever issues a ledger write.
const CallerHeader = "X-Caller"
