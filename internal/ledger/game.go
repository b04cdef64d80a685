package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// GridSize is the number of squares on a board.
	GridSize = 25
	// AxisSize is the number of buckets on each score axis.
	AxisSize = 5
)

// State is the settlement phase derived from a Game.
type State string

const (
	StateOpen     State = "open"
	StateFull     State = "full"
	StateSettled  State = "settled"
	StateRefunded State = "refunded"
)

// Game is the durable record of one board.
type Game struct {
	ID                 string
	EventID            string
	Referee            string
	Deployer           string
	SquarePrice        decimal.Decimal
	DeployerFeePercent decimal.Decimal
	Active             bool
	Owners             [GridSize]string
	WinningSquares     []int
	WinnerPercentages  []int
	PrizeClaimed       bool
	Refunded           bool
	CreatedAt          time.Time
}

// TicketsSold counts owned squares.
func (g Game) TicketsSold() int {
	n := 0
	for _, owner := range g.Owners {
		if owner != "" {
			n++
		}
	}
	return n
}

// State derives the tagged settlement state. Refunded and Settled are terminal.
func (g Game) State() State {
	switch {
	case g.Refunded:
		return StateRefunded
	case g.PrizeClaimed:
		return StateSettled
	case g.TicketsSold() == GridSize:
		return StateFull
	}
	return StateOpen
}

// Finalized reports whether the referee has set winning squares.
func (g Game) Finalized() bool {
	return len(g.WinningSquares) > 0
}

// PrizePool is the amount currently held: price times squares sold.
func (g Game) PrizePool() decimal.Decimal {
	return g.SquarePrice.Mul(decimal.NewFromInt(int64(g.TicketsSold())))
}

// FreeSquares lists unowned indices in ascending order.
func (g Game) FreeSquares() []int {
	free := make([]int, 0, GridSize)
	for i, owner := range g.Owners {
		if owner == "" {
			free = append(free, i)
		}
	}
	return free
}

func (g Game) clone() Game {
	out := g
	out.WinningSquares = append([]int(nil), g.WinningSquares...)
	out.WinnerPercentages = append([]int(nil), g.WinnerPercentages...)
	return out
}

// Status is the read view of a game.
type Status struct {
	ID                string          `json:"id"`
	EventID           string          `json:"eventId"`
	State             State           `json:"state"`
	Active            bool            `json:"active"`
	Referee           string          `json:"referee"`
	SquarePrice       decimal.Decimal `json:"squarePrice"`
	TicketsSold       int             `json:"ticketsSold"`
	PrizePool         decimal.Decimal `json:"prizePool"`
	WinningSquares    []int           `json:"winningSquares"`
	WinnerPercentages []int           `json:"winnerPercentages"`
	PrizeClaimed      bool            `json:"prizeClaimed"`
	Refunded          bool            `json:"refunded"`
}

// StatusOf builds the read view for g.
func StatusOf(g Game) Status {
	return Status{
		ID:                g.ID,
		EventID:           g.EventID,
		State:             g.State(),
		Active:            g.Active,
		Referee:           g.Referee,
		SquarePrice:       g.SquarePrice,
		TicketsSold:       g.TicketsSold(),
		PrizePool:         g.PrizePool(),
		WinningSquares:    nonNil(g.WinningSquares),
		WinnerPercentages: nonNil(g.WinnerPercentages),
		PrizeClaimed:      g.PrizeClaimed,
		Refunded:          g.Refunded,
	}
}

// Tickets lists owned squares in index order with their owners.
type Tickets struct {
	SquareIndexes []int    `json:"squareIndexes"`
	Owners        []string `json:"owners"`
}

// TicketsOf builds the ticket view for g.
func TicketsOf(g Game) Tickets {
	t := Tickets{SquareIndexes: []int{}, Owners: []string{}}
	for i, owner := range g.Owners {
		if owner != "" {
			t.SquareIndexes = append(t.SquareIndexes, i)
			t.Owners = append(t.Owners, owner)
		}
	}
	return t
}

// Transfer is one payment out of the pool.
type Transfer struct {
	GameID    string          `json:"gameId" db:"game_id"`
	Recipient string          `json:"recipient" db:"recipient"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Reason    string          `json:"reason" db:"reason"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

const (
	ReasonPrize        = "prize"
	ReasonDeployerFee  = "deployer_fee"
	ReasonCommunityFee = "community_fee"
	ReasonRemainder    = "remainder"
	ReasonRefund       = "refund"
)

func nonNil(in []int) []int {
	if in == nil {
		return []int{}
	}
	return append([]int(nil), in...)
}
