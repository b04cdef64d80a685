package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/logging"
	"github.com/preston-bernstein/squares-service/internal/metrics"
)

// SquarePicker chooses count squares from free (ascending). It is called with the game locked.
type SquarePicker func(free []int, count int) []int

// Options configures a Ledger.
type Options struct {
	Fees    Fees
	Picker  SquarePicker
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Ledger is the only writer of games. Each write loads the game under the repository's
// per-game exclusive section, runs a Decide function, and persists the result.
type Ledger struct {
	repo    Repository
	fees    Fees
	picker  SquarePicker
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	newID   func() string
}

func New(repo Repository, opts Options) *Ledger {
	picker := opts.Picker
	if picker == nil {
		picker = RandomPicker(nil)
	}
	return &Ledger{
		repo:    repo,
		fees:    opts.Fees,
		picker:  picker,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// RandomPicker picks uniformly among free squares. A nil rng is seeded from the clock.
func RandomPicker(rng *rand.Rand) SquarePicker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var mu sync.Mutex
	return func(free []int, count int) []int {
		mu.Lock()
		defer mu.Unlock()
		if count > len(free) {
			count = len(free)
		}
		out := make([]int, 0, count)
		for _, i := range rng.Perm(len(free))[:count] {
			out = append(out, free[i])
		}
		return out
	}
}

// CreateGameInput describes a new board.
type CreateGameInput struct {
	EventID            string          `json:"eventId"`
	Referee            string          `json:"referee"`
	Deployer           string          `json:"deployer"`
	SquarePrice        decimal.Decimal `json:"squarePrice"`
	DeployerFeePercent decimal.Decimal `json:"deployerFeePercent"`
}

func (l *Ledger) CreateGame(ctx context.Context, in CreateGameInput) (Game, error) {
	if _, err := ParseEventID(in.EventID); err != nil {
		return Game{}, fmt.Errorf("%w: %v", ErrInvalidGame, err)
	}
	if strings.TrimSpace(in.Referee) == "" {
		return Game{}, fmt.Errorf("%w: referee is required", ErrInvalidGame)
	}
	if !in.SquarePrice.IsPositive() {
		return Game{}, fmt.Errorf("%w: square price must be positive", ErrInvalidGame)
	}
	totalFee := in.DeployerFeePercent.Add(l.fees.CommunityPercent)
	if in.DeployerFeePercent.IsNegative() || totalFee.GreaterThanOrEqual(hundred) {
		return Game{}, fmt.Errorf("%w: fees must leave a positive prize pool", ErrInvalidGame)
	}
	deployer := in.Deployer
	if deployer == "" {
		deployer = in.Referee
	}

	g := Game{
		ID:                 l.newID(),
		EventID:            in.EventID,
		Referee:            in.Referee,
		Deployer:           deployer,
		SquarePrice:        in.SquarePrice,
		DeployerFeePercent: in.DeployerFeePercent,
		Active:             true,
		CreatedAt:          l.now().UTC(),
	}
	if err := l.repo.Create(ctx, g); err != nil {
		return Game{}, err
	}
	logging.Info(logging.FromContext(ctx, l.logger), "game created",
		logging.FieldGameID, g.ID,
		"event_id", g.EventID,
		logging.FieldCaller, g.Referee,
	)
	return g, nil
}

func (l *Ledger) Game(ctx context.Context, id string) (Game, error) {
	return l.repo.Get(ctx, id)
}

func (l *Ledger) Status(ctx context.Context, id string) (Status, error) {
	g, err := l.repo.Get(ctx, id)
	if err != nil {
		return Status{}, err
	}
	return StatusOf(g), nil
}

func (l *Ledger) Tickets(ctx context.Context, id string) (Tickets, error) {
	g, err := l.repo.Get(ctx, id)
	if err != nil {
		return Tickets{}, err
	}
	return TicketsOf(g), nil
}

func (l *Ledger) Transfers(ctx context.Context, id string) ([]Transfer, error) {
	return l.repo.Transfers(ctx, id)
}

// PurchaseSquare buys one specific square.
func (l *Ledger) PurchaseSquare(ctx context.Context, id, buyer string, index int, payment decimal.Decimal) (Game, error) {
	g, _, err := l.write(ctx, OpPurchase, id, buyer, func(g Game) (Game, []Transfer, error) {
		next, err := DecidePurchase(g, buyer, []int{index}, payment)
		return next, nil, err
	})
	return g, err
}

// PurchaseTickets buys count squares chosen by the picker and returns which ones.
func (l *Ledger) PurchaseTickets(ctx context.Context, id, buyer string, count int, payment decimal.Decimal) (Game, []int, error) {
	var picked []int
	g, _, err := l.write(ctx, OpPurchase, id, buyer, func(g Game) (Game, []Transfer, error) {
		if err := purchasable(g); err != nil {
			return Game{}, nil, reject(OpPurchase, g, err)
		}
		free := g.FreeSquares()
		if count <= 0 || count > len(free) {
			return Game{}, nil, reject(OpPurchase, g, ErrInvalidCount)
		}
		picked = l.picker(free, count)
		next, err := DecidePurchase(g, buyer, picked, payment)
		return next, nil, err
	})
	if err != nil {
		return Game{}, nil, err
	}
	return g, picked, nil
}

func (l *Ledger) Finalize(ctx context.Context, id, caller string, squares, percentages []int) (Game, error) {
	g, _, err := l.write(ctx, OpFinalize, id, caller, func(g Game) (Game, []Transfer, error) {
		next, err := DecideFinalize(g, caller, squares, percentages)
		return next, nil, err
	})
	return g, err
}

// Distribute pays a finalized game. Anyone may trigger it; a second call is rejected.
func (l *Ledger) Distribute(ctx context.Context, id, caller string) ([]Transfer, error) {
	_, transfers, err := l.write(ctx, OpDistribute, id, caller, func(g Game) (Game, []Transfer, error) {
		return DecideDistribute(g, l.fees)
	})
	return transfers, err
}

func (l *Ledger) Refund(ctx context.Context, id, caller string) ([]Transfer, error) {
	_, transfers, err := l.write(ctx, OpRefund, id, caller, func(g Game) (Game, []Transfer, error) {
		return DecideRefund(g, caller)
	})
	return transfers, err
}

func (l *Ledger) write(ctx context.Context, op, id, caller string, fn UpdateFunc) (Game, []Transfer, error) {
	now := l.now().UTC()
	g, transfers, err := l.repo.Update(ctx, id, func(g Game) (Game, []Transfer, error) {
		next, transfers, err := fn(g)
		for i := range transfers {
			transfers[i].CreatedAt = now
		}
		return next, transfers, err
	})
	l.metrics.RecordLedgerOp(op, err)

	logger := logging.FromContext(ctx, l.logger)
	if err != nil {
		if pe, ok := AsPreconditionError(err); ok {
			logging.Warn(logger, "ledger write rejected",
				"op", op,
				logging.FieldGameID, id,
				logging.FieldCaller, caller,
				"reason", pe.Code(),
			)
		} else {
			logging.Error(logger, "ledger write failed", err, "op", op, logging.FieldGameID, id)
		}
		return Game{}, nil, err
	}
	logging.Info(logger, "ledger write",
		"op", op,
		logging.FieldGameID, id,
		logging.FieldCaller, caller,
		"state", string(g.State()),
		logging.FieldCount, len(transfers),
	)
	return g, transfers, nil
}
