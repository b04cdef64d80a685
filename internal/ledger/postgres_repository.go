package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Schema creates the ledger tables when they are missing.
const Schema = `
CREATE TABLE IF NOT EXISTS squares_games (
	id                   TEXT PRIMARY KEY,
	event_id             TEXT NOT NULL,
	referee              TEXT NOT NULL,
	deployer             TEXT NOT NULL,
	square_price         NUMERIC(36, 8) NOT NULL,
	deployer_fee_percent NUMERIC(5, 2) NOT NULL,
	active               BOOLEAN NOT NULL DEFAULT TRUE,
	winning_squares      INTEGER[] NOT NULL DEFAULT '{}',
	winner_percentages   INTEGER[] NOT NULL DEFAULT '{}',
	prize_claimed        BOOLEAN NOT NULL DEFAULT FALSE,
	refunded             BOOLEAN NOT NULL DEFAULT FALSE,
	created_at           TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS squares_tickets (
	game_id      TEXT NOT NULL REFERENCES squares_games(id),
	square_index INTEGER NOT NULL CHECK (square_index BETWEEN 0 AND 24),
	owner        TEXT NOT NULL,
	PRIMARY KEY (game_id, square_index)
);
CREATE TABLE IF NOT EXISTS squares_transfers (
	id         BIGSERIAL PRIMARY KEY,
	game_id    TEXT NOT NULL REFERENCES squares_games(id),
	recipient  TEXT NOT NULL,
	amount     NUMERIC(36, 8) NOT NULL,
	reason     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

const (
	selectGameSQL = `SELECT id, event_id, referee, deployer, square_price, deployer_fee_percent, active,
	winning_squares, winner_percentages, prize_claimed, refunded, created_at
	FROM squares_games WHERE id = $1`
	selectTicketsSQL   = `SELECT square_index, owner FROM squares_tickets WHERE game_id = $1 ORDER BY square_index`
	selectTransfersSQL = `SELECT game_id, recipient, amount, reason, created_at FROM squares_transfers WHERE game_id = $1 ORDER BY id`
	countGameSQL       = `SELECT COUNT(1) FROM squares_games WHERE id = $1`
	insertGameSQL      = `INSERT INTO squares_games (id, event_id, referee, deployer, square_price, deployer_fee_percent,
	active, winning_squares, winner_percentages, prize_claimed, refunded, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	insertTicketSQL = `INSERT INTO squares_tickets (game_id, square_index, owner) VALUES ($1, $2, $3)`
	updateGameSQL   = `UPDATE squares_games SET active = $2, winning_squares = $3, winner_percentages = $4,
	prize_claimed = $5, refunded = $6 WHERE id = $1`
	insertTransferSQL = `INSERT INTO squares_transfers (game_id, recipient, amount, reason, created_at)
	VALUES ($1, $2, $3, $4, $5)`
)

const pqUniqueViolation = "23505"

type gameRow struct {
	ID                 string          `db:"id"`
	EventID            string          `db:"event_id"`
	Referee            string          `db:"referee"`
	Deployer           string          `db:"deployer"`
	SquarePrice        decimal.Decimal `db:"square_price"`
	DeployerFeePercent decimal.Decimal `db:"deployer_fee_percent"`
	Active             bool            `db:"active"`
	WinningSquares     pq.Int64Array   `db:"winning_squares"`
	WinnerPercentages  pq.Int64Array   `db:"winner_percentages"`
	PrizeClaimed       bool            `db:"prize_claimed"`
	Refunded           bool            `db:"refunded"`
	CreatedAt          time.Time       `db:"created_at"`
}

type ticketRow struct {
	SquareIndex int    `db:"square_index"`
	Owner       string `db:"owner"`
}

// PostgresRepository stores games in Postgres. Update holds a row lock on the game
// (SELECT ... FOR UPDATE) for the duration of the transaction.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

// OpenPostgres connects with the lib/pq driver and pings the server.
func OpenPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema applies Schema.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, Schema)
	return err
}

func (r *PostgresRepository) Create(ctx context.Context, g Game) error {
	_, err := r.db.ExecContext(ctx, insertGameSQL,
		g.ID, g.EventID, g.Referee, g.Deployer, g.SquarePrice, g.DeployerFeePercent,
		g.Active, toInt64Array(g.WinningSquares), toInt64Array(g.WinnerPercentages),
		g.PrizeClaimed, g.Refunded, g.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrGameExists
	}
	return err
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Game, error) {
	return loadGame(ctx, r.db, id, false)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, fn UpdateFunc) (Game, []Transfer, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return Game{}, nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	current, err := loadGame(ctx, tx, id, true)
	if err != nil {
		return Game{}, nil, err
	}
	next, transfers, err := fn(current.clone())
	if err != nil {
		return Game{}, nil, err
	}

	for idx, owner := range next.Owners {
		if owner == "" || current.Owners[idx] == owner {
			continue
		}
		if _, err := tx.ExecContext(ctx, insertTicketSQL, id, idx, owner); err != nil {
			return Game{}, nil, fmt.Errorf("insert ticket %d: %w", idx, err)
		}
	}
	if _, err := tx.ExecContext(ctx, updateGameSQL, id, next.Active,
		toInt64Array(next.WinningSquares), toInt64Array(next.WinnerPercentages),
		next.PrizeClaimed, next.Refunded,
	); err != nil {
		return Game{}, nil, fmt.Errorf("update game: %w", err)
	}
	for _, t := range transfers {
		if _, err := tx.ExecContext(ctx, insertTransferSQL, id, t.Recipient, t.Amount, t.Reason, t.CreatedAt); err != nil {
			return Game{}, nil, fmt.Errorf("insert transfer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Game{}, nil, err
	}
	committed = true
	return next, transfers, nil
}

func (r *PostgresRepository) Transfers(ctx context.Context, id string) ([]Transfer, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, countGameSQL, id); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrGameNotFound
	}
	out := []Transfer{}
	if err := r.db.SelectContext(ctx, &out, selectTransfersSQL, id); err != nil {
		return nil, err
	}
	return out, nil
}

func loadGame(ctx context.Context, q sqlx.QueryerContext, id string, forUpdate bool) (Game, error) {
	query := selectGameSQL
	if forUpdate {
		query += " FOR UPDATE"
	}

	var row gameRow
	if err := sqlx.GetContext(ctx, q, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Game{}, ErrGameNotFound
		}
		return Game{}, err
	}
	var tickets []ticketRow
	if err := sqlx.SelectContext(ctx, q, &tickets, selectTicketsSQL, id); err != nil {
		return Game{}, err
	}

	g := Game{
		ID:                 row.ID,
		EventID:            row.EventID,
		Referee:            row.Referee,
		Deployer:           row.Deployer,
		SquarePrice:        row.SquarePrice,
		DeployerFeePercent: row.DeployerFeePercent,
		Active:             row.Active,
		WinningSquares:     fromInt64Array(row.WinningSquares),
		WinnerPercentages:  fromInt64Array(row.WinnerPercentages),
		PrizeClaimed:       row.PrizeClaimed,
		Refunded:           row.Refunded,
		CreatedAt:          row.CreatedAt,
	}
	for _, t := range tickets {
		if validSquare(t.SquareIndex) {
			g.Owners[t.SquareIndex] = t.Owner
		}
	}
	return g, nil
}

func toInt64Array(in []int) pq.Int64Array {
	out := make(pq.Int64Array, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func fromInt64Array(in pq.Int64Array) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
