package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/http/requestutil"
	"github.com/preston-bernstein/squares-service/internal/ledger"
	"github.com/preston-bernstein/squares-service/internal/logging"
)

const maxBodyBytes = 1 << 20

// LedgerService is the part of the ledger the HTTP surface exposes.
type LedgerService interface {
	CreateGame(ctx context.Context, in ledger.CreateGameInput) (ledger.Game, error)
	Status(ctx context.Context, id string) (ledger.Status, error)
	Tickets(ctx context.Context, id string) (ledger.Tickets, error)
	Transfers(ctx context.Context, id string) ([]ledger.Transfer, error)
	PurchaseSquare(ctx context.Context, id, buyer string, index int, payment decimal.Decimal) (ledger.Game, error)
	PurchaseTickets(ctx context.Context, id, buyer string, count int, payment decimal.Decimal) (ledger.Game, []int, error)
	Finalize(ctx context.Context, id, caller string, squares, percentages []int) (ledger.Game, error)
	Distribute(ctx context.Context, id, caller string) ([]ledger.Transfer, error)
	Refund(ctx context.Context, id, caller string) ([]ledger.Transfer, error)
}

// GamesHandler serves the ledger routes under /games.
type GamesHandler struct {
	ledger LedgerService
	logger *slog.Logger
}

func NewGamesHandler(l LedgerService, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{ledger: l, logger: logger}
}

// Create opens a new game. Mounted behind the admin guard.
func (h *GamesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in ledger.CreateGameInput
	if !h.decode(w, r, &in) {
		return
	}
	g, err := h.ledger.CreateGame(r.Context(), in)
	if err != nil {
		writeLedgerError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	writeJSON(w, http.StatusCreated, ledger.StatusOf(g), h.logger)
}

func (h *GamesHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.ledger.Status(r.Context(), gameID(r))
	if err != nil {
		writeLedgerError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	writeJSON(w, http.StatusOK, status, h.logger)
}

func (h *GamesHandler) Tickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.ledger.Tickets(r.Context(), gameID(r))
	if err != nil {
		writeLedgerError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	writeJSON(w, http.StatusOK, tickets, h.logger)
}

func (h *GamesHandler) Transfers(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	transfers, err := h.ledger.Transfers(r.Context(), id)
	if err != nil {
		writeLedgerError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	h.writeTransfers(w, id, transfers)
}

// Purchase buys one named square or count free squares for the caller.
func (h *GamesHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req ledger.PurchaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	id := gameID(r)

	var (
		g       ledger.Game
		squares []int
		err     error
	)
	if req.Square != nil {
		g, err = h.ledger.PurchaseSquare(r.Context(), id, caller, *req.Square, req.Payment)
		squares = []int{*req.Square}
	} else {
		g, squares, err = h.ledger.PurchaseTickets(r.Context(), id, caller, req.Count, req.Payment)
	}
	if err != nil {
		writeLedgerError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	writeJSON(w, http.StatusOK, ledger.PurchaseResponse{Status: ledger.StatusOf(g), Squares: squares}, h.logger)
}

func (h *GamesHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req ledger.FinalizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	g, err := h.ledger.Finalize(r.Context(), gameID(r), caller, req.WinningSquares, req.WinnerPercentages)
	if err != nil {
		writeLedgerError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	writeJSON(w, http.StatusOK, ledger.StatusOf(g), h.logger)
}

func (h *GamesHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	h.payout(w, r, h.ledger.Distribute)
}

func (h *GamesHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.payout(w, r, h.ledger.Refund)
}

func (h *GamesHandler) payout(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) ([]ledger.Transfer, error)) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	id := gameID(r)
	transfers, err := op(r.Context(), id, caller)
	if err != nil {
		writeLedgerError(w, r, err, loggerFromContext(r, h.logger))
		return
	}
	h.writeTransfers(w, id, transfers)
}

func (h *GamesHandler) writeTransfers(w http.ResponseWriter, id string, transfers []ledger.Transfer) {
	if transfers == nil {
		transfers = []ledger.Transfer{}
	}
	writeJSON(w, http.StatusOK, ledger.TransfersResponse{GameID: id, Transfers: transfers}, h.logger)
}

func (h *GamesHandler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := requestutil.Caller(r, ledger.CallerHeader)
	if caller == "" {
		writeError(w, r, http.StatusBadRequest, "missing_caller", "missing "+ledger.CallerHeader+" header", h.logger)
		return "", false
	}
	return caller, true
}

func (h *GamesHandler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		logging.Warn(loggerFromContext(r, h.logger), "invalid request body", "error", err)
		writeError(w, r, http.StatusBadRequest, "invalid_body", "invalid JSON body", h.logger)
		return false
	}
	return true
}

func gameID(r *http.Request) string {
	return mux.Vars(r)["id"]
}
