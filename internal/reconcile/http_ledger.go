package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/squares-service/internal/ledger"
)

const defaultLedgerTimeout = 8 * time.Second

// RejectionError is a non-2xx answer from the ledger API, surfaced as-is.
type RejectionError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *RejectionError) Error() string {
	msg := fmt.Sprintf("ledger rejected request (status=%d", e.StatusCode)
	if e.Code != "" {
		msg += ", code=" + e.Code
	}
	msg += ")"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// AsRejectionError attempts to unwrap an error into a RejectionError.
func AsRejectionError(err error) (*RejectionError, bool) {
	var re *RejectionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// Hint adds a human hint for authorization failures and returns "" for everything else.
func Hint(err error) string {
	re, ok := AsRejectionError(err)
	if !ok {
		return ""
	}
	if re.StatusCode == http.StatusForbidden || re.StatusCode == http.StatusUnauthorized || re.Code == "not_referee" {
		return "only the game's referee can do this; check the caller identity you are using"
	}
	return ""
}

// HTTPLedger talks to the ledger routes of the server.
type HTTPLedger struct {
	baseURL string
	client  *http.Client
}

// NewHTTPLedger builds a client for baseURL. A nil client gets an 8s timeout.
func NewHTTPLedger(baseURL string, client *http.Client) *HTTPLedger {
	if client == nil {
		client = &http.Client{Timeout: defaultLedgerTimeout}
	}
	return &HTTPLedger{baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"), client: client}
}

var (
	_ LedgerReader = (*HTTPLedger)(nil)
	_ LedgerWriter = (*HTTPLedger)(nil)
)

func (l *HTTPLedger) Status(ctx context.Context, gameID string) (ledger.Status, error) {
	var out ledger.Status
	err := l.do(ctx, http.MethodGet, l.gamePath(gameID, ""), "", nil, &out)
	return out, err
}

func (l *HTTPLedger) Tickets(ctx context.Context, gameID string) (ledger.Tickets, error) {
	var out ledger.Tickets
	err := l.do(ctx, http.MethodGet, l.gamePath(gameID, "/tickets"), "", nil, &out)
	return out, err
}

func (l *HTTPLedger) PurchaseTickets(ctx context.Context, gameID, buyer string, count int, payment decimal.Decimal) ([]int, error) {
	var out ledger.PurchaseResponse
	req := ledger.PurchaseRequest{Count: count, Payment: payment}
	if err := l.do(ctx, http.MethodPost, l.gamePath(gameID, "/tickets"), buyer, req, &out); err != nil {
		return nil, err
	}
	return out.Squares, nil
}

func (l *HTTPLedger) Finalize(ctx context.Context, gameID, caller string, squares, percentages []int) error {
	req := ledger.FinalizeRequest{WinningSquares: squares, WinnerPercentages: percentages}
	return l.do(ctx, http.MethodPost, l.gamePath(gameID, "/finalize"), caller, req, nil)
}

func (l *HTTPLedger) Distribute(ctx context.Context, gameID, caller string) ([]ledger.Transfer, error) {
	var out ledger.TransfersResponse
	err := l.do(ctx, http.MethodPost, l.gamePath(gameID, "/distribute"), caller, nil, &out)
	return out.Transfers, err
}

func (l *HTTPLedger) Refund(ctx context.Context, gameID, caller string) ([]ledger.Transfer, error) {
	var out ledger.TransfersResponse
	err := l.do(ctx, http.MethodPost, l.gamePath(gameID, "/refund"), caller, nil, &out)
	return out.Transfers, err
}

func (l *HTTPLedger) gamePath(gameID, suffix string) string {
	return l.baseURL + "/games/" + url.PathEscape(gameID) + suffix
}

func (l *HTTPLedger) do(ctx context.Context, method, target, caller string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set(ledger.CallerHeader, caller)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeRejection(resp)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, target, err)
	}
	return nil
}

func decodeRejection(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	rej := &RejectionError{StatusCode: resp.StatusCode}
	var body struct {
		Error     string `json:"error"`
		Code      string `json:"code"`
		RequestID string `json:"requestId"`
	}
	if json.Unmarshal(raw, &body) == nil {
		rej.Message, rej.Code, rej.RequestID = body.Error, body.Code, body.RequestID
	} else {
		rej.Message = strings.TrimSpace(string(raw))
	}
	return rej
}
