package reconcile

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultActivityLimit = 100

// Kind classifies an activity entry.
type Kind string

const (
	KindTickets   Kind = "tickets"
	KindSoldOut   Kind = "sold_out"
	KindWinners   Kind = "winners"
	KindSettled   Kind = "settled"
	KindRefunded  Kind = "refunded"
	KindMatch     Kind = "match"
	KindTransient Kind = "transient_error"
)

// Notification is a local activity entry synthesized from ledger diffs.
type Notification struct {
	ID      string    `json:"id"`
	GameID  string    `json:"gameId"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Activity is a bounded, newest-last log of notifications shared by every watched game.
type Activity struct {
	mu      sync.Mutex
	limit   int
	entries []Notification
	now     func() time.Time
	onAdd   func(Notification)
}

// NewActivity keeps at most limit entries (100 when limit <= 0). onAdd, if set, sees each new entry.
func NewActivity(limit int, onAdd func(Notification)) *Activity {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return &Activity{limit: limit, now: time.Now, onAdd: onAdd}
}

func (a *Activity) Add(gameID string, kind Kind, message string) Notification {
	n := Notification{
		ID:      uuid.NewString(),
		GameID:  gameID,
		Kind:    kind,
		Message: message,
	}
	a.mu.Lock()
	n.At = a.now()
	a.entries = append(a.entries, n)
	if over := len(a.entries) - a.limit; over > 0 {
		a.entries = append([]Notification(nil), a.entries[over:]...)
	}
	onAdd := a.onAdd
	a.mu.Unlock()

	if onAdd != nil {
		onAdd(n)
	}
	return n
}

// Entries returns a copy, oldest first.
func (a *Activity) Entries() []Notification {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Notification(nil), a.entries...)
}
