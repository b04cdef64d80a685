package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/preston-bernstein/squares-service/internal/timeutil"
)

// EventID correlates a game with one match: {league}_{home}_{away}_{yyyyMMddHHmmss}.
type EventID struct {
	League  string
	Home    string
	Away    string
	Kickoff time.Time
}

func (e EventID) String() string {
	return strings.Join([]string{e.League, e.Home, e.Away, timeutil.FormatStamp(e.Kickoff)}, "_")
}

// ParseEventID splits raw from the right so leagues may themselves contain underscores.
func ParseEventID(raw string) (EventID, error) {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	if len(parts) < 4 {
		return EventID{}, fmt.Errorf("event id %q: want league_home_away_timestamp", raw)
	}
	n := len(parts)
	kickoff, err := timeutil.ParseStamp(parts[n-1])
	if err != nil {
		return EventID{}, fmt.Errorf("event id %q: %w", raw, err)
	}
	id := EventID{
		League:  strings.Join(parts[:n-3], "_"),
		Home:    parts[n-3],
		Away:    parts[n-2],
		Kickoff: kickoff,
	}
	if id.League == "" || id.Home == "" || id.Away == "" {
		return EventID{}, fmt.Errorf("event id %q: empty segment", raw)
	}
	return id, nil
}

// Label renders the id for display, e.g. "ARS vs CHE (eng.1)".
func (e EventID) Label() string {
	return fmt.Sprintf("%s vs %s (%s)", e.Home, e.Away, e.League)
}
