package ledger

import (
	"testing"
	"time"
)

func TestEventIDRoundTrip(t *testing.T) {
	id := EventID{League: "eng.1", Home: "ARS", Away: "CHE", Kickoff: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)}
	if id.String() != testEventID {
		t.Fatalf("unexpected format %s", id.String())
	}
	parsed, err := ParseEventID(testEventID)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.League != id.League || parsed.Home != id.Home || parsed.Away != id.Away || !parsed.Kickoff.Equal(id.Kickoff) {
		t.Fatalf("expected %+v, got %+v", id, parsed)
	}
	if parsed.Label() != "ARS vs CHE (eng.1)" {
		t.Fatalf("unexpected label %s", parsed.Label())
	}
}

func TestParseEventIDKeepsUnderscoresInLeague(t *testing.T) {
	parsed, err := ParseEventID("uefa_champions_RMA_BAY_20240501190000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.League != "uefa_champions" || parsed.Home != "RMA" || parsed.Away != "BAY" {
		t.Fatalf("unexpected parse %+v", parsed)
	}
}

func TestParseEventIDRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "eng.1_ARS_CHE", "eng.1_ARS_CHE_2024", "_ARS_CHE_20240102150000"} {
		if _, err := ParseEventID(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
