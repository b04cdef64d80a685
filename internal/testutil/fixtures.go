package testutil

import (
	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

// SampleEventID is a well-formed event id for ARS vs CHE in the Premier League.
const SampleEventID = "eng.1_ARS_CHE_20240102150000"

// SampleSnapshot returns an ARS vs CHE snapshot with the given id, state and score.
func SampleSnapshot(id, state string, home, away int) match.Snapshot {
	return match.Snapshot{
		ID:          id,
		Competition: "eng.1",
		Home:        match.Competitor{Abbreviation: "ARS", ShortName: "Arsenal", DisplayName: "Arsenal", Score: home},
		Away:        match.Competitor{Abbreviation: "CHE", ShortName: "Chelsea", DisplayName: "Chelsea", Score: away},
		Status:      match.Status{State: state},
	}
}
