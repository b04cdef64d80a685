package feed

import (
	"context"
	"sync"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

// Fixture replays a scripted sequence of scoreboards, one step per call, holding on the last step.
// It backs local runs without network access.
type Fixture struct {
	mu    sync.Mutex
	steps map[string][][]match.Snapshot
	pos   map[string]int
}

// NewFixture returns a fixture that walks a single example match through a full game.
func NewFixture() *Fixture {
	return NewFixtureWithSteps(map[string][][]match.Snapshot{
		"eng.1": defaultFixtureSteps("eng.1"),
	})
}

// NewFixtureWithSteps builds a fixture from explicit per-competition steps.
func NewFixtureWithSteps(steps map[string][][]match.Snapshot) *Fixture {
	return &Fixture{steps: steps, pos: make(map[string]int)}
}

// Scoreboard returns the next scripted step for competition.
func (f *Fixture) Scoreboard(ctx context.Context, competition string) ([]match.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	steps := f.steps[competition]
	if len(steps) == 0 {
		return []match.Snapshot{}, nil
	}
	idx := f.pos[competition]
	if idx >= len(steps) {
		idx = len(steps) - 1
	} else {
		f.pos[competition] = idx + 1
	}

	out := make([]match.Snapshot, len(steps[idx]))
	copy(out, steps[idx])
	for i := range out {
		out[i].Competition = competition
	}
	return out, nil
}

func defaultFixtureSteps(competition string) [][]match.Snapshot {
	base := match.Snapshot{
		ID:          "fixture-1",
		Competition: competition,
		Home:        match.Competitor{Abbreviation: "ARS", ShortName: "Arsenal", DisplayName: "Arsenal"},
		Away:        match.Competitor{Abbreviation: "CHE", ShortName: "Chelsea", DisplayName: "Chelsea"},
	}
	step := func(state, name string, home, away int, details ...match.Detail) []match.Snapshot {
		s := base
		s.Status = match.Status{State: state, Name: name}
		s.Home.Score = home
		s.Away.Score = away
		s.Details = details
		return []match.Snapshot{s}
	}
	goal := match.Detail{Clock: "23'", Participants: []string{"B. Saka"}}
	return [][]match.Snapshot{
		step(match.StatePre, "STATUS_SCHEDULED", 0, 0),
		step(match.StateIn, "STATUS_FIRST_HALF", 0, 0),
		step(match.StateIn, "STATUS_FIRST_HALF", 1, 0, goal),
		step(match.StateIn, "STATUS_HALFTIME", 1, 0, goal),
		step(match.StatePost, "STATUS_FULL_TIME", 1, 0, goal),
	}
}
