package feed

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

func mapScoreboard(competition string, payload scoreboardResponse) ([]match.Snapshot, error) {
	if payload.Events == nil {
		return nil, &DataShapeError{Competition: competition, Field: "events"}
	}

	snaps := make([]match.Snapshot, 0, len(payload.Events))
	for i, ev := range payload.Events {
		snap, err := mapEvent(competition, ev)
		if err != nil {
			if shape, ok := AsDataShapeError(err); ok {
				shape.Field = fmt.Sprintf("events[%d].%s", i, shape.Field)
			}
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func mapEvent(competition string, ev eventResponse) (match.Snapshot, error) {
	shape := func(field string) error {
		return &DataShapeError{Competition: competition, Field: field}
	}

	if strings.TrimSpace(ev.ID) == "" {
		return match.Snapshot{}, shape("id")
	}
	if len(ev.Competitions) == 0 {
		return match.Snapshot{}, shape("competitions")
	}
	comp := ev.Competitions[0]

	status := comp.Status
	if status == nil {
		status = ev.Status
	}
	if status == nil || strings.TrimSpace(status.Type.State) == "" {
		return match.Snapshot{}, shape("status.type.state")
	}

	var home, away *competitorResponse
	for i := range comp.Competitors {
		switch strings.ToLower(comp.Competitors[i].HomeAway) {
		case "home":
			home = &comp.Competitors[i]
		case "away":
			away = &comp.Competitors[i]
		}
	}
	if home == nil || away == nil {
		return match.Snapshot{}, shape("competitors")
	}
	if home.Team.Abbreviation == "" || away.Team.Abbreviation == "" {
		return match.Snapshot{}, shape("competitors.team.abbreviation")
	}

	return match.Snapshot{
		ID:          ev.ID,
		Competition: competition,
		Home:        mapCompetitor(*home),
		Away:        mapCompetitor(*away),
		Status: match.Status{
			State: strings.ToLower(status.Type.State),
			Name:  status.Type.Name,
		},
		Details: mapDetails(comp.Details),
	}, nil
}

func mapCompetitor(c competitorResponse) match.Competitor {
	return match.Competitor{
		Abbreviation: strings.ToUpper(c.Team.Abbreviation),
		ShortName:    c.Team.ShortDisplayName,
		DisplayName:  c.Team.DisplayName,
		Score:        int(c.Score),
	}
}

func mapDetails(in []detailResponse) []match.Detail {
	if len(in) == 0 {
		return nil
	}
	out := make([]match.Detail, 0, len(in))
	for _, d := range in {
		detail := match.Detail{Clock: strings.TrimSpace(d.Clock.DisplayValue)}
		for _, a := range d.AthletesInvolved {
			if name := strings.TrimSpace(a.DisplayName); name != "" {
				detail.Participants = append(detail.Participants, name)
			}
		}
		out = append(out, detail)
	}
	return out
}
