package notify

import (
	"fmt"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
)

// FormatEvent renders the title and body pushed for ev.
func FormatEvent(ev match.Event) (string, string) {
	home, away := teamName(ev.Home), teamName(ev.Away)
	fixture := fmt.Sprintf("%s vs %s", home, away)
	score := fmt.Sprintf("%s %d - %d %s", home, ev.Score.Home, ev.Score.Away, away)

	switch ev.Kind {
	case match.EventKickoff:
		return "Kick-off", fixture + " has kicked off"
	case match.EventHalftime:
		return "Half-time", "HT: " + score
	case match.EventFulltime:
		return "Full-time", "FT: " + score
	case match.EventGoal:
		body := score
		if ev.Scorer != "" {
			body = fmt.Sprintf("%s (%s", score, ev.Scorer)
			if ev.Clock != "" {
				body += " " + ev.Clock
			}
			body += ")"
		}
		return "Goal!", body
	}
	return fixture, score
}

func teamName(c match.Competitor) string {
	switch {
	case c.ShortName != "":
		return c.ShortName
	case c.DisplayName != "":
		return c.DisplayName
	}
	return c.Abbreviation
}
