package match

import "strings"

// Feed-level match states.
const (
	StatePre  = "pre"
	StateIn   = "in"
	StatePost = "post"
)

// Normalised status names the tracker cares about.
const (
	StatusHalftime = "HALFTIME"
	StatusFullTime = "FULL_TIME"
)

// Score captures home and away goals.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Competitor is one side of a match.
type Competitor struct {
	Abbreviation string `json:"abbreviation"`
	ShortName    string `json:"shortName"`
	DisplayName  string `json:"displayName"`
	Score        int    `json:"score"`
}

// Detail is a scoring play as reported by the feed.
type Detail struct {
	Clock        string   `json:"clock"`
	Participants []string `json:"participants,omitempty"`
}

// Status mirrors the feed's status.type block.
type Status struct {
	State string `json:"state"`
	Name  string `json:"name"`
}

// Snapshot is one observation of a match from a scoreboard poll.
type Snapshot struct {
	ID          string     `json:"id"`
	Competition string     `json:"competition"`
	Home        Competitor `json:"home"`
	Away        Competitor `json:"away"`
	Status      Status     `json:"status"`
	Details     []Detail   `json:"details,omitempty"`
}

// Score returns the current score of the snapshot.
func (s Snapshot) Score() Score {
	return Score{Home: s.Home.Score, Away: s.Away.Score}
}

// NormalizedName strips the feed's STATUS_ prefix and upper-cases the name.
func (s Status) NormalizedName() string {
	name := strings.ToUpper(strings.TrimSpace(s.Name))
	return strings.TrimPrefix(name, "STATUS_")
}

// IsLive reports whether the match is in play (including halftime).
func (s Status) IsLive() bool {
	return strings.EqualFold(s.State, StateIn)
}

// IsHalftime reports whether the feed marks the halftime break.
func (s Status) IsHalftime() bool {
	return s.NormalizedName() == StatusHalftime
}

// IsFinished reports whether the match is over.
func (s Status) IsFinished() bool {
	return strings.EqualFold(s.State, StatePost) || s.NormalizedName() == StatusFullTime
}

// Involves reports whether the match is between the two abbreviations (home first).
func (s Snapshot) Involves(home, away string) bool {
	return strings.EqualFold(s.Home.Abbreviation, home) && strings.EqualFold(s.Away.Abbreviation, away)
}
