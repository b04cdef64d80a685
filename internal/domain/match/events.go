package match

// EventKind names a notifiable match occurrence.
type EventKind string

const (
	EventKickoff  EventKind = "kickoff"
	EventHalftime EventKind = "halftime"
	EventFulltime EventKind = "fulltime"
	EventGoal     EventKind = "goal"
)

// Phase identifies a once-only notification flag.
type Phase string

const (
	PhaseKickoff  Phase = "kickoff"
	PhaseHalftime Phase = "halftime"
	PhaseFulltime Phase = "fulltime"
)

// Flags are the durable per-match notification markers.
type Flags struct {
	KickoffNotified  bool `json:"kickoff_notified"`
	HalftimeNotified bool `json:"halftime_notified"`
	FulltimeNotified bool `json:"fulltime_notified"`
}

// Has reports whether the flag for phase is set.
func (f Flags) Has(p Phase) bool {
	switch p {
	case PhaseKickoff:
		return f.KickoffNotified
	case PhaseHalftime:
		return f.HalftimeNotified
	case PhaseFulltime:
		return f.FulltimeNotified
	}
	return false
}

// Set returns a copy with the flag for phase raised.
func (f Flags) Set(p Phase) Flags {
	switch p {
	case PhaseKickoff:
		f.KickoffNotified = true
	case PhaseHalftime:
		f.HalftimeNotified = true
	case PhaseFulltime:
		f.FulltimeNotified = true
	}
	return f
}

// Event is emitted by the tracker once per transition or goal.
type Event struct {
	Kind        EventKind  `json:"kind"`
	MatchID     string     `json:"matchId"`
	Competition string     `json:"competition"`
	Home        Competitor `json:"home"`
	Away        Competitor `json:"away"`
	Score       Score      `json:"score"`
	Scorer      string     `json:"scorer,omitempty"`
	Clock       string     `json:"clock,omitempty"`
}

// NewEvent builds an event carrying the snapshot's teams and score.
func NewEvent(kind EventKind, snap Snapshot) Event {
	return Event{
		Kind:        kind,
		MatchID:     snap.ID,
		Competition: snap.Competition,
		Home:        snap.Home,
		Away:        snap.Away,
		Score:       snap.Score(),
	}
}

// Teams returns the abbreviations of both sides.
func (e Event) Teams() []string {
	return []string{e.Home.Abbreviation, e.Away.Abbreviation}
}
