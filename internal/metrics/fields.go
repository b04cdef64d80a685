package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod      = "method"
	AttrPath        = "path"
	AttrStatus      = "status"
	AttrCompetition = "competition"
	AttrKind        = "kind"
	AttrOp          = "op"
	AttrOutcome     = "outcome"
)
