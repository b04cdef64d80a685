package logging

import "log/slog"

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService     = "service"
	FieldVersion     = "version"
	FieldRequestID   = "request_id"
	FieldPath        = "path"
	FieldMethod      = "method"
	FieldStatusCode  = "status_code"
	FieldCount       = "count"
	FieldDurationMS  = "duration_ms"
	FieldCompetition = "competition"
	FieldMatchID     = "match_id"
	FieldGameID      = "game_id"
	FieldEvent       = "event"
	FieldRecipient   = "recipient"
	FieldAttempt     = "attempt"
	FieldURL         = "url"
	FieldCaller      = "caller"
)

// WithCommon appends service/version fields when provided.
func WithCommon(attrs []slog.Attr, service, version string) []slog.Attr {
	if service != "" {
		attrs = append(attrs, slog.String(FieldService, service))
	}
	if version != "" {
		attrs = append(attrs, slog.String(FieldVersion, version))
	}
	return attrs
}
