package timeutil

import "time"

// StampLayout is the compact UTC timestamp used in event ids (yyyyMMddHHmmss).
const StampLayout = "20060102150405"

// ParseStamp parses a yyyyMMddHHmmss string as UTC.
func ParseStamp(value string) (time.Time, error) {
	return time.ParseInLocation(StampLayout, value, time.UTC)
}

// FormatStamp formats t in UTC as yyyyMMddHHmmss.
func FormatStamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}
