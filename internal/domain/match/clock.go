package match

import (
	"sort"
	"strconv"
	"strings"
)

// ClockSeconds converts a feed clock display value into elapsed seconds.
// Accepted forms: "54:00", "54'", "45'+2'", "90+3". Unparseable values return 0.
func ClockSeconds(display string) int {
	v := strings.TrimSpace(display)
	if v == "" {
		return 0
	}

	if mins, secs, ok := strings.Cut(v, ":"); ok {
		m, errM := strconv.Atoi(strings.TrimSpace(mins))
		s, errS := strconv.Atoi(strings.TrimSpace(secs))
		if errM != nil || errS != nil {
			return 0
		}
		return m*60 + s
	}

	total := 0
	for _, part := range strings.Split(v, "+") {
		part = strings.TrimSpace(strings.Trim(part, "' "))
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total += n
	}
	return total * 60
}

// LatestDetail returns the chronologically last detail, ordering by clock ascending.
// Ties keep feed order.
func LatestDetail(details []Detail) (Detail, bool) {
	if len(details) == 0 {
		return Detail{}, false
	}
	sorted := make([]Detail, len(details))
	copy(sorted, details)
	sort.SliceStable(sorted, func(i, j int) bool {
		return ClockSeconds(sorted[i].Clock) < ClockSeconds(sorted[j].Clock)
	})
	return sorted[len(sorted)-1], true
}
