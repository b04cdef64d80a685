package feed

import (
	"encoding/json"
	"strconv"
	"strings"
)

type scoreboardResponse struct {
	Events []eventResponse `json:"events"`
}

type eventResponse struct {
	ID           string                `json:"id"`
	Status       *statusResponse       `json:"status"`
	Competitions []competitionResponse `json:"competitions"`
}

type competitionResponse struct {
	Status      *statusResponse      `json:"status"`
	Competitors []competitorResponse `json:"competitors"`
	Details     []detailResponse     `json:"details"`
}

type statusResponse struct {
	Type statusTypeResponse `json:"type"`
}

type statusTypeResponse struct {
	State string `json:"state"`
	Name  string `json:"name"`
}

type competitorResponse struct {
	HomeAway string       `json:"homeAway"`
	Score    flexInt      `json:"score"`
	Team     teamResponse `json:"team"`
}

type teamResponse struct {
	Abbreviation     string `json:"abbreviation"`
	ShortDisplayName string `json:"shortDisplayName"`
	DisplayName      string `json:"displayName"`
}

type detailResponse struct {
	Clock            clockResponse     `json:"clock"`
	AthletesInvolved []athleteResponse `json:"athletesInvolved"`
}

type clockResponse struct {
	DisplayValue string `json:"displayValue"`
}

type athleteResponse struct {
	DisplayName string `json:"displayName"`
}

// flexInt accepts scores sent either as JSON numbers or numeric strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*f = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}
