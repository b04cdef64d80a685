package feed

import (
	"io"
	"net/http"
	"strings"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(rt roundTripperFunc) *http.Client {
	return &http.Client{Transport: rt}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

const scoreboardBody = `{
	"events": [
		{
			"id": "401",
			"competitions": [
				{
					"status": { "type": { "state": "in", "name": "STATUS_HALFTIME" } },
					"competitors": [
						{ "homeAway": "home", "score": "2", "team": { "abbreviation": "ars", "shortDisplayName": "Arsenal", "displayName": "Arsenal FC" } },
						{ "homeAway": "away", "score": 1, "team": { "abbreviation": "CHE", "shortDisplayName": "Chelsea", "displayName": "Chelsea FC" } }
					],
					"details": [
						{ "clock": { "displayValue": "54'" }, "athletesInvolved": [ { "displayName": "B. Saka" } ] },
						{ "clock": { "displayValue": "12'" }, "athletesInvolved": [ { "displayName": "C. Palmer" } ] }
					]
				}
			]
		}
	]
}`
