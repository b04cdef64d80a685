package health

import (
	"errors"
	"fmt"
	"testing"

	"github.com/preston-bernstein/squares-service/internal/domain/match"
	"github.com/preston-bernstein/squares-service/internal/testutil"
)

func snapWithState(state string) match.Snapshot {
	return match.Snapshot{Status: match.Status{State: state}}
}

func TestRecordSuccessCountsStates(t *testing.T) {
	m := NewMonitor(0)
	m.now = testutil.NowAt(testutil.MustParseRFC3339("2024-01-02T15:00:00Z"))

	m.RecordSuccess("eng.1", []match.Snapshot{
		snapWithState("in"), snapWithState("IN"), snapWithState("post"), snapWithState("pre"), snapWithState("delayed"),
	})

	got := m.Competitions()
	if len(got) != 1 {
		t.Fatalf("expected one competition, got %d", len(got))
	}
	st := got[0]
	if !st.OK || st.EventsCount != 5 || st.InCount != 2 || st.PostCount != 1 || st.PreCount != 1 {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.CheckedAt.IsZero() {
		t.Fatalf("expected checked timestamp")
	}
}

func TestRecordFailureFlipsStatusAndLogs(t *testing.T) {
	m := NewMonitor(0)
	m.RecordSuccess("esp.1", []match.Snapshot{snapWithState("in")})
	m.RecordSuccess("eng.1", nil)
	m.RecordFailure("esp.1", errors.New("timeout"))

	comps := m.Competitions()
	if len(comps) != 2 || comps[0].Competition != "eng.1" || !comps[0].OK {
		t.Fatalf("unexpected competitions %+v", comps)
	}
	if comps[1].OK || comps[1].EventsCount != 0 {
		t.Fatalf("expected esp.1 failing, got %+v", comps[1])
	}

	failures := m.Failures()
	if len(failures) != 1 || failures[0].Label != "esp.1" || failures[0].Error != "timeout" || failures[0].ID == "" {
		t.Fatalf("unexpected failures %+v", failures)
	}
}

func TestFailureLogIsCappedNewestFirst(t *testing.T) {
	m := NewMonitor(0)
	for i := 0; i < 205; i++ {
		m.RecordError("tracker", fmt.Errorf("err %d", i))
	}
	m.RecordError("ignored", nil)

	failures := m.Failures()
	if len(failures) != defaultFailureLimit {
		t.Fatalf("expected %d failures, got %d", defaultFailureLimit, len(failures))
	}
	if failures[0].Error != "err 204" || failures[len(failures)-1].Error != "err 5" {
		t.Fatalf("unexpected ordering: first=%s last=%s", failures[0].Error, failures[len(failures)-1].Error)
	}
	if len(m.Competitions()) != 0 {
		t.Fatalf("plain errors should not create competition entries")
	}
}

func TestNilMonitorIsSafe(t *testing.T) {
	var m *Monitor
	m.RecordSuccess("eng.1", nil)
	m.RecordFailure("eng.1", errors.New("x"))
	if m.Competitions() != nil || m.Failures() != nil {
		t.Fatalf("expected nil results")
	}
}
