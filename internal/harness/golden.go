package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the deterministic record of a scenario run, compared
// against golden files.
type TraceSnapshot struct {
	Scenario string        `json:"scenario"`
	Markup   string        `json:"markup"`
	Islands  []IslandTrace `json:"islands"`
}

// IslandTrace is one island's outcome in the snapshot.
type IslandTrace struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// Snapshot converts a run result into its trace snapshot.
func Snapshot(s *Scenario, r *Result) TraceSnapshot {
	snap := TraceSnapshot{Scenario: s.Name, Markup: r.Markup}
	for _, i := range r.Report.Islands {
		snap.Islands = append(snap.Islands, IslandTrace{
			ID:      i.ID,
			Type:    i.Type,
			Outcome: string(i.Outcome),
			Detail:  i.Detail,
		})
	}
	return snap
}

// RunWithGolden executes a scenario and compares its trace snapshot
// against testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		return nil, err
	}

	raw, err := json.MarshalIndent(Snapshot(s, result), "", "  ")
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, append(raw, '\n'))
	return result, nil
}
