package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// State is where a migration stands relative to the ledger.
type State string

// States reported by Status.
const (
	StateApplied State = "applied"
	StatePending State = "pending"
	// StateMissing marks a ledger entry whose file is no longer in the source.
	StateMissing State = "missing"
)

// Symbol returns the marker printed for s in the status table.
func (s State) Symbol() string {
	switch s {
	case StateApplied:
		return "✔"
	case StatePending:
		return "✘"
	default:
		return "?"
	}
}

// StatusEntry is one row of a status report.
type StatusEntry struct {
	ID        string     `json:"id"`
	State     State      `json:"state"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// Status is a read-only report of every known migration.
// Total counts files in the source; missing entries are reported separately.
type Status struct {
	Entries []StatusEntry `json:"migrations"`
	Total   int           `json:"total"`
	Applied int           `json:"applied"`
	Pending int           `json:"pending"`
	Missing int           `json:"missing"`
}

// Status reports every migration in source order followed by any applied
// migrations whose files have disappeared.
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	if err := r.ledger.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	entries, err := r.ledger.Applied(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := r.source.List()
	if err != nil {
		return nil, err
	}

	appliedAt := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		appliedAt[e.Name] = e.AppliedAt
	}

	st := &Status{
		Entries: make([]StatusEntry, 0, len(ids)),
		Total:   len(ids),
	}

	known := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		known[id] = struct{}{}

		at, ok := appliedAt[id]
		if !ok {
			st.Entries = append(st.Entries, StatusEntry{ID: id, State: StatePending})
			st.Pending++

			continue
		}

		st.Entries = append(st.Entries, StatusEntry{ID: id, State: StateApplied, AppliedAt: &at})
		st.Applied++
	}

	for _, e := range entries {
		if _, ok := known[e.Name]; ok {
			continue
		}

		at := e.AppliedAt
		st.Entries = append(st.Entries, StatusEntry{ID: e.Name, State: StateMissing, AppliedAt: &at})
		st.Missing++
	}

	return st, nil
}

// Summary returns the totals line printed under the status table.
func (s *Status) Summary() string {
	line := fmt.Sprintf("Total: %d | Applied: %d | Pending: %d", s.Total, s.Applied, s.Pending)
	if s.Missing > 0 {
		line += fmt.Sprintf(" | Missing: %d", s.Missing)
	}

	return line
}

// Render writes the status table and summary line to w.
func (s *Status) Render(w io.Writer) error {
	if len(s.Entries) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"", "Migration", "Applied At"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, e := range s.Entries {
			applied := ""
			if e.AppliedAt != nil {
				applied = e.AppliedAt.UTC().Format(time.RFC3339)
			}

			table.Append([]string{e.State.Symbol(), e.ID, applied})
		}

		table.Render()
	}

	_, err := fmt.Fprintln(w, s.Summary())

	return err
}
