package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// ReportEntry records one design's outcome. Entries are never mutated after
// the design completes.
type ReportEntry struct {
	DesignID string  `json:"design"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	OK       bool    `json:"ok"`
	Reason   string  `json:"reason,omitempty"`

	order int
}

// Report aggregates a whole batch run.
type Report struct {
	RunID   string        `json:"run_id"`
	Mode    string        `json:"mode"`
	Entries []ReportEntry `json:"entries"`
}

// Failed returns the number of failed designs.
func (r *Report) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if !e.OK {
			n++
		}
	}
	return n
}

// sortEntries restores the order designs were requested in, so output is
// stable regardless of worker scheduling.
func (r *Report) sortEntries() {
	sort.Slice(r.Entries, func(i, j int) bool {
		return r.Entries[i].order < r.Entries[j].order
	})
}

// Print writes one human-readable status line per design.
func (r *Report) Print(w io.Writer) {
	for _, e := range r.Entries {
		if e.OK {
			fmt.Fprintf(w, "%-24s OK    %.4f x %.4f %s\n", e.DesignID, e.Width, e.Height, e.Unit)
		} else {
			fmt.Fprintf(w, "%-24s FAIL  %s\n", e.DesignID, e.Reason)
		}
	}
}

// WriteFile saves the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
