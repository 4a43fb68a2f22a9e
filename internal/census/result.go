package census

import (
	"encoding/json"
	"time"
)

// SourceResult reports the outcome of one source within a run
type SourceResult struct {
	Community string
	URL       string
	// Format is empty when the source failed before detection
	Format     string
	Nodes      int
	Duplicates int
	Skipped    int
	Duration   time.Duration
	Err        error
}

// OK reports whether the source contributed to the run
func (r SourceResult) OK() bool {
	return r.Err == nil
}

// MarshalJSON renders Err as a string and Duration in seconds
func (r SourceResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Community  string  `json:"community"`
		URL        string  `json:"url"`
		Format     string  `json:"format,omitempty"`
		Nodes      int     `json:"nodes"`
		Duplicates int     `json:"duplicates"`
		Skipped    int     `json:"skipped"`
		Duration   float64 `json:"durationSeconds"`
		Error      string  `json:"error,omitempty"`
	}{
		Community:  r.Community,
		URL:        r.URL,
		Format:     r.Format,
		Nodes:      r.Nodes,
		Duplicates: r.Duplicates,
		Skipped:    r.Skipped,
		Duration:   r.Duration.Seconds(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
