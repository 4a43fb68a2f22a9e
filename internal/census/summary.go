package census

import (
	"time"

	"github.com/go-logr/logr"
)

// Dimension names used in consistency mismatches
const (
	DimensionNodes   = "node"
	DimensionModels  = "model"
	DimensionDomains = "domain"
	DimensionSources = "source type"
)

// Mismatch reports a dimension whose gluon and alien totals do not add up to
// the unique node count
type Mismatch struct {
	Dimension string `json:"dimension"`
	Unique    int    `json:"unique"`
	Gluon     int    `json:"gluon"`
	Alien     int    `json:"alien"`
}

// Message returns the diagnostic logged for the mismatch
func (m Mismatch) Message() string {
	switch m.Dimension {
	case DimensionNodes:
		return "Node count mismatch"
	case DimensionModels:
		return "Model count mismatch"
	case DimensionDomains:
		return "Domain count mismatch"
	default:
		return "Source type count mismatch"
	}
}

// Summary is the end-of-run overview
type Summary struct {
	RunID      string         `json:"runId"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Unique     int            `json:"unique"`
	Duplicates int            `json:"duplicates"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failedSources"`
	Gluon      Totals         `json:"gluon"`
	Alien      Totals         `json:"alien"`
	Sources    []SourceResult `json:"sources"`
	Mismatches []Mismatch     `json:"mismatches,omitempty"`
}

// Summary sums all communities and runs the consistency check
func (r *Run) Summary() Summary {
	s := Summary{
		RunID:      r.ID.String(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt(),
		Unique:     r.Unique(),
		Duplicates: r.Duplicates(),
		Sources:    r.Results(),
	}

	for _, name := range r.Communities() {
		agg, _ := r.Aggregate(name)
		s.Gluon = s.Gluon.add(agg.Gluon.Totals())
		s.Alien = s.Alien.add(agg.Alien.Totals())
	}
	for _, res := range s.Sources {
		s.Skipped += res.Skipped
		if !res.OK() {
			s.Failed++
		}
	}

	s.Mismatches = s.check()
	return s
}

func (s Summary) check() []Mismatch {
	var out []Mismatch
	dims := []struct {
		name         string
		gluon, alien int
	}{
		{DimensionNodes, s.Gluon.Bases, s.Alien.Bases},
		{DimensionModels, s.Gluon.Models, s.Alien.Models},
		{DimensionDomains, s.Gluon.Domains, s.Alien.Domains},
		{DimensionSources, s.Gluon.Sources, s.Alien.Sources},
	}
	for _, d := range dims {
		if d.gluon+d.alien != s.Unique {
			out = append(out, Mismatch{Dimension: d.name, Unique: s.Unique, Gluon: d.gluon, Alien: d.alien})
		}
	}
	return out
}

// Log writes the summary diagnostics and one error per mismatch
func (s Summary) Log(log logr.Logger) {
	log = log.WithValues("run", s.RunID)

	log.Info("Collections summaries",
		"version_sum", s.Gluon.Bases,
		"model_sum", s.Gluon.Models,
		"domain_sum", s.Gluon.Domains,
		"source_sum", s.Gluon.Sources,
	)
	log.Info("Collections summaries, alien",
		"alien_sum", s.Alien.Bases,
		"alien_model_sum", s.Alien.Models,
		"alien_domain_sum", s.Alien.Domains,
		"alien_source_sum", s.Alien.Sources,
	)
	log.Info("Summary", "unique", s.Unique, "duplicate", s.Duplicates, "skipped", s.Skipped, "failed", s.Failed)

	for _, m := range s.Mismatches {
		log.Error(nil, m.Message(), "unique", m.Unique, "gluon_sum", m.Gluon, "alien_sum", m.Alien)
	}
}
