package census

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freifunk/gluon-census/internal/formats"
)

// Run is the state of one census
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time

	seen *SeenSet

	mu          sync.Mutex
	finishedAt  time.Time
	communities map[string]*CommunityAggregate
	results     []SourceResult
}

// NewRun creates an empty run
func NewRun() *Run {
	return &Run{
		ID:          uuid.New(),
		StartedAt:   time.Now(),
		seen:        NewSeenSet(),
		communities: make(map[string]*CommunityAggregate),
	}
}

// Recorded is the contribution of one batch of nodes
type Recorded struct {
	Gluon      int
	Alien      int
	Duplicates int
}

// Counted returns the number of nodes that were not duplicates
func (r Recorded) Counted() int {
	return r.Gluon + r.Alien
}

// Record deduplicates nodes against the whole run and adds the survivors to
// community. The community aggregate is created on the first counted node.
func (r *Run) Record(community, sourceType string, nodes []formats.CanonicalNode) Recorded {
	var rec Recorded
	local := NewCommunityAggregate()

	for _, node := range nodes {
		if !r.seen.Claim(node.ID) {
			rec.Duplicates++
			continue
		}
		if local.Add(node, sourceType).IsGluon() {
			rec.Gluon++
		} else {
			rec.Alien++
		}
	}

	if rec.Counted() == 0 {
		return rec
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	agg, ok := r.communities[community]
	if !ok {
		r.communities[community] = local
		return rec
	}
	agg.Merge(local)
	return rec
}

func (r *Run) addResult(res SourceResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *Run) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishedAt = time.Now()
}

// FinishedAt returns when collection completed, zero while running
func (r *Run) FinishedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishedAt
}

// Unique returns the number of distinct nodes counted
func (r *Run) Unique() int {
	return r.seen.Len()
}

// Duplicates returns the number of node reports skipped as duplicates
func (r *Run) Duplicates() int {
	return r.seen.Duplicates()
}

// Communities returns the names of communities with counted nodes, sorted
func (r *Run) Communities() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.communities))
	for name := range r.communities {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Aggregate returns the aggregate of community
func (r *Run) Aggregate(community string) (*CommunityAggregate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg, ok := r.communities[community]
	return agg, ok
}

// Results returns the per-source results in completion order
func (r *Run) Results() []SourceResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.results)
}
