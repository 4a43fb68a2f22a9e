package census

import "sync"

// SeenSet records node ids already counted in a run
type SeenSet struct {
	mu         sync.Mutex
	ids        map[string]struct{}
	duplicates int
}

// NewSeenSet creates an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[string]struct{})}
}

// Claim inserts id and reports whether it was new. A repeated id increments
// the duplicate counter instead.
func (s *SeenSet) Claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		s.duplicates++
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Len returns the number of distinct ids claimed
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Duplicates returns how many claims were rejected
func (s *SeenSet) Duplicates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duplicates
}
