package tracker

import "sync"

// seenSet remembers exe names already classified this session so the
// classify loop can skip the ledger round-trip for them. It is an
// optimization only: the ledger stays the source of truth for "already
// classified", and the classifier re-checks it before writing.
type seenSet struct {
	names map[string]struct{}
	mu    sync.RWMutex
}

func newSeenSet(initial []string) *seenSet {
	names := make(map[string]struct{}, len(initial))
	for _, name := range initial {
		names[name] = struct{}{}
	}
	return &seenSet{names: names}
}

func (s *seenSet) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

func (s *seenSet) Add(name string) {
	s.mu.Lock()
	s.names[name] = struct{}{}
	s.mu.Unlock()
}
