package ledger

import (
	"sort"
	"sync"
)

// lockSet hands out one mutex per wallet ID. Entries are reference counted
// and dropped when the last holder releases them.
type lockSet struct {
	mu    sync.Mutex
	locks map[string]*walletLock
}

type walletLock struct {
	mu   sync.Mutex
	refs int
}

func newLockSet() *lockSet {
	return &lockSet{locks: make(map[string]*walletLock)}
}

// Lock acquires the locks for ids in sorted order, skipping duplicates, and
// returns the function that releases them.
func (s *lockSet) Lock(ids ...string) func() {
	keys := sortedUnique(ids)

	held := make([]*walletLock, 0, len(keys))
	for _, id := range keys {
		l := s.acquire(id)
		l.mu.Lock()
		held = append(held, l)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			s.release(keys[i])
		}
	}
}

func (s *lockSet) acquire(id string) *walletLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &walletLock{}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *lockSet) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.locks[id]
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

// size is the number of live entries.
func (s *lockSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func sortedUnique(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
