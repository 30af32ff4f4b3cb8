package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store holds projects in memory. Projects are evicted when untouched for
// the TTL or when the store is full (least recently used first). Nothing is
// persisted.
type Store struct {
	lru      *expirable.LRU[string, *Project]
	onResize func(n int)
}

// NewStore creates a store with at most size projects living ttl each.
// onResize, if non-nil, is called with the new length after every change,
// including evictions.
func NewStore(size int, ttl time.Duration, onResize func(n int)) *Store {
	s := &Store{onResize: onResize}
	s.lru = expirable.NewLRU[string, *Project](size, func(string, *Project) {
		// Called with the LRU lock held, so the length is read from another goroutine.
		if s.onResize != nil {
			go func() { s.onResize(s.lru.Len()) }()
		}
	}, ttl)
	return s
}

// Put adds or refreshes p.
func (s *Store) Put(p *Project) {
	s.lru.Add(p.ID, p)
	s.resized()
}

// Get returns the project and restarts its TTL.
func (s *Store) Get(id string) (*Project, bool) {
	p, ok := s.lru.Get(id)
	if !ok {
		return nil, false
	}
	s.lru.Add(id, p)
	return p, true
}

// Delete removes a project. It reports whether the project existed.
func (s *Store) Delete(id string) bool {
	ok := s.lru.Remove(id)
	s.resized()
	return ok
}

// Len returns the number of live projects.
func (s *Store) Len() int {
	return s.lru.Len()
}

func (s *Store) resized() {
	if s.onResize != nil {
		s.onResize(s.lru.Len())
	}
}
