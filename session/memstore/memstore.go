// Package memstore provides an in-memory session.Storage, suitable for tests
// and single-process deployments.
package memstore

import (
	"sync"

	"github.com/oauthconnect/go-oauth-connect/session"
)

var _ session.Storage = (*Store)(nil)

type Store struct {
	lock   sync.RWMutex
	values map[string]string
}

func New() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(key string) (string, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Set(key, value string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values[key] = value
}

func (s *Store) Delete(key string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.values, key)
}

func (s *Store) ClearAll() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.values = make(map[string]string)
}

// Len reports the number of stored keys.
func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.values)
}
