// Package identity holds the customer identifier the user has chosen for
// order history lookups. It is an unauthenticated, user-supplied integer,
// not a security boundary.
package identity

import (
	"strconv"
	"sync"

	"stylecart/internal/localstore"
	"stylecart/internal/logging"
)

// Persister is the slice of the local store the identity needs.
type Persister interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store holds the optional customer identifier, mirrored to the persistent
// local store on every change.
type Store struct {
	mu    sync.Mutex
	id    *int
	store Persister
}

// NewStore creates an identity store and loads any previously saved
// identifier. A saved value that does not parse as an integer is discarded.
func NewStore(store Persister) *Store {
	s := &Store{store: store}

	raw, err := store.Get(localstore.KeyUserID)
	if err != nil {
		if err != localstore.ErrNotFound {
			logging.Get(logging.CategoryIdentity).Warn("could not read saved identity: %v", err)
		}
		return s
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		logging.Get(logging.CategoryIdentity).Warn("discarding non-numeric saved identity %q", raw)
		return s
	}
	s.id = &parsed
	return s
}

// Get returns the current customer identifier, or nil when unset.
func (s *Store) Get() *int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id == nil {
		return nil
	}
	v := *s.id
	return &v
}

// Set stores the identifier. Passing nil clears it and deletes the
// persisted value.
func (s *Store) Set(id *int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == nil {
		s.id = nil
		if err := s.store.Delete(localstore.KeyUserID); err != nil {
			logging.Get(logging.CategoryIdentity).Error("could not clear identity: %v", err)
		}
		logging.Get(logging.CategoryIdentity).Info("identity cleared")
		return
	}

	v := *id
	s.id = &v
	if err := s.store.Set(localstore.KeyUserID, strconv.Itoa(v)); err != nil {
		logging.Get(logging.CategoryIdentity).Error("could not persist identity: %v", err)
	}
	logging.Get(logging.CategoryIdentity).Info("identity set to %d", v)
}
