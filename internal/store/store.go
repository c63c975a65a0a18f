// Package store holds the client-side cache of the user collection.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dusk-indust/usermgr/internal/userapi"
)

// ErrInconsistent is matched (via errors.Is) by every *InconsistencyError.
var ErrInconsistent = errors.New("store: inconsistent with server")

// InconsistencyError reports a mutation that targets an id the store does
// not hold (or already holds, for creates). The mutation is skipped and the
// store is left as it was.
type InconsistencyError struct {
	Op string
	ID int
}

// Error implements the error interface.
func (e *InconsistencyError) Error() string {
	switch e.Op {
	case "create", "replace":
		return fmt.Sprintf("store: %s: user %d already present", e.Op, e.ID)
	default:
		return fmt.Sprintf("store: %s: user %d not found", e.Op, e.ID)
	}
}

// Is lets errors.Is(err, ErrInconsistent) match.
func (e *InconsistencyError) Is(target error) bool {
	return target == ErrInconsistent
}

// Store is a concurrency-safe ordered cache of users. Order is server order
// after a load and append order for creates. Every read returns copies; the
// store never hands out references to its own entries.
type Store struct {
	mu     sync.RWMutex
	users  []userapi.User
	loaded bool
}

// New returns an empty, not yet loaded Store.
func New() *Store {
	return &Store{users: make([]userapi.User, 0)}
}

// Load fetches the whole collection from src and replaces the stored
// sequence with it. On failure the store is unchanged and the error is
// returned as is.
func (s *Store) Load(ctx context.Context, src userapi.Lister) error {
	users, err := src.ListUsers(ctx)
	if err != nil {
		return err
	}
	return s.Replace(users)
}

// Replace swaps in an already fetched collection. A collection containing a
// zero or repeated id is rejected and the store is left unchanged.
func (s *Store) Replace(users []userapi.User) error {
	seen := make(map[int]bool, len(users))
	for _, u := range users {
		if u.ID == 0 {
			return &InconsistencyError{Op: "replace", ID: 0}
		}
		if seen[u.ID] {
			return &InconsistencyError{Op: "replace", ID: u.ID}
		}
		seen[u.ID] = true
	}

	next := slices.Clone(users)
	if next == nil {
		next = make([]userapi.User, 0)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = next
	s.loaded = true
	return nil
}

// ApplyCreate appends u. An id that is zero or already present is reported
// as an inconsistency and nothing is appended.
func (s *Store) ApplyCreate(u userapi.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == 0 || s.indexOf(u.ID) >= 0 {
		return &InconsistencyError{Op: "create", ID: u.ID}
	}
	s.users = append(s.users, u)
	return nil
}

// ApplyUpdate replaces the entry with u's id, keeping its position.
func (s *Store) ApplyUpdate(u userapi.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(u.ID)
	if i < 0 {
		return &InconsistencyError{Op: "update", ID: u.ID}
	}
	s.users[i] = u
	return nil
}

// ApplyDelete removes the entry with the given id.
func (s *Store) ApplyDelete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return &InconsistencyError{Op: "delete", ID: id}
	}
	s.users = slices.Delete(s.users, i, i+1)
	return nil
}

// All returns a copy of the stored sequence in order.
func (s *Store) All() []userapi.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// Get returns a copy of the user with the given id.
func (s *Store) Get(id int) (userapi.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return userapi.User{}, false
	}
	return s.users[i], true
}

// Len returns the number of stored users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Loaded reports whether the store has been populated at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id int) int {
	return slices.IndexFunc(s.users, func(u userapi.User) bool { return u.ID == id })
}
