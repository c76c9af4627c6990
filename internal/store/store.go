// Package store keeps solids alive across requests so that later
// operations (shell export, incremental edits) can refer to them by
// identifier.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/stepmesh/stepmesh/pkg/kernel"
)

// Store is a concurrency-safe id -> Solid table. Identifiers are
// inserted once and read many times; it is passed into handlers as a
// capability so tests can use an isolated instance.
type Store struct {
	mu     sync.RWMutex
	solids map[string]kernel.Solid
}

// New returns an empty store.
func New() *Store {
	return &Store{solids: make(map[string]kernel.Solid)}
}

// Put registers a solid under a fresh identifier and returns it.
func (s *Store) Put(solid kernel.Solid) string {
	id := newID()

	s.mu.Lock()
	s.solids[id] = solid
	s.mu.Unlock()

	return id
}

// Get looks up a solid by identifier. Unknown identifiers fail with
// kernel.ErrNotFound; lookups never create entries.
func (s *Store) Get(id string) (kernel.Solid, error) {
	s.mu.RLock()
	solid, ok := s.solids[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", kernel.ErrNotFound, id)
	}
	return solid, nil
}

// Delete removes a solid. Removing an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.solids, id)
	s.mu.Unlock()
}

// Len returns the number of stored solids.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.solids)
}

func newID() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("store: reading random id: %v", err))
	}
	return hex.EncodeToString(buf[:])
}
