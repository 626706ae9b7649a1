// Package artifact persists assembled iFlow packages so callers can keep an
// audit trail of what was generated from which source.
package artifact

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrArtifactNotFound is returned when no artifact exists for an ID.
	ErrArtifactNotFound = errors.New("artifact not found")
)

// Artifact is one stored package.
type Artifact struct {
	ID        string
	Name      string
	Version   string
	Archive   []byte
	CreatedAt time.Time
}

// Filter selects artifacts from the store. Empty fields mean "no filter".
type Filter struct {
	Name string
}

// Store handles storage of generated packages.
type Store interface {
	SaveArtifact(a *Artifact) error
	GetArtifact(id string) (*Artifact, error)
	ListArtifacts(filter Filter) ([]*Artifact, error)
}

// MemoryStore is an in-process Store, useful for tests and for callers that
// do not need the audit trail to survive the process.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string]*Artifact)}
}

func (s *MemoryStore) SaveArtifact(a *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *a
	copied.Archive = append([]byte(nil), a.Archive...)
	s.artifacts[a.ID] = &copied
	return nil
}

func (s *MemoryStore) GetArtifact(id string) (*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artifacts[id]
	if !ok {
		return nil, ErrArtifactNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *MemoryStore) ListArtifacts(filter Filter) ([]*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Artifact
	for _, a := range s.artifacts {
		if filter.Name != "" && a.Name != filter.Name {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
