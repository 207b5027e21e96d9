// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"iter"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrRepoNotFound is returned when an operation names a repo the store was
// not constructed with.
var ErrRepoNotFound = errors.New("repo not found")

// repoCell holds one repo snapshot. Readers load the pointer without
// locking; the mutex only serializes writers so a mutation is computed
// against the snapshot it replaces.
type repoCell struct {
	mu sync.Mutex
	v  atomic.Pointer[Repo]
}

// Store is a concurrently readable set of repos. The set of repos is fixed
// at construction; only their contents change, one atomic snapshot swap at a
// time, so readers always observe internally consistent repos without
// blocking writers.
type Store struct {
	repos map[string]map[string]*repoCell
}

// NewStore builds a Store over the given repos. On duplicate (owner, name)
// pairs the last entry wins.
func NewStore(repos []Repo) *Store {
	s := &Store{repos: make(map[string]map[string]*repoCell)}
	for _, r := range repos {
		byName, ok := s.repos[r.owner]
		if !ok {
			byName = make(map[string]*repoCell)
			s.repos[r.owner] = byName
		}
		cell := &repoCell{}
		snapshot := r
		cell.v.Store(&snapshot)
		byName[r.name] = cell
	}
	return s
}

func (s *Store) cell(owner, name string) (*repoCell, bool) {
	c, ok := s.repos[owner][name]
	return c, ok
}

// Repo returns a point-in-time snapshot of the named repo.
func (s *Store) Repo(owner, name string) (Repo, bool) {
	c, ok := s.cell(owner, name)
	if !ok {
		return Repo{}, false
	}
	return *c.v.Load(), true
}

// Repos iterates snapshots of every repo in unspecified order.
func (s *Store) Repos() iter.Seq[Repo] {
	return func(yield func(Repo) bool) {
		for _, byName := range s.repos {
			for _, c := range byName {
				if !yield(*c.v.Load()) {
					return
				}
			}
		}
	}
}

// ReplaceRepo swaps in the repo returned by mutate, which is called with the
// current snapshot. Mutations of the same repo are serialized; readers are
// never blocked and see either the old snapshot or the new one.
func (s *Store) ReplaceRepo(owner, name string, mutate func(Repo) Repo) error {
	c, ok := s.cell(owner, name)
	if !ok {
		return errors.Wrapf(ErrRepoNotFound, "%s/%s", owner, name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	next := mutate(*c.v.Load())
	c.v.Store(&next)
	return nil
}
