// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"iter"
)

// Provider is one upstream source of release metadata, addressed by the
// domain it serves, e.g. "github.com". Read methods return snapshots and may
// be called concurrently with updates.
type Provider interface {
	// Domain returns the provider's identifying domain.
	Domain() string
	// Repo returns a snapshot of the named repo.
	Repo(owner, name string) (Repo, bool)
	// Repos iterates snapshots of the provider's repos.
	Repos() iter.Seq[Repo]
	// ReplaceRepo atomically applies mutate to the named repo.
	ReplaceRepo(owner, name string, mutate func(Repo) Repo) error
	// UpdateRepo runs one refresh pass for the named repo against the
	// upstream source.
	UpdateRepo(ctx context.Context, owner, name string) error
}

// Registry resolves domains to providers. It is assembled at startup and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its domain, replacing any previous entry.
// Not safe to call once the registry is being read concurrently.
func (r *Registry) Register(p Provider) {
	r.providers[p.Domain()] = p
}

// Provider returns the provider registered for domain.
func (r *Registry) Provider(domain string) (Provider, bool) {
	p, ok := r.providers[domain]
	return p, ok
}

// Providers iterates the registered providers in unspecified order.
func (r *Registry) Providers() iter.Seq[Provider] {
	return func(yield func(Provider) bool) {
		for _, p := range r.providers {
			if !yield(p) {
				return
			}
		}
	}
}
