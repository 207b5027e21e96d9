// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package updater schedules the refresh passes that keep the catalog in
// sync with its upstream providers.
package updater

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/artifetch/artifetch/pkg/catalog"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// splayBound caps the random delay added to each updater's first refresh so
// repos sharing a start time don't poll in lockstep.
const splayBound = 30 * time.Second

// Updater periodically refreshes one repo's slice of the catalog. Passes
// never overlap: each waits for the previous one to finish.
type Updater struct {
	provider catalog.Provider
	owner    string
	name     string
	interval time.Duration
	splay    time.Duration
	log      *zap.Logger
}

// New builds an updater for the named repo. The splay is drawn here, once
// per updater, so concurrently spawned updaters spread out their schedules.
func New(provider catalog.Provider, owner, name string, logger *zap.Logger) (*Updater, error) {
	repo, ok := provider.Repo(owner, name)
	if !ok {
		return nil, errors.Wrapf(catalog.ErrRepoNotFound, "%s/%s on %s", owner, name, provider.Domain())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{
		provider: provider,
		owner:    owner,
		name:     name,
		interval: repo.PollInterval(),
		splay:    splay(),
		log: logger.With(
			zap.String("provider", provider.Domain()),
			zap.String("repo", owner+"/"+name),
		),
	}, nil
}

// splay draws a uniform delay from [0, splayBound).
func splay() time.Duration {
	return rand.N(splayBound)
}

// Run populates the repo immediately, then refreshes it every poll interval
// until ctx is cancelled. The first refresh is additionally delayed by the
// updater's splay.
func (u *Updater) Run(ctx context.Context) {
	u.log.Info("populating repo", zap.Duration("interval", u.interval), zap.Duration("splay", u.splay))
	u.update(ctx)

	first := time.NewTimer(u.splay + u.interval)
	defer first.Stop()
	select {
	case <-ctx.Done():
		return
	case <-first.C:
	}

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()
	for {
		u.log.Info("updating repo")
		u.update(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// update runs one pass. Failures never stop the schedule; anything beyond
// cancellation is logged and the next tick proceeds as usual.
func (u *Updater) update(ctx context.Context) {
	if err := u.provider.UpdateRepo(ctx, u.owner, u.name); err != nil {
		if ctx.Err() != nil {
			return
		}
		u.log.Error("update pass failed", zap.Error(err))
	}
}

// SpawnAll starts one updater goroutine per repo in the registry and
// returns a function that blocks until all of them have exited.
func SpawnAll(ctx context.Context, reg *catalog.Registry, logger *zap.Logger) (wait func(), err error) {
	var wg sync.WaitGroup
	for provider := range reg.Providers() {
		for repo := range provider.Repos() {
			u, err := New(provider, repo.Owner(), repo.Name(), logger)
			if err != nil {
				return nil, err
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				u.Run(ctx)
			}()
		}
	}
	return wg.Wait, nil
}
