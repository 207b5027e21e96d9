// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"time"

	"github.com/artifetch/artifetch/pkg/catalog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UpdateRepo runs one refresh pass for the named repo: the release listing
// and the latest-release lookup are fetched concurrently, each conditional
// on the entity tag recorded by the previous pass, and each outcome is
// applied to the repo independently. Upstream failures are logged and leave
// the repo's previous state in place; they do not fail the pass. The error
// return is reserved for cancellation and for repos the provider does not
// know.
func (p *Provider) UpdateRepo(ctx context.Context, owner, name string) error {
	repo, ok := p.Repo(owner, name)
	if !ok {
		return errors.Wrapf(catalog.ErrRepoNotFound, "%s/%s", owner, name)
	}
	log := p.log.With(
		zap.String("repo", owner+"/"+name),
		zap.String("pass", uuid.NewString()),
	)
	var g errgroup.Group
	g.Go(func() error { return p.updateReleases(ctx, log, owner, name, repo.ReleasesETag()) })
	g.Go(func() error { return p.updateLatest(ctx, log, owner, name, repo.LatestETag()) })
	return g.Wait()
}

// updateReleases refreshes the repo's release set. Releases that fail to
// transform are dropped from this pass and the listing's entity tag is not
// advanced, so the next poll retries them; the releases that did transform
// are still installed.
func (p *Provider) updateReleases(ctx context.Context, log *zap.Logger, owner, name string, etag catalog.ETag) error {
	resp, err := p.client.ListReleases(ctx, owner, name, etag)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn("repo has no release listing upstream", zap.Error(err))
		return nil
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("listing releases failed", zap.Error(err))
		return nil
	case resp == nil:
		log.Info("releases unchanged", zap.String("etag", etag.String()))
		return nil
	}

	kept, manifests, failures := p.collectManifests(ctx, owner, name, resp.Releases)
	releases, transformFailures := Transform(kept, manifests)
	failures = append(failures, transformFailures...)
	for _, ferr := range failures {
		log.Warn("release failed to transform", zap.Error(ferr))
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	newETag := resp.ETag
	if len(failures) > 0 {
		// Keep the stale tag so the next poll re-fetches the listing and
		// retries the failed releases.
		newETag = etag
	}
	if err := p.ReplaceRepo(owner, name, func(r catalog.Repo) catalog.Repo {
		r.SetReleases(releases)
		r.SetReleasesETag(newETag)
		r.SetLastUpdated(time.Now())
		return r
	}); err != nil {
		return err
	}
	log.Info("releases updated",
		zap.Int("installed", len(releases)),
		zap.Int("failed", len(failures)),
		zap.String("etag", newETag.String()),
	)
	return nil
}

// collectManifests fetches the manifest assets attached to each release. A
// release whose manifest cannot be fetched is dropped from the returned
// slice and reported in the failures.
func (p *Provider) collectManifests(ctx context.Context, owner, name string, raw []Release) ([]Release, map[uint64][]*Manifest, []error) {
	kept := make([]Release, 0, len(raw))
	manifests := make(map[uint64][]*Manifest)
	var failures []error
	for _, rel := range raw {
		if rel.Draft || rel.Prerelease {
			// Transform drops these; don't fetch their manifests.
			kept = append(kept, rel)
			continue
		}
		failed := false
		for _, a := range rel.Assets {
			if !IsManifest(a.Name) {
				continue
			}
			m, err := p.client.FetchManifest(ctx, owner, name, a.ID, LogicalName(a.Name))
			if err != nil {
				failures = append(failures, errors.Wrapf(err, "release %q manifest %q", rel.TagName, a.Name))
				failed = true
				break
			}
			manifests[rel.ID] = append(manifests[rel.ID], m)
		}
		if !failed {
			kept = append(kept, rel)
		}
	}
	return kept, manifests, failures
}

// updateLatest refreshes which release the repo reports as latest.
func (p *Provider) updateLatest(ctx context.Context, log *zap.Logger, owner, name string, etag catalog.ETag) error {
	resp, err := p.client.LatestRelease(ctx, owner, name, etag)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Warn("repo has no latest release upstream", zap.Error(err))
		return nil
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("fetching latest release failed", zap.Error(err))
		return nil
	case resp == nil:
		log.Info("latest release unchanged", zap.String("etag", etag.String()))
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := p.ReplaceRepo(owner, name, func(r catalog.Repo) catalog.Repo {
		r.SetLatestTag(resp.Release.TagName)
		r.SetLatestETag(resp.ETag)
		r.SetLastUpdated(time.Now())
		return r
	}); err != nil {
		return err
	}
	log.Info("latest release updated",
		zap.String("tag", resp.Release.TagName),
		zap.String("etag", resp.ETag.String()),
	)
	return nil
}
