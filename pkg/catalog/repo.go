// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"iter"
	"time"
)

// DefaultPollInterval is how often a repo is refreshed from its provider
// unless configured otherwise.
const DefaultPollInterval = 30 * time.Second

// ETag is an opaque entity tag for a cached upstream response. The zero
// value means no tag has been recorded yet.
type ETag string

// String returns the tag verbatim, as sent in conditional request headers.
func (e ETag) String() string { return string(e) }

// Repo is the replaceable unit of the catalog: one upstream repository's
// releases plus the polling state used to keep them fresh.
type Repo struct {
	owner        string
	name         string
	releases     map[string]Release
	latestTag    string
	releasesETag ETag
	latestETag   ETag
	pollInterval time.Duration
	lastUpdated  time.Time
}

// NewRepo builds an empty Repo polled at DefaultPollInterval.
func NewRepo(owner, name string) Repo {
	return Repo{owner: owner, name: name, pollInterval: DefaultPollInterval}
}

// Owner returns the account or organization owning the repo.
func (r Repo) Owner() string { return r.owner }

// Name returns the repo's name within its owner.
func (r Repo) Name() string { return r.name }

// Release returns the release with the given tag, if present.
func (r Repo) Release(tag string) (Release, bool) {
	rel, ok := r.releases[tag]
	return rel, ok
}

// Releases iterates the repo's releases in unspecified order.
func (r Repo) Releases() iter.Seq[Release] {
	return func(yield func(Release) bool) {
		for _, rel := range r.releases {
			if !yield(rel) {
				return
			}
		}
	}
}

// LatestTag returns the tag the provider reports as latest. The second
// return is false if no latest release has been recorded.
func (r Repo) LatestTag() (string, bool) {
	return r.latestTag, r.latestTag != ""
}

// LatestRelease resolves the latest tag against the installed releases. It
// returns false when no latest tag is recorded or when the tag names a
// release that has not been installed yet.
func (r Repo) LatestRelease() (Release, bool) {
	if r.latestTag == "" {
		return Release{}, false
	}
	rel, ok := r.releases[r.latestTag]
	return rel, ok
}

// ReleasesETag returns the entity tag of the last release listing applied.
func (r Repo) ReleasesETag() ETag { return r.releasesETag }

// LatestETag returns the entity tag of the last latest-release lookup applied.
func (r Repo) LatestETag() ETag { return r.latestETag }

// PollInterval returns the spacing between refresh passes for this repo.
func (r Repo) PollInterval() time.Duration { return r.pollInterval }

// LastUpdated returns when a refresh pass last wrote to this repo.
func (r Repo) LastUpdated() time.Time { return r.lastUpdated }

// SetReleases replaces the repo's releases, rebuilding the by-tag index.
func (r *Repo) SetReleases(releases []Release) {
	m := make(map[string]Release, len(releases))
	for _, rel := range releases {
		m[rel.tag] = rel
	}
	r.releases = m
}

// SetLatestTag records the tag the provider reports as latest.
func (r *Repo) SetLatestTag(tag string) { r.latestTag = tag }

// SetReleasesETag records the entity tag for the release listing.
func (r *Repo) SetReleasesETag(etag ETag) { r.releasesETag = etag }

// SetLatestETag records the entity tag for the latest-release lookup.
func (r *Repo) SetLatestETag(etag ETag) { r.latestETag = etag }

// SetPollInterval overrides the spacing between refresh passes.
func (r *Repo) SetPollInterval(d time.Duration) { r.pollInterval = d }

// SetLastUpdated records when a refresh pass last wrote to this repo.
func (r *Repo) SetLastUpdated(t time.Time) { r.lastUpdated = t }
