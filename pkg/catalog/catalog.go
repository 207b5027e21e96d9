// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog maintains the in-memory tree of release metadata served by
// artifetch: providers at the root, then repos, releases, targets, and assets.
//
// Entities are value types. Collection-valued fields are only replaced
// wholesale through Set* methods which rebuild the by-name indexes, so a
// snapshot handed to a reader never changes underneath it.
package catalog

import (
	"iter"
	"net/url"

	"github.com/pkg/errors"
)

// Asset is a single downloadable artifact within a target.
type Asset struct {
	name        string
	downloadURL *url.URL
}

// NewAsset builds an Asset, validating that downloadURL is an absolute URI.
func NewAsset(name, downloadURL string) (Asset, error) {
	u, err := url.Parse(downloadURL)
	if err != nil {
		return Asset{}, errors.Wrapf(err, "parsing download url for asset %q", name)
	}
	if !u.IsAbs() {
		return Asset{}, errors.Errorf("download url for asset %q is not absolute: %q", name, downloadURL)
	}
	return Asset{name: name, downloadURL: u}, nil
}

// Name returns the asset's logical name.
func (a Asset) Name() string { return a.name }

// DownloadURL returns the location clients are redirected to.
func (a Asset) DownloadURL() *url.URL { return a.downloadURL }

// Target groups the assets built for one platform, e.g. "x86_64-linux".
type Target struct {
	name   string
	assets map[string]Asset
}

// NewTarget builds an empty Target.
func NewTarget(name string) Target {
	return Target{name: name}
}

// Name returns the target's platform name.
func (t Target) Name() string { return t.name }

// Asset returns the named asset, if present.
func (t Target) Asset(name string) (Asset, bool) {
	a, ok := t.assets[name]
	return a, ok
}

// Assets iterates the target's assets in unspecified order.
func (t Target) Assets() iter.Seq[Asset] {
	return func(yield func(Asset) bool) {
		for _, a := range t.assets {
			if !yield(a) {
				return
			}
		}
	}
}

// SetAssets replaces the target's assets, rebuilding the by-name index.
// Later entries win on duplicate names.
func (t *Target) SetAssets(assets []Asset) {
	m := make(map[string]Asset, len(assets))
	for _, a := range assets {
		m[a.name] = a
	}
	t.assets = m
}

// Release is one published release of a repo, keyed by its upstream tag.
type Release struct {
	id      uint64
	tag     string
	targets map[string]Target
}

// NewRelease builds a Release with no targets.
func NewRelease(id uint64, tag string) Release {
	return Release{id: id, tag: tag}
}

// ID returns the provider-assigned release identifier.
func (r Release) ID() uint64 { return r.id }

// Tag returns the release's version tag, e.g. "v1.2.0".
func (r Release) Tag() string { return r.tag }

// Target returns the named target, if present.
func (r Release) Target(name string) (Target, bool) {
	t, ok := r.targets[name]
	return t, ok
}

// Targets iterates the release's targets in unspecified order.
func (r Release) Targets() iter.Seq[Target] {
	return func(yield func(Target) bool) {
		for _, t := range r.targets {
			if !yield(t) {
				return
			}
		}
	}
}

// SetTargets replaces the release's targets, rebuilding the by-name index.
func (r *Release) SetTargets(targets []Target) {
	m := make(map[string]Target, len(targets))
	for _, t := range targets {
		m[t.name] = t
	}
	r.targets = m
}
