// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"github.com/artifetch/artifetch/pkg/catalog"
	"github.com/pkg/errors"
)

// Transform converts upstream releases into catalog releases using each
// release's manifests, keyed by release ID. Draft and prerelease entries
// are dropped. A release fails, without affecting the others, when a
// manifest names an asset the release does not carry or an asset's download
// URL is invalid; the failures are returned alongside the clean releases.
func Transform(raw []Release, manifests map[uint64][]*Manifest) ([]catalog.Release, []error) {
	releases := make([]catalog.Release, 0, len(raw))
	var failures []error
	for _, rel := range raw {
		if rel.Draft || rel.Prerelease {
			continue
		}
		out, err := transformRelease(rel, manifests[rel.ID])
		if err != nil {
			failures = append(failures, errors.Wrapf(err, "release %q", rel.TagName))
			continue
		}
		releases = append(releases, out)
	}
	return releases, failures
}

// transformRelease restructures one release from upstream's asset-first
// shape into the catalog's target-first shape.
func transformRelease(rel Release, manifests []*Manifest) (catalog.Release, error) {
	byName := make(map[string]Asset, len(rel.Assets))
	for _, a := range rel.Assets {
		byName[a.Name] = a
	}
	grouped := make(map[string][]catalog.Asset)
	for _, m := range manifests {
		for _, entry := range m.Entries {
			raw, ok := byName[entry.Asset]
			if !ok {
				return catalog.Release{}, &MissingAssetError{Manifest: m.Name, Asset: entry.Asset}
			}
			asset, err := catalog.NewAsset(m.Name, raw.BrowserDownloadURL)
			if err != nil {
				return catalog.Release{}, err
			}
			grouped[entry.Target] = append(grouped[entry.Target], asset)
		}
	}
	out := catalog.NewRelease(rel.ID, rel.TagName)
	targets := make([]catalog.Target, 0, len(grouped))
	for name, assets := range grouped {
		t := catalog.NewTarget(name)
		t.SetAssets(assets)
		targets = append(targets, t)
	}
	out.SetTargets(targets)
	return out, nil
}
