// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"bufio"
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ManifestSuffix marks a release asset as a manifest. The remainder of the
// asset name is the manifest's logical name: "mytool.manifest.txt" maps the
// assets of the "mytool" tool.
const ManifestSuffix = ".manifest.txt"

// IsManifest reports whether an asset name denotes a manifest.
func IsManifest(assetName string) bool {
	return strings.HasSuffix(assetName, ManifestSuffix)
}

// LogicalName strips ManifestSuffix from an asset name.
func LogicalName(assetName string) string {
	return strings.TrimSuffix(assetName, ManifestSuffix)
}

// Manifest maps a release's assets onto platform targets.
type Manifest struct {
	// Name is the manifest's logical name.
	Name string
	// Entries are the target/asset pairs, in file order.
	Entries []ManifestEntry
}

// ManifestEntry is one line of a manifest: the target it describes and the
// release asset serving it.
type ManifestEntry struct {
	Target string
	Asset  string
}

// String renders the entry in manifest file form.
func (e ManifestEntry) String() string {
	return e.Target + " " + e.Asset
}

// ParseManifestEntry parses a manifest line of the form "target asset".
func ParseManifestEntry(line string) (ManifestEntry, error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 2:
		return ManifestEntry{Target: fields[0], Asset: fields[1]}, nil
	case len(fields) < 2:
		return ManifestEntry{}, &ManifestEntryError{Line: line, Reason: "missing whitespace delimiter between fields"}
	default:
		return ManifestEntry{}, &ManifestEntryError{Line: line, Reason: "more than two fields"}
	}
}

// ParseManifest parses a manifest body under the given logical name. The
// body must be UTF-8; blank lines are skipped.
func ParseManifest(name string, b []byte) (*Manifest, error) {
	if !utf8.Valid(b) {
		return nil, errors.Errorf("manifest %q is not valid utf-8", name)
	}
	m := &Manifest{Name: name}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseManifestEntry(line)
		if err != nil {
			return nil, errors.Wrapf(err, "manifest %q line %d", name, n)
		}
		m.Entries = append(m.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "scanning manifest %q", name)
	}
	return m, nil
}
