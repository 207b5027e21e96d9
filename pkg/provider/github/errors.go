// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when the API reports 404 for a resource.
var ErrNotFound = errors.New("not found upstream")

// APIError is a structured error payload returned by the API.
type APIError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s (success=%t)", e.Message, e.Success)
}

// ManifestEntryError reports a manifest line that could not be parsed.
type ManifestEntryError struct {
	Line   string
	Reason string
}

func (e *ManifestEntryError) Error() string {
	return fmt.Sprintf("invalid manifest entry %q: %s", e.Line, e.Reason)
}

// MissingAssetError reports a manifest entry naming an asset the release
// does not carry.
type MissingAssetError struct {
	Manifest string
	Asset    string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("manifest %q references missing asset %q", e.Manifest, e.Asset)
}
