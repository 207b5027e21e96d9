// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package urlx provides small net/url helpers.
package urlx

import "net/url"

// MustParse will call url.Parse and panic if there is an error, returning on success.
// Reserve for static URLs known to be well-formed.
func MustParse(rawURL string) *url.URL {
	if u, err := url.Parse(rawURL); err != nil {
		panic(err)
	} else {
		return u
	}
}
