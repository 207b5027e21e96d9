// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalogtest provides catalog fakes for tests.
package catalogtest

import (
	"context"

	"github.com/artifetch/artifetch/pkg/catalog"
)

// Provider is a catalog.Provider backed by a plain store, with an optional
// hook standing in for the upstream refresh.
type Provider struct {
	*catalog.Store
	DomainName string
	Update     func(ctx context.Context, owner, name string) error
}

var _ catalog.Provider = (*Provider)(nil)

// Domain returns the configured domain name.
func (p *Provider) Domain() string { return p.DomainName }

// UpdateRepo invokes the Update hook, if any.
func (p *Provider) UpdateRepo(ctx context.Context, owner, name string) error {
	if p.Update != nil {
		return p.Update(ctx, owner, name)
	}
	return nil
}
