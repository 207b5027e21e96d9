// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package github mirrors release metadata from GitHub or GitHub Enterprise
// repositories into the artifetch catalog.
package github

import (
	"time"

	"github.com/artifetch/artifetch/internal/httpx"
	"github.com/artifetch/artifetch/pkg/catalog"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config configures a Provider.
type Config struct {
	// Domain is the GitHub domain served, e.g. "github.com" (the default)
	// or a GitHub Enterprise host.
	Domain string
	// OAuthToken authenticates requests against the domain's API.
	OAuthToken string
	// Repos is the fixed set of repositories to mirror.
	Repos []catalog.Repo
	// Timeout bounds each upstream request. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the transport. Intended for tests.
	HTTPClient httpx.BasicClient
	// Logger receives provider activity. Nil discards it.
	Logger *zap.Logger
}

// Provider holds the mirrored slice of the catalog for one GitHub domain
// and knows how to refresh it. Reads are served from the embedded store;
// refresh passes go through UpdateRepo.
type Provider struct {
	*catalog.Store
	domain string
	client *Client
	log    *zap.Logger
}

var _ catalog.Provider = (*Provider)(nil)

// NewProvider builds a Provider and its API client. It fails if the client
// cannot be built, e.g. on a malformed token.
func NewProvider(cfg Config) (*Provider, error) {
	domain := cfg.Domain
	if domain == "" {
		domain = PublicDomain
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("provider", domain))
	client, err := NewClient(ClientConfig{
		Domain:     domain,
		OAuthToken: cfg.OAuthToken,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
		Logger:     log,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "building client for %s", domain)
	}
	return &Provider{
		Store:  catalog.NewStore(cfg.Repos),
		domain: domain,
		client: client,
		log:    log,
	}, nil
}

// Domain returns the GitHub domain this provider serves.
func (p *Provider) Domain() string { return p.domain }
