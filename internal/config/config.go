// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the artifetch service configuration from YAML.
//
// The bind_addr and oauth_token values may reference environment variables
// with $VAR or ${VAR}; references are expanded at load time and unset
// variables fail the load.
package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/artifetch/artifetch/internal/envx"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBindAddr is where the HTTP API listens unless configured.
	DefaultBindAddr = "0.0.0.0:8000"
	// DefaultRequestTimeout bounds each upstream HTTP request.
	DefaultRequestTimeout = 30 * time.Second
	// MinPollInterval is the smallest permitted per-repo poll interval.
	MinPollInterval = time.Second

	// ProviderGitHub names the GitHub provider kind in registry entries.
	ProviderGitHub = "github"
)

// Config is the validated service configuration.
type Config struct {
	// BindAddr is the listen address for the HTTP API.
	BindAddr string
	// RequestTimeout bounds each upstream HTTP request.
	RequestTimeout time.Duration
	// Registry maps provider domains to their entries.
	Registry map[string]Entry
}

// Entry configures one provider domain.
type Entry struct {
	// Provider is the provider kind, e.g. ProviderGitHub.
	Provider string
	// OAuthToken authenticates requests to the provider.
	OAuthToken string
	// PollInterval overrides the default per-repo refresh spacing. Zero
	// means the repos keep their default.
	PollInterval time.Duration
	// Repos lists the repositories to mirror.
	Repos []RepoRef
}

// RepoRef names one repository as owner and name.
type RepoRef struct {
	Owner string
	Name  string
}

func (r RepoRef) String() string { return r.Owner + "/" + r.Name }

// ParseRepoRef splits an "owner/name" reference.
func ParseRepoRef(s string) (RepoRef, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return RepoRef{}, errors.Errorf("repo %q must be of the form owner/name with exactly one slash", s)
	}
	if parts[0] == "" || parts[1] == "" {
		return RepoRef{}, errors.Errorf("repo %q has an empty owner or name", s)
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, nil
}

type rawConfig struct {
	BindAddr       string              `yaml:"bind_addr"`
	RequestTimeout string              `yaml:"request_timeout"`
	Registry       map[string]rawEntry `yaml:"registry"`
}

type rawEntry struct {
	Provider     string   `yaml:"provider"`
	OAuthToken   string   `yaml:"oauth_token"`
	PollInterval string   `yaml:"poll_interval"`
	Repos        []string `yaml:"repos"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	cfg, err := Parse(b)
	return cfg, errors.Wrapf(err, "config file %s", path)
}

// Parse decodes, expands, and validates a YAML configuration. Unknown keys
// are rejected.
func Parse(b []byte) (*Config, error) {
	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}

	bindAddr, err := envx.Expand(raw.BindAddr)
	if err != nil {
		return nil, errors.Wrap(err, "expanding bind_addr")
	}
	if bindAddr == "" {
		bindAddr = DefaultBindAddr
	}
	timeout := DefaultRequestTimeout
	if raw.RequestTimeout != "" {
		timeout, err = time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return nil, errors.Wrap(err, "parsing request_timeout")
		}
		if timeout <= 0 {
			return nil, errors.Errorf("request_timeout %s must be positive", timeout)
		}
	}

	cfg := &Config{
		BindAddr:       bindAddr,
		RequestTimeout: timeout,
		Registry:       make(map[string]Entry, len(raw.Registry)),
	}
	for domain, re := range raw.Registry {
		entry, err := parseEntry(re)
		if err != nil {
			return nil, errors.Wrapf(err, "registry entry %q", domain)
		}
		cfg.Registry[domain] = entry
	}
	return cfg, nil
}

func parseEntry(re rawEntry) (Entry, error) {
	if re.Provider == "" {
		re.Provider = ProviderGitHub
	}
	if re.Provider != ProviderGitHub {
		return Entry{}, errors.Errorf("unknown provider kind %q", re.Provider)
	}
	token, err := envx.Expand(re.OAuthToken)
	if err != nil {
		return Entry{}, errors.Wrap(err, "expanding oauth_token")
	}
	if token == "" {
		return Entry{}, errors.New("oauth_token is required")
	}
	var pollInterval time.Duration
	if re.PollInterval != "" {
		pollInterval, err = time.ParseDuration(re.PollInterval)
		if err != nil {
			return Entry{}, errors.Wrap(err, "parsing poll_interval")
		}
		if pollInterval < MinPollInterval {
			return Entry{}, errors.Errorf("poll_interval %s is below the minimum %s", pollInterval, MinPollInterval)
		}
	}
	entry := Entry{
		Provider:     re.Provider,
		OAuthToken:   token,
		PollInterval: pollInterval,
		Repos:        make([]RepoRef, 0, len(re.Repos)),
	}
	for _, s := range re.Repos {
		ref, err := ParseRepoRef(s)
		if err != nil {
			return Entry{}, err
		}
		entry.Repos = append(entry.Repos, ref)
	}
	return entry, nil
}
