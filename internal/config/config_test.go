// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	t.Setenv("ARTIFETCH_TEST_TOKEN", "abc123")
	t.Setenv("ARTIFETCH_TEST_PORT", "9000")
	for _, tc := range []struct {
		name    string
		yaml    string
		want    *Config
		wantErr string
	}{
		{
			name: "full config",
			yaml: `
bind_addr: 127.0.0.1:${ARTIFETCH_TEST_PORT}
request_timeout: 10s
registry:
  github.com:
    provider: github
    oauth_token: $ARTIFETCH_TEST_TOKEN
    poll_interval: 90s
    repos:
      - fnichol/mytool
      - acmecorp/othertool
`,
			want: &Config{
				BindAddr:       "127.0.0.1:9000",
				RequestTimeout: 10 * time.Second,
				Registry: map[string]Entry{
					"github.com": {
						Provider:     "github",
						OAuthToken:   "abc123",
						PollInterval: 90 * time.Second,
						Repos: []RepoRef{
							{Owner: "fnichol", Name: "mytool"},
							{Owner: "acmecorp", Name: "othertool"},
						},
					},
				},
			},
		},
		{
			name: "defaults",
			yaml: `
registry:
  github.example.com:
    provider: github
    oauth_token: literal-token
    repos: []
`,
			want: &Config{
				BindAddr:       DefaultBindAddr,
				RequestTimeout: DefaultRequestTimeout,
				Registry: map[string]Entry{
					"github.example.com": {
						Provider:   "github",
						OAuthToken: "literal-token",
						Repos:      []RepoRef{},
					},
				},
			},
		},
		{
			name: "provider kind defaults to github",
			yaml: `
registry:
  github.com:
    oauth_token: literal-token
    repos:
      - fnichol/mytool
`,
			want: &Config{
				BindAddr:       DefaultBindAddr,
				RequestTimeout: DefaultRequestTimeout,
				Registry: map[string]Entry{
					"github.com": {
						Provider:   ProviderGitHub,
						OAuthToken: "literal-token",
						Repos:      []RepoRef{{Owner: "fnichol", Name: "mytool"}},
					},
				},
			},
		},
		{
			name: "unknown key rejected",
			yaml: `
bind_addr: 0.0.0.0:8000
bind_adr: typo
`,
			wantErr: "decoding yaml",
		},
		{
			name: "unknown provider kind",
			yaml: `
registry:
  gitlab.com:
    provider: gitlab
    oauth_token: t
    repos: []
`,
			wantErr: "unknown provider kind",
		},
		{
			name: "missing oauth token",
			yaml: `
registry:
  github.com:
    provider: github
    repos: []
`,
			wantErr: "oauth_token is required",
		},
		{
			name: "unset variable in oauth token",
			yaml: `
registry:
  github.com:
    provider: github
    oauth_token: $ARTIFETCH_TEST_UNSET
    repos: []
`,
			wantErr: "expanding oauth_token",
		},
		{
			name: "repo missing slash",
			yaml: `
registry:
  github.com:
    provider: github
    oauth_token: t
    repos: [mytool]
`,
			wantErr: "exactly one slash",
		},
		{
			name: "repo with two slashes",
			yaml: `
registry:
  github.com:
    provider: github
    oauth_token: t
    repos: [a/b/c]
`,
			wantErr: "exactly one slash",
		},
		{
			name: "poll interval below minimum",
			yaml: `
registry:
  github.com:
    provider: github
    oauth_token: t
    poll_interval: 500ms
    repos: []
`,
			wantErr: "below the minimum",
		},
		{
			name: "non-positive request timeout",
			yaml: `
request_timeout: -5s
registry: {}
`,
			wantErr: "must be positive",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse([]byte(tc.yaml))
			if tc.wantErr != "" {
				if err == nil {
					t.Fatalf("Parse expected error containing %q, got none", tc.wantErr)
				}
				if !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("Parse error = %v, want containing %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("config diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRepoRef(t *testing.T) {
	ref, err := ParseRepoRef("fnichol/mytool")
	if err != nil {
		t.Fatalf("ParseRepoRef: %v", err)
	}
	if ref.Owner != "fnichol" || ref.Name != "mytool" {
		t.Errorf("ParseRepoRef = %+v, want {fnichol mytool}", ref)
	}
	if ref.String() != "fnichol/mytool" {
		t.Errorf("String() = %q, want fnichol/mytool", ref.String())
	}
	for _, bad := range []string{"", "mytool", "a/b/c", "/mytool", "fnichol/"} {
		if _, err := ParseRepoRef(bad); err == nil {
			t.Errorf("ParseRepoRef(%q) expected error, got none", bad)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
registry:
  github.com:
    provider: github
    oauth_token: t
    repos: [fnichol/mytool]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Registry["github.com"].Repos) != 1 {
		t.Errorf("Repos = %v, want one entry", cfg.Registry["github.com"].Repos)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load on missing file expected error, got none")
	}
}
