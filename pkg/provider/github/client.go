// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/artifetch/artifetch/internal/httpx"
	"github.com/artifetch/artifetch/internal/urlx"
	"github.com/artifetch/artifetch/pkg/catalog"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// PublicDomain is the domain served by the public GitHub API.
	PublicDomain = "github.com"

	acceptJSON        = "application/vnd.github.v3+json"
	acceptOctetStream = "application/octet-stream"
	userAgent         = "artifetch"
)

var publicAPIRoot = urlx.MustParse("https://api.github.com")

// apiRoot returns the API base URL for a GitHub or GitHub Enterprise domain.
func apiRoot(domain string) *url.URL {
	if domain == "" || domain == PublicDomain {
		return publicAPIRoot
	}
	return &url.URL{Scheme: "https", Host: domain, Path: "/api/v3"}
}

// Release is a repository release as returned by the GitHub API.
type Release struct {
	ID         uint64    `json:"id"`
	TagName    string    `json:"tag_name"`
	URL        string    `json:"url"`
	Draft      bool      `json:"draft"`
	Prerelease bool      `json:"prerelease"`
	CreatedAt  time.Time `json:"created_at"`
	Assets     []Asset   `json:"assets"`
}

// Asset is a release asset as returned by the GitHub API.
type Asset struct {
	ID                 uint64    `json:"id"`
	Name               string    `json:"name"`
	URL                string    `json:"url"`
	BrowserDownloadURL string    `json:"browser_download_url"`
	ContentType        string    `json:"content_type"`
	Size               uint64    `json:"size"`
	DownloadCount      uint64    `json:"download_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// ReleasesResponse is a release listing plus the entity tag it was served
// with.
type ReleasesResponse struct {
	ETag     catalog.ETag
	Releases []Release
}

// ReleaseResponse is a single release plus the entity tag it was served
// with.
type ReleaseResponse struct {
	ETag    catalog.ETag
	Release Release
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Domain selects the API root: PublicDomain (or empty) for the public
	// API, anything else for a GitHub Enterprise host.
	Domain string
	// OAuthToken authenticates every request.
	OAuthToken string
	// Timeout bounds each request when the default HTTP client is used.
	// Zero means no client-side timeout.
	Timeout time.Duration
	// HTTPClient overrides the transport beneath the header middleware.
	// Intended for tests.
	HTTPClient httpx.BasicClient
	// Logger receives warnings about degraded upstream responses. Nil
	// discards them.
	Logger *zap.Logger
}

// Client is a typed client for the subset of the GitHub releases API that
// artifetch mirrors. All requests carry the API media type, a User-Agent,
// and token authorization.
type Client struct {
	http httpx.BasicClient
	base *url.URL
	log  *zap.Logger
}

// NewClient builds a Client. It fails if the token cannot legally be sent
// as an HTTP header value.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := validateToken(cfg.OAuthToken); err != nil {
		return nil, err
	}
	inner := cfg.HTTPClient
	if inner == nil {
		inner = &http.Client{Timeout: cfg.Timeout}
	}
	var hc httpx.BasicClient = &httpx.WithAuthToken{
		BasicClient: inner,
		Token:       &oauth2.Token{AccessToken: cfg.OAuthToken, TokenType: "token"},
	}
	hc = &httpx.WithDefaultHeaders{
		BasicClient: hc,
		Header:      http.Header{"Accept": []string{acceptJSON}},
	}
	hc = &httpx.WithUserAgent{BasicClient: hc, UserAgent: userAgent}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{http: hc, base: apiRoot(cfg.Domain), log: log}, nil
}

// validateToken rejects tokens that cannot appear in an Authorization
// header value. Tokens are restricted to visible ASCII.
func validateToken(token string) error {
	for i := 0; i < len(token); i++ {
		if c := token[i]; c < 0x21 || c > 0x7e {
			return errors.Errorf("oauth token contains an invalid character at index %d", i)
		}
	}
	return nil
}

// ListReleases fetches the first page of the repo's release listing. A nil
// response with a nil error means the listing is unchanged relative to etag.
func (c *Client) ListReleases(ctx context.Context, owner, name string, etag catalog.ETag) (*ReleasesResponse, error) {
	u := c.base.JoinPath("repos", owner, name, "releases")
	p, err := fetchJSON[[]Release](ctx, c, u, etag)
	if err != nil || p == nil {
		return nil, err
	}
	return &ReleasesResponse{ETag: p.etag, Releases: p.value}, nil
}

// LatestRelease fetches the release the API reports as latest. A nil
// response with a nil error means it is unchanged relative to etag.
func (c *Client) LatestRelease(ctx context.Context, owner, name string, etag catalog.ETag) (*ReleaseResponse, error) {
	u := c.base.JoinPath("repos", owner, name, "releases", "latest")
	p, err := fetchJSON[Release](ctx, c, u, etag)
	if err != nil || p == nil {
		return nil, err
	}
	return &ReleaseResponse{ETag: p.etag, Release: p.value}, nil
}

// FetchManifest downloads the manifest stored as the given release asset
// and parses it under the provided logical name.
func (c *Client) FetchManifest(ctx context.Context, owner, name string, assetID uint64, logicalName string) (*Manifest, error) {
	u := c.base.JoinPath("repos", owner, name, "releases", "assets", strconv.FormatUint(assetID, 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", acceptOctetStream)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	return ParseManifest(logicalName, b)
}

// payload is a decoded response body plus its entity tag.
type payload[T any] struct {
	etag  catalog.ETag
	value T
}

// fetchJSON issues a conditional GET for a JSON document. It returns nil
// without error on 304 Not Modified and ErrNotFound on 404.
func fetchJSON[T any](ctx context.Context, c *Client, u *url.URL, etag catalog.ETag) (*payload[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag.String())
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotModified:
		return nil, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var v T
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return nil, errors.Wrap(err, "decoding response")
		}
		return &payload[T]{etag: c.responseETag(u, resp), value: v}, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, decodeAPIError(resp)
	}
}

// decodeAPIError converts a non-success response into an *APIError.
func decodeAPIError(resp *http.Response) error {
	var apiErr APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		return errors.Wrapf(err, "decoding error response (status %s)", resp.Status)
	}
	return &apiErr
}

// responseETag extracts the ETag header. An absent or non-UTF-8 value is
// recorded as no tag, with a warning, so the next poll fetches
// unconditionally.
func (c *Client) responseETag(u *url.URL, resp *http.Response) catalog.ETag {
	v := resp.Header.Get("ETag")
	switch {
	case v == "":
		c.log.Warn("response has no etag header", zap.String("url", u.String()))
		return ""
	case !utf8.ValidString(v):
		c.log.Warn("response etag is not valid utf-8", zap.String("url", u.String()))
		return ""
	}
	return catalog.ETag(v)
}
