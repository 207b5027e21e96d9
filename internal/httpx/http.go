// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpx provides a simpler http.Client abstraction and derivative uses.
package httpx

import (
	"net/http"

	"golang.org/x/oauth2"
)

// BasicClient is a simpler http.Client that only requires a Do method.
type BasicClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ BasicClient = http.DefaultClient

// WithUserAgent is a basic HTTP client that adds a User-Agent header.
type WithUserAgent struct {
	BasicClient
	UserAgent string
}

var _ BasicClient = &WithUserAgent{}

// Do adds the User-Agent header and sends the request.
func (c *WithUserAgent) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.UserAgent)
	return c.BasicClient.Do(req)
}

// WithDefaultHeaders is a basic HTTP client that fills in headers the
// request does not already set.
type WithDefaultHeaders struct {
	BasicClient
	Header http.Header
}

var _ BasicClient = &WithDefaultHeaders{}

// Do adds the default headers and sends the request. Headers already
// present on the request win over defaults.
func (c *WithDefaultHeaders) Do(req *http.Request) (*http.Response, error) {
	for key, values := range c.Header {
		if _, ok := req.Header[key]; ok {
			continue
		}
		req.Header[key] = values
	}
	return c.BasicClient.Do(req)
}

// WithAuthToken is a basic HTTP client that authorizes requests with an
// OAuth token.
type WithAuthToken struct {
	BasicClient
	Token *oauth2.Token
}

var _ BasicClient = &WithAuthToken{}

// Do adds the Authorization header and sends the request.
func (c *WithAuthToken) Do(req *http.Request) (*http.Response, error) {
	c.Token.SetAuthHeader(req)
	return c.BasicClient.Do(req)
}
