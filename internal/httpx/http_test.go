// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package httpx

import (
	"net/http"
	"testing"

	"github.com/artifetch/artifetch/internal/httpx/httpxtest"
	"golang.org/x/oauth2"
)

func okCall() httpxtest.Call {
	return httpxtest.Call{Response: &http.Response{StatusCode: http.StatusOK, Body: httpxtest.Body("")}}
}

func TestWithUserAgent(t *testing.T) {
	mock := &httpxtest.MockClient{Calls: []httpxtest.Call{okCall()}, SkipURLValidation: true}
	client := &WithUserAgent{BasicClient: mock, UserAgent: "artifetch"}
	req, err := http.NewRequest(http.MethodGet, "https://api.github.com/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Do(req); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := mock.Requests[0].Header.Get("User-Agent"); got != "artifetch" {
		t.Errorf("User-Agent = %q, want artifetch", got)
	}
}

func TestWithDefaultHeaders(t *testing.T) {
	for _, tc := range []struct {
		name       string
		reqAccept  string
		wantAccept string
	}{
		{
			name:       "default applied",
			wantAccept: "application/vnd.github.v3+json",
		},
		{
			name:       "request header wins",
			reqAccept:  "application/octet-stream",
			wantAccept: "application/octet-stream",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mock := &httpxtest.MockClient{Calls: []httpxtest.Call{okCall()}, SkipURLValidation: true}
			client := &WithDefaultHeaders{
				BasicClient: mock,
				Header:      http.Header{"Accept": []string{"application/vnd.github.v3+json"}},
			}
			req, err := http.NewRequest(http.MethodGet, "https://api.github.com/", nil)
			if err != nil {
				t.Fatal(err)
			}
			if tc.reqAccept != "" {
				req.Header.Set("Accept", tc.reqAccept)
			}
			if _, err := client.Do(req); err != nil {
				t.Fatalf("Do: %v", err)
			}
			if got := mock.Requests[0].Header.Get("Accept"); got != tc.wantAccept {
				t.Errorf("Accept = %q, want %q", got, tc.wantAccept)
			}
		})
	}
}

func TestWithAuthToken(t *testing.T) {
	mock := &httpxtest.MockClient{Calls: []httpxtest.Call{okCall()}, SkipURLValidation: true}
	client := &WithAuthToken{
		BasicClient: mock,
		Token:       &oauth2.Token{AccessToken: "abc123", TokenType: "token"},
	}
	req, err := http.NewRequest(http.MethodGet, "https://api.github.com/", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Do(req); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := mock.Requests[0].Header.Get("Authorization"); got != "token abc123" {
		t.Errorf("Authorization = %q, want %q", got, "token abc123")
	}
}
