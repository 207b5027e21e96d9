// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package web projects the catalog as a hierarchical plain-text HTTP API:
// collection resources end in .txt and list one name per line, and asset
// resources redirect to the artifact's upstream download location.
package web

import (
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/artifetch/artifetch/pkg/catalog"
	"go.uber.org/zap"
)

// latestVersion is the version path segment resolving to a repo's latest
// release.
const latestVersion = "latest"

// Handler builds the HTTP handler serving the /v1 catalog tree.
func Handler(reg *catalog.Registry, logger *zap.Logger) http.Handler {
	s := &server{reg: reg}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/providers.txt", s.handleProviders)
	mux.HandleFunc("GET /v1/providers/{provider}/repos.txt", s.handleRepos)
	mux.HandleFunc("GET /v1/providers/{provider}/repos/{owner}/{repo}/releases.txt", s.handleReleases)
	mux.HandleFunc("GET /v1/providers/{provider}/repos/{owner}/{repo}/releases/{version}/targets.txt", s.handleTargets)
	mux.HandleFunc("GET /v1/providers/{provider}/repos/{owner}/{repo}/releases/{version}/targets/{target}/assets.txt", s.handleAssets)
	mux.HandleFunc("GET /v1/providers/{provider}/repos/{owner}/{repo}/releases/{version}/targets/{target}/assets/{asset}", s.handleAsset)
	return accessLog(logger, mux)
}

type server struct {
	reg *catalog.Registry
}

// The lookup helpers resolve one path segment each, deeper helpers building
// on shallower ones. Every lookup reads a point-in-time repo snapshot, so a
// response is internally consistent even while updaters write.

func (s *server) provider(r *http.Request) (catalog.Provider, bool) {
	return s.reg.Provider(r.PathValue("provider"))
}

func (s *server) repo(r *http.Request) (catalog.Repo, bool) {
	p, ok := s.provider(r)
	if !ok {
		return catalog.Repo{}, false
	}
	return p.Repo(r.PathValue("owner"), r.PathValue("repo"))
}

func (s *server) release(r *http.Request) (catalog.Release, bool) {
	repo, ok := s.repo(r)
	if !ok {
		return catalog.Release{}, false
	}
	if version := r.PathValue("version"); version != latestVersion {
		return repo.Release(version)
	}
	return repo.LatestRelease()
}

func (s *server) target(r *http.Request) (catalog.Target, bool) {
	rel, ok := s.release(r)
	if !ok {
		return catalog.Target{}, false
	}
	return rel.Target(r.PathValue("target"))
}

func (s *server) asset(r *http.Request) (catalog.Asset, bool) {
	tgt, ok := s.target(r)
	if !ok {
		return catalog.Asset{}, false
	}
	return tgt.Asset(r.PathValue("asset"))
}

func (s *server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeLines(w, s.reg.Providers(), func(p catalog.Provider) string { return p.Domain() })
}

func (s *server) handleRepos(w http.ResponseWriter, r *http.Request) {
	p, ok := s.provider(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeLines(w, p.Repos(), func(repo catalog.Repo) string { return repo.Owner() + "/" + repo.Name() })
}

func (s *server) handleReleases(w http.ResponseWriter, r *http.Request) {
	repo, ok := s.repo(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeLines(w, repo.Releases(), func(rel catalog.Release) string { return rel.Tag() })
}

func (s *server) handleTargets(w http.ResponseWriter, r *http.Request) {
	rel, ok := s.release(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeLines(w, rel.Targets(), func(t catalog.Target) string { return t.Name() })
}

func (s *server) handleAssets(w http.ResponseWriter, r *http.Request) {
	tgt, ok := s.target(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeLines(w, tgt.Assets(), func(a catalog.Asset) string { return a.Name() })
}

func (s *server) handleAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.asset(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, a.DownloadURL().String(), http.StatusFound)
}

// writeLines renders a collection as text/plain, one entry per line.
func writeLines[T any](w http.ResponseWriter, seq iter.Seq[T], line func(T) string) {
	var b strings.Builder
	for v := range seq {
		b.WriteString(line(v))
		b.WriteByte('\n')
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(b.String()))
}

// accessLog logs one line per request served.
func accessLog(logger *zap.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
