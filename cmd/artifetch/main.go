// Copyright 2025 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// The artifetch binary mirrors release metadata from configured GitHub
// repositories and serves the catalog as a plain-text HTTP API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/artifetch/artifetch/internal/config"
	"github.com/artifetch/artifetch/internal/web"
	"github.com/artifetch/artifetch/pkg/catalog"
	"github.com/artifetch/artifetch/pkg/provider/github"
	"github.com/artifetch/artifetch/pkg/updater"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at link time for release builds.
var version = "devel"

// shutdownGrace bounds how long in-flight HTTP requests may run after a
// shutdown signal.
const shutdownGrace = 10 * time.Second

var configPath string

var rootCmd = &cobra.Command{
	Use:   "artifetch",
	Short: "Serve a browsable catalog of release artifacts mirrored from GitHub",
	// Silence errors because main prints them itself.
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the artifetch version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version)
	},
}

// defaultConfigPath resolves $XDG_CONFIG_HOME/artifetch/config.yaml, falling
// back to ~/.config.
func defaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "artifetch", "config.yaml")
}

func run(ctx context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "building logger")
	}
	defer logger.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	reg, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	wait, err := updater.SpawnAll(ctx, reg, logger)
	if err != nil {
		return errors.Wrap(err, "spawning updaters")
	}

	srv := &http.Server{Addr: cfg.BindAddr, Handler: web.Handler(reg, logger)}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	logger.Info("serving", zap.String("addr", cfg.BindAddr), zap.String("version", version))

	select {
	case err := <-serveErr:
		stop()
		wait()
		return errors.Wrap(err, "serving http")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
	wait()
	return nil
}

// buildRegistry assembles one provider per configured registry entry, each
// seeded with its empty repos.
func buildRegistry(cfg *config.Config, logger *zap.Logger) (*catalog.Registry, error) {
	reg := catalog.NewRegistry()
	for domain, entry := range cfg.Registry {
		repos := make([]catalog.Repo, 0, len(entry.Repos))
		for _, ref := range entry.Repos {
			r := catalog.NewRepo(ref.Owner, ref.Name)
			if entry.PollInterval != 0 {
				r.SetPollInterval(entry.PollInterval)
			}
			repos = append(repos, r)
		}
		p, err := github.NewProvider(github.Config{
			Domain:     domain,
			OAuthToken: entry.OAuthToken,
			Repos:      repos,
			Timeout:    cfg.RequestTimeout,
			Logger:     logger,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "building provider for %q", domain)
		}
		reg.Register(p)
	}
	return reg, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the configuration file")
	rootCmd.AddCommand(versionCmd)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
