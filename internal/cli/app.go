// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the stores and the AI gateway into the bibliacore
// command tree. All components are constructed here and injected into the
// commands; nothing in the tree reaches for package-level state.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nexubible/bibliacore/internal/annotations"
	"github.com/nexubible/bibliacore/internal/bible"
	"github.com/nexubible/bibliacore/internal/config"
	"github.com/nexubible/bibliacore/internal/encyclopedia"
	"github.com/nexubible/bibliacore/internal/gemini"
	"github.com/nexubible/bibliacore/internal/kvstore"
	"github.com/nexubible/bibliacore/internal/logging"
	"github.com/nexubible/bibliacore/internal/progress"
	"github.com/nexubible/bibliacore/internal/secrets"
	"github.com/nexubible/bibliacore/internal/settings"
)

// App holds every constructed component for the lifetime of one command.
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	KV          *kvstore.Store
	Settings    *settings.Store
	Annotations *annotations.Store
	Progress    *progress.Store
	Bible       *bible.Service
	Reference   *encyclopedia.ReferenceIndex
	AICache     *encyclopedia.AICache
	AI          *gemini.Client
}

// NewApp constructs and wires every component from the given config.
// Missing content datasets degrade the affected feature; they do not fail
// construction.
func NewApp(cfg *config.Config, log *logrus.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	kv, err := kvstore.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}

	vault := secrets.NewFileVault(cfg.DataDir)
	settingsStore := settings.NewStore(kv, vault, log)

	bibleSvc, err := bible.Load(cfg.Datasets.BiblePath)
	if err != nil {
		log.WithError(err).Warn("scripture dataset unavailable, reader degraded")
	}

	reference, err := encyclopedia.NewReferenceIndex(cfg.Datasets.EncyclopediaPath, cfg.Datasets.LocationsPath, log)
	if err != nil {
		log.WithError(err).Warn("reference dataset unavailable, encyclopedia degraded")
	}
	if cfg.Datasets.Watch {
		if err := reference.Watch(500 * time.Millisecond); err != nil {
			log.WithError(err).Warn("dataset watcher unavailable")
		}
	}

	ai := gemini.NewClient(
		settingsStore.APIKey,
		log,
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTimeouts(
			time.Duration(cfg.Gemini.RequestTimeoutSecs)*time.Second,
			time.Duration(cfg.Gemini.ResourceTimeoutSecs)*time.Second,
		),
	)

	return &App{
		Config:      cfg,
		Log:         log,
		KV:          kv,
		Settings:    settingsStore,
		Annotations: annotations.NewStore(kv, log),
		Progress:    progress.NewStore(kv, log),
		Bible:       bibleSvc,
		Reference:   reference,
		AICache:     encyclopedia.NewAICache(kv),
		AI:          ai,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.Reference != nil {
		a.Reference.StopWatching()
	}
	return a.KV.Close()
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// Execute runs the bibliacore command tree.
func Execute() error {
	var cfgPath string
	var app *App

	rootCmd := &cobra.Command{
		Use:           "bibliacore",
		Short:         "Cititor al Bibliei românești cu enciclopedie și explicații AI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.Config
			var err error
			if cfgPath != "" {
				cfg, err = config.LoadFromPath(cfgPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}

			app, err = NewApp(cfg, logging.New(cfg.LogLevel))
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")

	appOf := func() *App { return app }

	rootCmd.AddCommand(readCmd(appOf))
	rootCmd.AddCommand(searchCmd(appOf))
	rootCmd.AddCommand(annotateCmd(appOf))
	rootCmd.AddCommand(progressCmd(appOf))
	rootCmd.AddCommand(encCmd(appOf))
	rootCmd.AddCommand(askCmd(appOf))
	rootCmd.AddCommand(settingsCmd(appOf))
	rootCmd.AddCommand(resetCmd(appOf))

	return rootCmd.Execute()
}
