package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/kharcha/internal/config"
	"github.com/Veraticus/kharcha/internal/engine"
	"github.com/Veraticus/kharcha/internal/llm"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/storage"
	"github.com/spf13/viper"
)

// app bundles the collaborators a command needs.
type app struct {
	settings *config.Settings
	locales  *locale.Store
	engine   *engine.Engine
	audit    *storage.SQLiteStorage
}

type appOptions struct {
	// audit opens the audit log when it is enabled in the settings.
	audit bool
	// watch hot-reloads the locale pack when locale.watch is set.
	watch bool
}

func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetViper())
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	pack, err := loadPack(settings.LocalePath)
	if err != nil {
		return nil, err
	}
	store := locale.NewStore(pack, slog.Default())

	if opts.watch && settings.LocaleWatch && settings.LocalePath != "" {
		if err := store.Watch(settings.LocalePath); err != nil {
			return nil, fmt.Errorf("failed to watch locale pack: %w", err)
		}
		slog.Info("Watching locale pack for changes", "path", settings.LocalePath)
	}

	extractor, err := createAIExtractor(settings)
	if err != nil {
		return nil, err
	}

	a := &app{settings: settings, locales: store}

	var cfg engine.Config
	if opts.audit && settings.AuditEnabled {
		a.audit, err = storage.Open(ctx, settings.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		cfg.Recorder = a.audit
	}

	a.engine, err = engine.New(store, extractor, cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

func (a *app) close() {
	if a.audit == nil {
		return
	}
	if err := a.audit.Close(); err != nil {
		slog.Warn("Failed to close audit log", "error", err)
	}
}

// loadPack reads the configured locale pack, or the embedded default when no path is set.
func loadPack(path string) (*locale.Pack, error) {
	if path == "" {
		return locale.Default()
	}
	return locale.Load(path)
}

// createAIExtractor builds the AI stage. Without a provider or API key the
// extractor reports every call as not configured and the engine falls back.
func createAIExtractor(settings *config.Settings) (*llm.Extractor, error) {
	var client llm.Client

	switch {
	case settings.AIEnabled():
		c, err := llm.NewClient(settings.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		client = c
		slog.Debug("AI stage enabled", "provider", settings.LLM.Provider, "model", settings.LLM.Model)
	case settings.LLM.Provider != "":
		slog.Warn("No API key for LLM provider, AI stage disabled", "provider", settings.LLM.Provider)
	default:
		slog.Debug("No LLM provider configured, AI stage disabled")
	}

	return llm.NewExtractor(client, settings.LLM, slog.Default()), nil
}
