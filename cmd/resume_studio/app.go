package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jonathan/resume-studio/internal/archive"
	"github.com/jonathan/resume-studio/internal/config"
	"github.com/jonathan/resume-studio/internal/db"
	"github.com/jonathan/resume-studio/internal/document"
	"github.com/jonathan/resume-studio/internal/enhance"
	"github.com/jonathan/resume-studio/internal/export"
	"github.com/jonathan/resume-studio/internal/llm"
	"github.com/jonathan/resume-studio/internal/storage"
	"github.com/jonathan/resume-studio/internal/templates"
	"github.com/jonathan/resume-studio/internal/types"
)

// loadSettings builds the effective configuration: the config file (if any)
// over the defaults, then the environment for collaborator settings.
func loadSettings() (*config.Config, error) {
	cfg := config.Defaults()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	cfg.ApplyEnv()
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// newRegistry returns the built-in templates with the configured default
func newRegistry(cfg *config.Config) (*templates.Registry, error) {
	return templates.NewRegistry(cfg.DefaultTemplate, templates.Builtin()...)
}

// newSink returns the configured export archive, or nil when archiving is off
func newSink(ctx context.Context, cfg *config.Config) (export.Sink, error) {
	switch {
	case cfg.ArchiveDir != "":
		return archive.NewLocalStore(cfg.ArchiveDir)
	case cfg.S3Bucket != "":
		return archive.NewS3Store(ctx, archive.S3Config{
			Region:   cfg.S3Region,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.S3KMSKeyID,
		})
	default:
		return nil, nil
	}
}

// newEngine wires the export engine. Raster export is only available when a
// browser is enabled.
func newEngine(ctx context.Context, cfg *config.Config, registry *templates.Registry) (*export.Engine, error) {
	strategy, err := export.ParseStrategy(cfg.ExportStrategy)
	if err != nil {
		return nil, err
	}
	sink, err := newSink(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up export archive: %w", err)
	}

	opts := export.Options{
		Strategy:       strategy,
		RasterAttempts: cfg.RasterAttempts,
		Timeout:        cfg.ExportTimeout(),
		Sink:           sink,
	}
	if cfg.UseBrowser {
		opts.Rasterizer = &export.ChromeRasterizer{ExecPath: cfg.ChromePath, Scale: cfg.DeviceScale, Verbose: cfg.Verbose}
	}
	return export.NewEngine(registry, opts), nil
}

// newEnhancer returns the Gemini-backed enhancer when an API key is
// configured and the canned one otherwise. The returned func releases the
// model client.
func newEnhancer(ctx context.Context, cfg *config.Config) (enhance.Enhancer, func(), error) {
	if cfg.APIKey == "" {
		log.Printf("[enhance] no API key configured, using canned suggestions")
		return enhance.StubEnhancer{}, func() {}, nil
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return enhance.NewLLMEnhancer(client, cfg.EnhanceTimeout()), func() { _ = client.Close() }, nil
}

// newStore connects to PostgreSQL when a database URL is configured and
// falls back to an in-memory store otherwise. The *db.DB is nil for the
// in-memory store.
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, *db.DB, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("[storage] DATABASE_URL not set, saved documents are kept in memory")
		return storage.NewMemoryStore(), nil, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, database, nil
}

// readDocument loads and validates a document JSON file
func readDocument(path string) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}
	return document.Unmarshal(data)
}

// writeOutput writes data to path, or to stdout when path is empty or "-"
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
