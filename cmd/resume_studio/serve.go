package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-studio/internal/auth"
	"github.com/jonathan/resume-studio/internal/config"
	"github.com/jonathan/resume-studio/internal/server"
	"github.com/jonathan/resume-studio/internal/server/ratelimit"
	"github.com/jonathan/resume-studio/internal/session"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes editing sessions, previews, PDF export and saved documents.

Saved documents go to PostgreSQL when DATABASE_URL is set and to memory otherwise.
Signed-in requests need JWT_SECRET; without it every request is anonymous.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides the config file, default 8080)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before starting")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if serveMigrate && cfg.DatabaseURL != "" {
		if err := runMigrations(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	engine, err := newEngine(ctx, cfg, registry)
	if err != nil {
		return err
	}
	enhancer, closeEnhancer, err := newEnhancer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEnhancer()
	store, database, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	var validator auth.TokenValidator
	if jwtConfig, err := config.NewJWTConfig(); err != nil {
		log.Printf("[auth] %v; sign-in is disabled", err)
	} else {
		validator = auth.NewJWTService(jwtConfig)
	}

	manager := session.NewManager(session.Options{
		Registry:      registry,
		Exporter:      engine,
		ExportTimeout: engine.Timeout(),
		Store:         store,
		Quotas:        cfg.Quotas(),
		Enhancer:      enhancer,
	})
	idle := cfg.SessionIdle()
	go manager.RunEvictor(ctx, max(idle/4, time.Minute), idle)

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		Sessions:  manager,
		Auth:      validator,
		RateLimit: ratelimit.LoadConfig(),
		DB:        database,
	})
	if err != nil {
		if database != nil {
			database.Close()
		}
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
