package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/circuitry/internal/catalog"
	"github.com/claude/circuitry/internal/config"
	cmcp "github.com/claude/circuitry/internal/mcp"
	"github.com/claude/circuitry/internal/models"
	"github.com/claude/circuitry/internal/sequence"
	"github.com/claude/circuitry/internal/server"
	"github.com/claude/circuitry/internal/session"
	"github.com/claude/circuitry/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	reseed := flag.Bool("seed", false, "load the seed catalog even if exercises exist")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Circuitry starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open catalog store
	ctx := context.Background()
	store, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	seed, err := seedExercises(cfg.Catalog.SeedFile)
	if err != nil {
		log.Error("failed to load seed catalog", "error", err)
		os.Exit(1)
	}
	n, err := storage.Seed(ctx, store, seed, *reseed)
	if err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	if n > 0 {
		log.Info("catalog seeded", "rows", n)
	}

	// Wire generator, sessions and transports
	defaults := sequence.GenerateOptions{
		EvenDistribution: cfg.Generator.EvenDistribution,
		MaxRetries:       cfg.Generator.MaxRetries,
	}
	gen := sequence.NewGenerator(store, sequence.NewRand(cfg.Generator.Seed), log)
	sessions := session.NewStore(gen, cfg.Generator.HistoryCapacity, log)

	srv := server.New(sessions, defaults, cfg.Auth.APIKey, log)
	srv.SetMCP(cmcp.New(cmcp.NewLocal(sessions, defaults), Version, log))

	// Start server over tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// openStore connects the configured catalog backend. Postgres gets its
// migrations applied first; SQLite creates its schema on open.
func openStore(ctx context.Context, db config.DatabaseConfig, log *slog.Logger) (storage.Store, error) {
	switch db.Driver {
	case config.DriverSQLite:
		s, err := storage.OpenSQLite(db.Path)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite catalog opened", "path", db.Path)
		return s, nil
	default:
		dsn := db.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied")
		s, err := storage.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Info("database connected")
		return s, nil
	}
}

func seedExercises(path string) ([]models.Exercise, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}
