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

	"github.com/meltforce/liftlog/internal/appstate"
	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/generate"
	"github.com/meltforce/liftlog/internal/kvstore"
	"github.com/meltforce/liftlog/internal/server"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/timer"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit (postgres backend)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LiftLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.Storage.Backend != "postgres" {
			log.Error("migrate-only requires the postgres backend", "backend", cfg.Storage.Backend)
			os.Exit(1)
		}
		if err := kvstore.RunMigrations(cfg.Storage.Postgres.DSN(), "migrations"); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied, exiting")
		return
	}

	// Open the key-value store
	store, err := openStore(cfg, log)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// App state, session manager, timer — restore persisted state
	state := appstate.New(store, log)
	sessions := session.NewManager(store, state, log)
	if err := sessions.Restore(); err != nil {
		log.Warn("session restore failed", "error", err)
	}
	tracker := timer.New(store, log)
	if tracker.Restore() {
		log.Info("elapsed-time tracker restored", "elapsed_ms", tracker.ElapsedMs())
	}

	// Optional AI generation client
	var gen *generate.Client
	if cfg.Generate.BaseURL != "" {
		gen = generate.NewClient(cfg.Generate.BaseURL)
	}

	srv := server.New(state, sessions, tracker, gen, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
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

	// Push any coalesced session write out before the store closes.
	sessions.Flush()
	log.Info("server stopped")
}

// openStore opens the configured key-value backend. For postgres it
// also applies migrations.
func openStore(cfg *config.Config, log *slog.Logger) (kvstore.Store, error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		store, err := kvstore.OpenSQLite(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite store opened", "dir", cfg.Storage.Dir)
		return store, nil

	case "postgres":
		dsn := cfg.Storage.Postgres.DSN()
		if err := kvstore.RunMigrations(dsn, "migrations"); err != nil {
			return nil, err
		}
		log.Info("migrations applied")
		store, err := kvstore.OpenPostgres(context.Background(), dsn)
		if err != nil {
			return nil, err
		}
		log.Info("postgres store connected")
		return store, nil

	case "memory":
		log.Warn("memory backend: state will not survive restart")
		return kvstore.NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
