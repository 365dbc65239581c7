package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/liftlog/internal/appstate"
	"github.com/meltforce/liftlog/internal/kvstore"
	"github.com/meltforce/liftlog/internal/mcp"
	"github.com/meltforce/liftlog/internal/session"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	storeDir := flag.String("store-dir", "", "open the local sqlite store in this directory")
	serverURL := flag.String("server", "", "query a running LiftLog server at this base URL instead of a local store")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Serves LiftLog data over MCP on stdio.\n\n")
		fmt.Fprintf(os.Stderr, "Exactly one of -store-dir or -server must be given.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// MCP speaks on stdout; logs must go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if (*storeDir == "") == (*serverURL == "") {
		flag.Usage()
		os.Exit(1)
	}

	var ds mcp.DataSource
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
	} else {
		store, err := kvstore.OpenSQLite(*storeDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		state := appstate.New(store, log)
		sessions := session.NewManager(store, state, log)
		if err := sessions.Restore(); err != nil {
			log.Warn("session restore failed", "error", err)
		}
		ds = mcp.NewLocal(state, sessions)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server: %v\n", err)
		os.Exit(1)
	}
}
