package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/poll-ledger/auth"
	"github.com/danielhkuo/poll-ledger/cliparse"
	"github.com/danielhkuo/poll-ledger/ledger"
	"github.com/danielhkuo/poll-ledger/middleware"
	"github.com/danielhkuo/poll-ledger/router"
	"github.com/danielhkuo/poll-ledger/store"
)

func main() {
	var err error

	// "token <identity>" prints a signed identity token and exits
	args := os.Args[1:]
	var tokenFor string
	if len(args) >= 2 && args[0] == "token" {
		tokenFor, args = args[1], args[2:]
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(args)
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if tokenFor != "" {
		token, err := auth.IssueIdentityToken(tokenFor, cfg.IdentitySalt)
		if err != nil {
			slog.Error("token issue failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	// Open record store
	records, err := store.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("record store open failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer records.Close()
	slog.Info("Record store ready", "type", cfg.DatabaseType)

	engine, err := ledger.NewEngine(records, ledger.Options{
		Limits:      cfg.Limits,
		ClosePolicy: cfg.ClosePolicy,
	})
	if err != nil {
		slog.Error("ledger setup failed", "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(engine, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "close_policy", cfg.ClosePolicy)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// setupLogger installs the default slog logger: text on a terminal, JSON
// otherwise
func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		slog.Warn("unknown log level, using info", "level", level)
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
