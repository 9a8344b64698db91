package main

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Bergam0t/ciw-example-animation/internal/citation"
	"github.com/Bergam0t/ciw-example-animation/internal/server"
)

var (
	serveListen   string
	serveCitation string
	serveDebug    bool
)

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Bind address (default from config)")
	serveCmd.Flags().StringVar(&serveCitation, "citation", "CITATION.cff", "Citation file served at /api/v1/citation")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation dashboard over HTTP",
	Long: `Serve the dashboard API: run experiments, browse run history,
render animations and expose Prometheus metrics.

Examples:
  callsim serve
  callsim serve --listen :9090 --debug`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	level := zerolog.InfoLevel
	if serveDebug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	store := mustOpenStore(cfg)
	defer store.Close()

	// A missing citation file is fine; the endpoint then returns 404.
	cit, err := citation.Load(serveCitation)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", serveCitation).Msg("citation file unreadable")
		}
		cit = nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, store, log, cit)
	if err := srv.ListenAndServe(ctx); err != nil {
		exitWithError(ExitError, "serving dashboard: %v", err)
	}

	return nil
}
