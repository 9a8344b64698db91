// Package main provides the callsim CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Bergam0t/ciw-example-animation/internal/config"
	"github.com/Bergam0t/ciw-example-animation/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath overrides the default config file location
var configPath string

func main() {
	// Load .env if present; real environment takes precedence.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "callsim",
	Short: "Urgent care call centre simulation",
	Long: `callsim is a discrete-event simulation of an urgent care call
centre: callers queue for an operator, and a proportion then wait for a
nurse callback.

Run replicated experiments, browse stored runs, render caller-flow
animations, and serve an HTTP dashboard. All commands output JSON by
default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.config/callsim/config.yml)")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration or exits with a config error.
func mustLoadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenStore opens the run history or exits with a data error.
func mustOpenStore(cfg *config.Config) *storage.Store {
	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		exitWithError(ExitDataError, "opening run history: %v", err)
	}
	return store
}
