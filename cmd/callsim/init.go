package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bergam0t/ciw-example-animation/internal/config"
	"github.com/Bergam0t/ciw-example-animation/internal/storage"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the data directory and a default config file",
	Long: `Create the run-history data directory and write a default
config file.

Creates:
  ~/.callsim/
  ├── runs.db          # Run history
  └── logs/            # Per-run event logs
  ~/.config/callsim/config.yml`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	if err := os.MkdirAll(storage.LogsPath(cfg.DataDir), 0755); err != nil {
		exitWithError(ExitError, "creating data directory: %v", err)
	}

	path := configPath
	if path == "" {
		path = config.Path()
	}
	if _, err := os.Stat(path); err == nil {
		exitWithError(ExitError, "config already exists at %s", path)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitConfigError, "writing config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized data directory %s and config %s\n", cfg.DataDir, path)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: path})
	}

	return nil
}
