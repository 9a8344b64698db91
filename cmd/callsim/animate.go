package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bergam0t/ciw-example-animation/internal/animate"
	"github.com/Bergam0t/ciw-example-animation/internal/model"
)

var (
	animateOut   string
	animateEvery float64
	animateLimit float64
)

func init() {
	animateCmd.Flags().StringVarP(&animateOut, "out", "o", "animation.html", "Output HTML file")
	animateCmd.Flags().Float64Var(&animateEvery, "every", 1, "Minutes between animation snapshots")
	animateCmd.Flags().Float64Var(&animateLimit, "limit", model.ResultsCollectionPeriod, "Last simulation minute to animate")
	rootCmd.AddCommand(animateCmd)
}

var animateCmd = &cobra.Command{
	Use:   "animate <run-id>",
	Short: "Render a caller-flow animation for a stored run",
	Long: `Render a stored run's event log as a self-contained HTML page
animating callers through the operator and nurse queues.

Examples:
  callsim animate 4f6b... -o flow.html
  callsim animate 4f6b... --every 5 --limit 500`,
	Args: cobra.ExactArgs(1),
	RunE: runAnimate,
}

func runAnimate(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenStore(cfg)
	defer store.Close()

	run, err := store.GetRun(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading run: %v", err)
	}
	log, err := store.GetRunLog(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading event log: %v", err)
	}

	stages := animate.CallCentreStages(run.Experiment.NOperators, run.Experiment.NNurses)
	opts := animate.DefaultOptions()
	opts.EveryXTimeUnits = animateEvery
	opts.LimitDuration = animateLimit

	snaps, err := animate.BuildSnapshots(log, stages, opts)
	if err != nil {
		exitWithError(ExitError, "building animation: %v", err)
	}
	html, err := animate.GenerateHTML(snaps, stages, opts)
	if err != nil {
		exitWithError(ExitError, "rendering animation: %v", err)
	}

	if err := os.WriteFile(animateOut, []byte(html), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", animateOut, err)
	}

	if humanOutput {
		fmt.Printf("Wrote %s (%d frames)\n", animateOut, len(snaps))
	} else {
		outputJSON(StatusResponse{Status: "written", Path: animateOut})
	}

	return nil
}
