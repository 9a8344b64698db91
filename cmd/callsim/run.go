package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bergam0t/ciw-example-animation/internal/eventlog"
	"github.com/Bergam0t/ciw-example-animation/internal/model"
	"github.com/Bergam0t/ciw-example-animation/internal/results"
	"github.com/Bergam0t/ciw-example-animation/internal/storage"
)

var (
	runOperators    int
	runNurses       int
	runCallback     float64
	runReplications int
	runSeed         int64
	runNoSave       bool
)

func init() {
	runCmd.Flags().IntVar(&runOperators, "operators", 0, "Call operators on duty (default from config)")
	runCmd.Flags().IntVar(&runNurses, "nurses", 0, "Nurse practitioners on duty (default from config)")
	runCmd.Flags().Float64Var(&runCallback, "chance-callback", -1, "Probability of a nurse callback (default from config)")
	runCmd.Flags().IntVar(&runReplications, "replications", 0, "Number of replications (default from config)")
	runCmd.Flags().Int64Var(&runSeed, "seed", model.DefaultSeed, "Base random seed; replication i uses seed+i")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "Do not record the run in history")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a replicated call centre experiment",
	Long: `Run the call centre model for several independently seeded
replications and summarise waiting times and utilisation.

Examples:
  callsim run
  callsim run --operators 14 --nurses 10 --replications 50
  callsim run --chance-callback 0.25 --no-save`,
	RunE: runRun,
}

// runSummary is the JSON output of the run command.
type runSummary struct {
	ID         string            `json:"id,omitempty"`
	Experiment model.Experiment  `json:"experiment"`
	Reps       int               `json:"reps"`
	Summary    []results.Summary `json:"summary"`
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	exp := cfg.Experiment
	if runOperators > 0 {
		exp.NOperators = runOperators
	}
	if runNurses > 0 {
		exp.NNurses = runNurses
	}
	if runCallback >= 0 {
		exp.ChanceCallback = runCallback
	}
	reps := cfg.Replications
	if runReplications > 0 {
		reps = runReplications
	}

	repl, err := model.MultipleReplications(cmd.Context(), exp, reps, runSeed)
	if err != nil {
		exitWithError(ExitDataError, "running simulation: %v", err)
	}
	summary := results.Describe(repl.Metrics)

	var runID string
	if !runNoSave {
		log, err := eventlog.FromRecords(repl.Records[0], model.NodeNames)
		if err != nil {
			exitWithError(ExitError, "building event log: %v", err)
		}

		store := mustOpenStore(cfg)
		defer store.Close()

		run := storage.Run{
			ID:         storage.NewRunID(),
			CreatedAt:  time.Now().UTC(),
			Experiment: exp,
			Reps:       reps,
			Metrics:    repl.Metrics,
		}
		if err := store.SaveRun(run, log); err != nil {
			exitWithError(ExitDataError, "saving run: %v", err)
		}
		runID = run.ID
	}

	if humanOutput {
		outputHuman("%d operators, %d nurses, %.0f%% callback chance, %d replications\n\n",
			exp.NOperators, exp.NNurses, exp.ChanceCallback*100, reps)
		printSummaryTable(summary)
		if runID != "" {
			fmt.Printf("\nSaved as run %s\n", runID)
		}
	} else {
		outputJSON(runSummary{
			ID:         runID,
			Experiment: exp,
			Reps:       reps,
			Summary:    summary,
		})
	}

	return nil
}
