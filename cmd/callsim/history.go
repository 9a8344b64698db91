package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bergam0t/ciw-example-animation/internal/results"
	"github.com/Bergam0t/ciw-example-animation/internal/storage"
)

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyGetCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse stored simulation runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE:  runHistoryList,
}

var historyGetCmd = &cobra.Command{
	Use:   "get <run-id>",
	Short: "Show one run with its summary table",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryGet,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run and its event log",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenStore(cfg)
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		exitWithError(ExitDataError, "listing runs: %v", err)
	}

	if humanOutput {
		if len(runs) == 0 {
			fmt.Println("No stored runs")
			return nil
		}
		fmt.Printf("%d stored runs:\n\n", len(runs))
		for _, run := range runs {
			fmt.Printf("  %s  %s  ops=%d nurses=%d callback=%.2f reps=%d\n",
				run.ID, run.CreatedAt.Format("2006-01-02 15:04"),
				run.Experiment.NOperators, run.Experiment.NNurses,
				run.Experiment.ChanceCallback, run.Reps)
		}
	} else {
		if runs == nil {
			runs = []storage.Run{}
		}
		outputJSON(runs)
	}

	return nil
}

func runHistoryGet(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenStore(cfg)
	defer store.Close()

	run, err := store.GetRun(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading run: %v", err)
	}
	summary := results.Describe(run.Metrics)

	if humanOutput {
		fmt.Printf("Run %s (%s)\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("%d operators, %d nurses, %.0f%% callback chance, %d replications\n\n",
			run.Experiment.NOperators, run.Experiment.NNurses,
			run.Experiment.ChanceCallback*100, run.Reps)
		printSummaryTable(summary)
	} else {
		outputJSON(struct {
			storage.Run
			Summary []results.Summary `json:"summary"`
		}{Run: *run, Summary: summary})
	}

	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store := mustOpenStore(cfg)
	defer store.Close()

	if err := store.DeleteRun(args[0]); err != nil {
		exitWithError(ExitDataError, "deleting run: %v", err)
	}

	if humanOutput {
		fmt.Printf("Deleted run %s\n", args[0])
	} else {
		outputJSON(StatusResponse{Status: "deleted", ID: args[0]})
	}

	return nil
}
