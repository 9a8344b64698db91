package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Bergam0t/ciw-example-animation/internal/results"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is the JSON shape of command errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	ID     string `json:"id,omitempty"`
}

// printSummaryTable renders a results summary as an aligned table.
func printSummaryTable(summary []results.Summary) {
	fmt.Printf("%-34s %9s %9s %9s %9s %9s %9s %9s\n",
		"", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, row := range summary {
		fmt.Printf("%-34s %9.2f %9.2f %9.2f %9.2f %9.2f %9.2f %9.2f\n",
			row.Metric, row.Mean, row.Std, row.Min, row.Q25, row.Median, row.Q75, row.Max)
	}
}
