// Package cli defines the cobra commands of the interview client.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverFlag  string
	timeoutFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "interview",
	Short: "Take a GRIT interview against a running server",
	Long: `interview plays the respondent side of a GRIT interview session:
it starts a session, prints each question, submits your answers and
prints the scores, the closing summary and the composite outcome.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "http://localhost:8080", "Interview server base URL")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 3*time.Minute, "Per-request timeout (covers oracle jobs)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
}
