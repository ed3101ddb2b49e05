package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var tokenFlag string

func init() {
	statusCmd.Flags().StringVar(&tokenFlag, "token", "", "Respondent token returned when the session started")
	statusCmd.MarkFlagRequired("token")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient(serverFlag, timeoutFlag)
	client.SetToken(tokenFlag)

	session, err := client.GetSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s: %s, %d turns, %d scored\n", session.ID, session.Phase, len(session.Turns), len(session.Scores))
	for _, r := range session.Scores {
		fmt.Fprintf(out, "  turn %2d  trait %2d %-32s %.1f\n", r.TurnIndex, r.Dimension, r.Label, r.Score)
	}
	if session.Outcome != nil {
		fmt.Fprintf(out, "Composite outcome: %d\n", session.Outcome.Value)
	}
	return nil
}
