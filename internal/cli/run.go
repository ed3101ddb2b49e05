package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"gritinterview/internal/model"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a session and answer its questions",
	Long: `Start a new interview session and answer each question in turn.
Answers are read line by line from --answers, or from stdin.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	answersFlag string
	watchFlag   bool
	retriesFlag int
)

func init() {
	runCmd.Flags().StringVar(&answersFlag, "answers", "", "File with one answer per line (default: stdin)")
	runCmd.Flags().BoolVar(&watchFlag, "watch", false, "Print websocket events as they arrive")
	runCmd.Flags().IntVar(&retriesFlag, "retries", 2, "Resubmit a failed step this many times")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	in := io.Reader(os.Stdin)
	if answersFlag != "" {
		f, err := os.Open(answersFlag)
		if err != nil {
			return fmt.Errorf("opening answers: %w", err)
		}
		defer f.Close()
		in = f
	}

	client := NewClient(serverFlag, timeoutFlag)
	return runInterview(ctx, client, in, cmd.OutOrStdout())
}

// runInterview drives one session until completion or until answers run out
func runInterview(ctx context.Context, client *Client, in io.Reader, out io.Writer) error {
	started, err := client.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	session := started.Session
	fmt.Fprintf(out, "Session %s\n", session.ID)

	if watchFlag {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := client.Watch(watchCtx, session.ID, out); err != nil {
				fmt.Fprintf(out, "  [event stream closed: %v]\n", err)
			}
		}()
	}

	answers := bufio.NewScanner(in)
	turn := session.CurrentTurn()
	for {
		fmt.Fprintf(out, "\nQ%d [%s]: %s\n> ", turn.Index, turn.Label, turn.Question)

		answer, ok := nextAnswer(answers)
		if !ok {
			fmt.Fprintf(out, "\nNo more answers; session %s left at turn %d.\n", session.ID, turn.Index)
			return answers.Err()
		}

		resp, err := submitWithRetry(ctx, client, session.ID, turn.Index, answer, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  score %.1f on %s: %s\n", resp.Score.Score, resp.Score.Label, resp.Score.Comment)

		if resp.SessionComplete {
			fmt.Fprintf(out, "\n%s\n", resp.ClosingMessage)
			return printSummary(ctx, client, session.ID, out)
		}
		turn = resp.NextTurn
	}
}

func nextAnswer(s *bufio.Scanner) (string, bool) {
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			return line, true
		}
	}
	return "", false
}

func submitWithRetry(ctx context.Context, client *Client, sessionID string, turnIndex int, answer string, out io.Writer) (*model.SubmitAnswerResponse, error) {
	for attempt := 0; ; attempt++ {
		resp, err := client.SubmitAnswer(ctx, sessionID, turnIndex, answer)
		if err == nil {
			return resp, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() || attempt >= retriesFlag {
			return nil, fmt.Errorf("submitting turn %d: %w", turnIndex, err)
		}
		fmt.Fprintf(out, "  step failed (%s), resubmitting\n", apiErr.Message)
	}
}

func printSummary(ctx context.Context, client *Client, sessionID string, out io.Writer) error {
	report, err := client.GetSummary(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("fetching summary: %w", err)
	}

	fmt.Fprintf(out, "\nSummary:\n%s\n", report.Narrative)
	fmt.Fprintf(out, "\nComposite outcome: %d (weighted average %.2f of %.0f)\n",
		report.Outcome.Value, report.Outcome.WeightedAverage, report.Outcome.MaxScore)
	for _, r := range report.Scores {
		fmt.Fprintf(out, "  %2d %-32s %.1f\n", r.Dimension, r.Label, r.Score)
	}
	return nil
}
