package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"gritinterview/internal/cache"
	"gritinterview/internal/model"
	"gritinterview/internal/oracle"
	"gritinterview/internal/repository"
)

// SummaryService compiles completed sessions into a closing narrative
type SummaryService struct {
	poller     *JobPoller
	outcome    *OutcomeCalculator
	traits     *model.TraitTable
	maxTurns   int
	reportRepo repository.ReportRepo
	archive    repository.SessionRepo
	sessions   cache.SessionCache

	group singleflight.Group
}

// NewSummaryService creates a new summary service
func NewSummaryService(
	poller *JobPoller,
	outcome *OutcomeCalculator,
	traits *model.TraitTable,
	maxTurns int,
	reportRepo repository.ReportRepo,
	archive repository.SessionRepo,
	sessions cache.SessionCache,
) *SummaryService {
	return &SummaryService{
		poller:     poller,
		outcome:    outcome,
		traits:     traits,
		maxTurns:   maxTurns,
		reportRepo: reportRepo,
		archive:    archive,
		sessions:   sessions,
	}
}

// BuildSummaryRequest formats the transcript and scores of a finished interview
func (s *SummaryService) BuildSummaryRequest(turns []model.Turn, scores []model.ScoreRecord) (*model.SummaryRequest, error) {
	if len(turns) == 0 || len(scores) != len(turns) {
		return nil, fmt.Errorf("%w: %d turns, %d scores", ErrSessionIncomplete, len(turns), len(scores))
	}
	for _, t := range turns {
		if !t.Answered() {
			return nil, fmt.Errorf("%w: turn %d unanswered", ErrSessionIncomplete, t.Index)
		}
	}
	probed := make(map[model.TraitDimension]bool, len(scores))
	for _, r := range scores {
		probed[r.Dimension] = true
	}
	if len(scores) < s.maxTurns && len(probed) < model.TraitCount {
		return nil, fmt.Errorf("%w: %d of %d turns scored", ErrSessionIncomplete, len(scores), s.maxTurns)
	}

	outcome, err := s.outcome.Composite(scores)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(scores))
	for _, r := range scores {
		lines = append(lines, fmt.Sprintf("Trait %d (%s): %.1f - %s", r.Dimension, s.traits.Label(r.Dimension), r.Score, r.Comment))
	}

	return &model.SummaryRequest{
		Transcript: formatTranscript(turns),
		ScoreLines: lines,
		Outcome:    *outcome,
	}, nil
}

// GetSummary returns the stored report for a session, or nil
func (s *SummaryService) GetSummary(ctx context.Context, sessionID string) (*model.SummaryReport, error) {
	return s.reportRepo.GetSummary(ctx, sessionID)
}

// Summarize produces the narrative for a completed session, archives it and drops its live state.
// Concurrent calls for one session share a single job; a stored report is returned as is.
// The shared job outlives any one caller; each caller stops waiting when its own ctx ends.
func (s *SummaryService) Summarize(ctx context.Context, session *model.Session) (*model.SummaryReport, error) {
	jobCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(session.ID, func() (interface{}, error) {
		existing, err := s.reportRepo.GetSummary(jobCtx, session.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}

		if session.Phase != model.PhaseComplete {
			return nil, ErrSessionIncomplete
		}

		req, err := s.BuildSummaryRequest(session.Turns, session.Scores)
		if err != nil {
			return nil, err
		}
		req.SessionID = session.ID

		text, err := s.poller.RunJob(jobCtx, oracle.Request{
			Kind:         model.JobSummarize,
			Instructions: buildSummaryInstructions(),
			Input:        buildSummaryPrompt(req),
		})
		if err != nil {
			log.Printf("[Summary] Session %s: %v", session.ID, err)
			return nil, err
		}

		report := &model.SummaryReport{
			SessionID:   session.ID,
			Narrative:   parseNarrative(text),
			Outcome:     req.Outcome,
			Scores:      session.Scores,
			GeneratedAt: time.Now(),
		}
		if err := s.reportRepo.SaveSummary(jobCtx, report); err != nil {
			return nil, fmt.Errorf("save summary: %w", err)
		}
		if err := s.archive.Archive(jobCtx, session); err != nil {
			return nil, fmt.Errorf("archive session: %w", err)
		}
		if err := s.sessions.Delete(jobCtx, session.ID); err != nil {
			log.Printf("[Summary] Failed to drop live state for %s: %v", session.ID, err)
		}

		log.Printf("[Summary] Session %s summarized and archived (outcome %d)", session.ID, report.Outcome.Value)
		return report, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.SummaryReport), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// parseNarrative accepts {"summary": "..."} or plain text
func parseNarrative(text string) string {
	if raw, err := extractJSONObject(text); err == nil {
		var out struct {
			Summary string `json:"summary"`
		}
		if json.Unmarshal(raw, &out) == nil && strings.TrimSpace(out.Summary) != "" {
			return strings.TrimSpace(out.Summary)
		}
	}
	return strings.TrimSpace(text)
}

// Prompt builders
func buildSummaryInstructions() string {
	return `You write the closing assessment of a GRIT interview.
Return ONLY valid JSON matching this schema:
{"summary": "<a short narrative of the respondent's strengths and growth areas>"}`
}

func buildSummaryPrompt(req *model.SummaryRequest) string {
	var b strings.Builder
	b.WriteString(req.Transcript)
	b.WriteString("\nScores:\n")
	for _, line := range req.ScoreLines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nComposite drop-out risk: %d%% (weighted average %.2f of %.0f)\n",
		req.Outcome.Value, req.Outcome.WeightedAverage, req.Outcome.MaxScore)
	return b.String()
}
