package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"gritinterview/internal/cache"
	"gritinterview/internal/config"
	"gritinterview/internal/model"
	"gritinterview/internal/repository"
)

// InterviewService is the per-session state machine
type InterviewService struct {
	cfg       *config.InterviewConfig
	traits    *model.TraitTable
	sessions  cache.SessionCache
	drafts    cache.DraftCache
	lock      cache.SessionLock
	archive   repository.SessionRepo
	evaluator *EvaluatorService
	questions *QuestionService
	scheduler *TraitScheduler
	outcome   *OutcomeCalculator
	summary   *SummaryService
	stats     *StatsService

	broadcaster Broadcaster
	lockTTL     time.Duration
}

// NewInterviewService creates a new interview service
func NewInterviewService(
	cfg *config.InterviewConfig,
	traits *model.TraitTable,
	sessions cache.SessionCache,
	drafts cache.DraftCache,
	lock cache.SessionLock,
	archive repository.SessionRepo,
	evaluator *EvaluatorService,
	questions *QuestionService,
	scheduler *TraitScheduler,
	outcome *OutcomeCalculator,
	summary *SummaryService,
	jobTimeout time.Duration,
) *InterviewService {
	return &InterviewService{
		cfg:       cfg,
		traits:    traits,
		sessions:  sessions,
		drafts:    drafts,
		lock:      lock,
		archive:   archive,
		evaluator: evaluator,
		questions: questions,
		scheduler: scheduler,
		outcome:   outcome,
		summary:   summary,
		// a submit runs at most one evaluate and one generate job
		lockTTL: 2*jobTimeout + 10*time.Second,
	}
}

// SetBroadcaster sets the WebSocket broadcaster for real-time events
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetStatsService enables cross-session stats updates
func (s *InterviewService) SetStatsService(stats *StatsService) {
	s.stats = stats
}

// StartSession creates a session with the seeded opening turn
func (s *InterviewService) StartSession(ctx context.Context) (*model.Session, error) {
	now := time.Now()
	opening := model.TraitDimension(1)
	session := &model.Session{
		ID:    uuid.New().String(),
		Phase: model.PhaseAwaitingAnswer,
		Turns: []model.Turn{{
			Index:     1,
			Dimension: opening,
			Label:     s.traits.Label(opening),
			Question:  s.cfg.OpeningQuestion,
			AskedAt:   now,
		}},
		Scores:    []model.ScoreRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	log.Printf("[Interview] Session %s started", session.ID)
	s.toHosts(EventSessionStarted, map[string]interface{}{
		"sessionId": session.ID,
		"createdAt": session.CreatedAt,
	})
	return session, nil
}

// GetState returns the live session, or its archived copy
func (s *InterviewService) GetState(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}

	session, err = s.archive.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SubmitAnswer records the answer to turnIndex and advances the session.
// A failed step leaves the stored session unchanged; resubmitting is safe.
func (s *InterviewService) SubmitAnswer(ctx context.Context, sessionID string, turnIndex int, answer string) (*model.SubmitAnswerResponse, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	token, err := s.lock.Acquire(ctx, sessionID, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if token == "" {
		return nil, ErrSessionBusy
	}
	defer func() {
		if err := s.lock.Release(context.Background(), sessionID, token); err != nil {
			log.Printf("[Interview] Failed to release lock for %s: %v", sessionID, err)
		}
	}()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, s.missingSession(ctx, sessionID)
	}

	current := session.CurrentTurn()
	if turnIndex == 0 {
		if session.Phase == model.PhaseComplete {
			return nil, ErrSessionComplete
		}
		turnIndex = current.Index
	}

	// an already scored turn is answered from the record
	retryingQuestion := session.Phase == model.PhaseGeneratingNextQuestion && turnIndex == current.Index
	if record := session.ScoreFor(turnIndex); record != nil && !retryingQuestion {
		return replay(session, record), nil
	}
	if session.Phase == model.PhaseComplete {
		return nil, ErrSessionComplete
	}
	if turnIndex != current.Index {
		return nil, fmt.Errorf("%w: submitted %d, current %d", ErrTurnMismatch, turnIndex, current.Index)
	}

	var record *model.ScoreRecord
	switch session.Phase {
	case model.PhaseAwaitingAnswer:
		record, err = s.evaluate(ctx, session, answer)
		if err != nil {
			return nil, err
		}
	case model.PhaseGeneratingNextQuestion:
		// the score was committed by an earlier call; only the question is missing
		record = session.ScoreFor(current.Index)
		if record == nil {
			return nil, fmt.Errorf("session %s: no score for turn %d in phase %s", sessionID, current.Index, session.Phase)
		}
	default:
		return nil, fmt.Errorf("session %s: unexpected stored phase %s", sessionID, session.Phase)
	}

	return s.advance(ctx, session, record)
}

// evaluate scores the current turn and commits the answer and score together
func (s *InterviewService) evaluate(ctx context.Context, session *model.Session, answer string) (*model.ScoreRecord, error) {
	current := session.CurrentTurn()

	if err := s.drafts.SetDraft(ctx, session.ID, &model.Draft{TurnIndex: current.Index, Answer: answer}); err != nil {
		log.Printf("[Interview] Failed to keep draft for %s: %v", session.ID, err)
	}

	if err := session.Transition(model.PhaseEvaluating); err != nil {
		return nil, err
	}
	s.toSession(session.ID, EventEvaluating, map[string]interface{}{"turnIndex": current.Index})

	turn := *current
	turn.Answer = answer
	record, err := s.evaluator.Evaluate(ctx, turn)
	if err != nil {
		// in-memory only; the stored session never left awaiting_answer
		_ = session.Transition(model.PhaseAwaitingAnswer)
		s.toSession(session.ID, EventError, map[string]interface{}{
			"turnIndex": current.Index,
			"error":     err.Error(),
		})
		log.Printf("[Interview] Session %s turn %d evaluation failed: %v", session.ID, current.Index, err)
		return nil, err
	}

	now := time.Now()
	current.Answer = answer
	current.AnsweredAt = &now
	session.Scores = append(session.Scores, *record)
	if err := session.Transition(model.PhaseGeneratingNextQuestion); err != nil {
		return nil, err
	}
	session.UpdatedAt = now

	if err := session.Consistent(); err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if err := s.drafts.ClearDraft(ctx, session.ID); err != nil {
		log.Printf("[Interview] Failed to clear draft for %s: %v", session.ID, err)
	}
	if s.stats != nil {
		s.stats.RecordScore(ctx, record)
	}

	log.Printf("[Interview] Session %s turn %d scored %.1f on trait %d", session.ID, record.TurnIndex, record.Score, record.Dimension)
	s.toSession(session.ID, EventEvaluationResult, record)
	s.toHosts(EventSessionProgress, map[string]interface{}{
		"sessionId": session.ID,
		"scored":    len(session.Scores),
		"maxTurns":  s.cfg.MaxTurns,
	})
	return record, nil
}

// advance issues the next turn or completes the session
func (s *InterviewService) advance(ctx context.Context, session *model.Session, record *model.ScoreRecord) (*model.SubmitAnswerResponse, error) {
	dim, ok := s.scheduler.Next(session.Probed())
	if !ok || len(session.Scores) >= s.cfg.MaxTurns {
		return s.complete(ctx, session, record)
	}

	question, err := s.questions.Generate(ctx, session, dim)
	if err != nil {
		s.toSession(session.ID, EventError, map[string]interface{}{
			"turnIndex": record.TurnIndex,
			"error":     err.Error(),
		})
		log.Printf("[Interview] Session %s question for trait %d failed: %v", session.ID, dim, err)
		return nil, err
	}

	now := time.Now()
	session.Turns = append(session.Turns, model.Turn{
		Index:     session.CurrentTurn().Index + 1,
		Dimension: dim,
		Label:     s.traits.Label(dim),
		Question:  question,
		AskedAt:   now,
	})
	if err := session.Transition(model.PhaseAwaitingAnswer); err != nil {
		return nil, err
	}
	session.UpdatedAt = now

	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	next := session.CurrentTurn()
	s.toSession(session.ID, EventNextQuestion, next)
	return &model.SubmitAnswerResponse{
		Score:    record,
		NextTurn: next,
		Phase:    session.Phase,
	}, nil
}

func (s *InterviewService) complete(ctx context.Context, session *model.Session, record *model.ScoreRecord) (*model.SubmitAnswerResponse, error) {
	if err := session.Transition(model.PhaseComplete); err != nil {
		return nil, err
	}
	now := time.Now()
	session.ClosingMessage = s.cfg.ClosingMessage
	session.CompletedAt = &now
	session.UpdatedAt = now

	outcome, err := s.outcome.Composite(session.Scores)
	switch {
	case err == nil:
		session.Outcome = outcome
	case errors.Is(err, ErrNoWeightedDimensions):
		log.Printf("[Interview] Session %s completed without weighted traits", session.ID)
	default:
		return nil, err
	}

	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if s.stats != nil && session.Outcome != nil {
		s.stats.RecordOutcome(ctx, session.ID, session.Outcome)
	}

	log.Printf("[Interview] Session %s complete after %d turns", session.ID, len(session.Turns))
	resp := &model.SubmitAnswerResponse{
		Score:           record,
		SessionComplete: true,
		ClosingMessage:  session.ClosingMessage,
		Outcome:         session.Outcome,
		Phase:           session.Phase,
	}
	s.toSession(session.ID, EventSessionComplete, resp)
	s.toHosts(EventSessionCompleted, map[string]interface{}{
		"sessionId": session.ID,
		"outcome":   session.Outcome,
	})
	return resp, nil
}

// replay rebuilds the response of an already scored turn
func replay(session *model.Session, record *model.ScoreRecord) *model.SubmitAnswerResponse {
	resp := &model.SubmitAnswerResponse{
		Score: record,
		Phase: session.Phase,
	}
	for i := range session.Turns {
		if session.Turns[i].Index == record.TurnIndex+1 {
			resp.NextTurn = &session.Turns[i]
			return resp
		}
	}
	if session.Phase == model.PhaseComplete {
		resp.SessionComplete = true
		resp.ClosingMessage = session.ClosingMessage
		resp.Outcome = session.Outcome
	}
	return resp
}

// GetSummary returns the narrative and composite outcome of a completed session
func (s *InterviewService) GetSummary(ctx context.Context, sessionID string) (*model.SummaryReport, error) {
	report, err := s.summary.GetSummary(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if report != nil {
		return report, nil
	}

	session, err := s.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.summary.Summarize(ctx, session)
}

// SaveDraft keeps an unsent answer for the current turn
func (s *InterviewService) SaveDraft(ctx context.Context, sessionID string, draft *model.Draft) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return s.missingSession(ctx, sessionID)
	}
	if session.Phase == model.PhaseComplete {
		return ErrSessionComplete
	}
	if current := session.CurrentTurn(); draft.TurnIndex != current.Index {
		return fmt.Errorf("%w: draft for %d, current %d", ErrTurnMismatch, draft.TurnIndex, current.Index)
	}
	return s.drafts.SetDraft(ctx, sessionID, draft)
}

// GetDraft returns the saved draft, or nil
func (s *InterviewService) GetDraft(ctx context.Context, sessionID string) (*model.Draft, error) {
	return s.drafts.GetDraft(ctx, sessionID)
}

// Abandon archives an unfinished session between turns and drops its live state
func (s *InterviewService) Abandon(ctx context.Context, sessionID string) error {
	token, err := s.lock.Acquire(ctx, sessionID, s.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	if token == "" {
		return ErrSessionBusy
	}
	defer func() {
		if err := s.lock.Release(context.Background(), sessionID, token); err != nil {
			log.Printf("[Interview] Failed to release lock for %s: %v", sessionID, err)
		}
	}()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return s.missingSession(ctx, sessionID)
	}

	session.UpdatedAt = time.Now()
	if err := s.archive.Archive(ctx, session); err != nil {
		return fmt.Errorf("archive session: %w", err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if err := s.drafts.ClearDraft(ctx, sessionID); err != nil {
		log.Printf("[Interview] Failed to clear draft for %s: %v", sessionID, err)
	}

	log.Printf("[Interview] Session %s abandoned at turn %d", sessionID, session.CurrentTurn().Index)
	if s.broadcaster != nil {
		s.broadcaster.DisconnectSession(sessionID)
	}
	return nil
}

// ListSessions returns live sessions first, then archived ones
func (s *InterviewService) ListSessions(ctx context.Context, limit int) ([]model.SessionListItem, error) {
	if limit <= 0 {
		limit = 50
	}

	ids, err := s.sessions.ListLive(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]model.SessionListItem, 0, limit)
	seen := make(map[string]bool)
	for _, id := range ids {
		session, err := s.sessions.Get(ctx, id)
		if err != nil || session == nil {
			continue
		}
		items = append(items, listItem(session))
		seen[id] = true
	}

	if len(items) < limit {
		archived, err := s.archive.ListRecent(ctx, int64(limit-len(items)))
		if err != nil {
			return nil, err
		}
		for _, session := range archived {
			if !seen[session.ID] {
				items = append(items, listItem(session))
			}
		}
	}
	return items, nil
}

func listItem(session *model.Session) model.SessionListItem {
	item := model.SessionListItem{
		ID:          session.ID,
		Phase:       session.Phase,
		Turns:       len(session.Turns),
		CreatedAt:   session.CreatedAt,
		CompletedAt: session.CompletedAt,
	}
	if session.Outcome != nil {
		v := session.Outcome.Value
		item.Outcome = &v
	}
	return item
}

// missingSession distinguishes archived sessions from unknown ids
func (s *InterviewService) missingSession(ctx context.Context, sessionID string) error {
	archived, err := s.archive.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if archived != nil {
		return ErrSessionComplete
	}
	return ErrSessionNotFound
}

func (s *InterviewService) toSession(sessionID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sessionID, msgType, payload)
	}
}

func (s *InterviewService) toHosts(msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToHosts(msgType, payload)
	}
}
