package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gritinterview/internal/model"
	"gritinterview/internal/oracle"
)

// EvaluatorService scores answers through the evaluation oracle
type EvaluatorService struct {
	poller *JobPoller
	traits *model.TraitTable
	scale  model.ScoreScale
}

// NewEvaluatorService creates a new evaluator service
func NewEvaluatorService(poller *JobPoller, traits *model.TraitTable, scale model.ScoreScale) *EvaluatorService {
	return &EvaluatorService{
		poller: poller,
		traits: traits,
		scale:  scale,
	}
}

// Evaluate scores the answer of turn. It never falls back to a default score.
func (s *EvaluatorService) Evaluate(ctx context.Context, turn model.Turn) (*model.ScoreRecord, error) {
	if strings.TrimSpace(turn.Answer) == "" {
		return nil, ErrEmptyAnswer
	}

	text, err := s.poller.RunJob(ctx, oracle.Request{
		Kind:         model.JobEvaluate,
		Instructions: s.buildEvaluationInstructions(),
		Input:        s.buildEvaluationPrompt(turn),
		Trait:        turn.Dimension,
		Answer:       turn.Answer,
	})
	if err != nil {
		return nil, err
	}

	payload, err := s.ParseEvaluation(text)
	if err != nil {
		log.Printf("[Evaluator] Turn %d: %v", turn.Index, err)
		return nil, err
	}

	record := &model.ScoreRecord{
		TurnIndex:   turn.Index,
		Dimension:   turn.Dimension,
		Label:       s.traits.Label(turn.Dimension),
		Score:       *payload.Score,
		Comment:     strings.TrimSpace(payload.Comment),
		EvaluatedAt: time.Now(),
	}
	if reported := model.TraitDimension(*payload.GritItem); reported != turn.Dimension {
		log.Printf("[Evaluator] Turn %d: oracle reported trait %d, scheduled trait %d kept", turn.Index, reported, turn.Dimension)
		record.ReportedItem = reported
	}
	return record, nil
}

// ParseEvaluation extracts and validates the first JSON object in text
func (s *EvaluatorService) ParseEvaluation(text string) (*model.EvaluationPayload, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvaluation, err)
	}

	var payload model.EvaluationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvaluation, err)
	}
	if payload.Score == nil {
		return nil, fmt.Errorf("%w: missing numeric score", ErrMalformedEvaluation)
	}
	if !s.scale.Contains(*payload.Score) {
		return nil, fmt.Errorf("%w: score %v outside %.0f-%.0f", ErrMalformedEvaluation, *payload.Score, s.scale.Min, s.scale.Max)
	}
	if payload.GritItem == nil {
		return nil, fmt.Errorf("%w: missing grit_item", ErrMalformedEvaluation)
	}
	if !model.TraitDimension(*payload.GritItem).Valid() {
		return nil, fmt.Errorf("%w: grit_item %d out of range", ErrMalformedEvaluation, *payload.GritItem)
	}
	return &payload, nil
}

// extractJSONObject returns the first well-formed JSON object in text, skipping prose, stray braces and code fences
func extractJSONObject(text string) (json.RawMessage, error) {
	var lastErr error
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		dec := json.NewDecoder(bytes.NewReader([]byte(text[start:])))
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		offset = start + 1
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no JSON object in response")
}

// Prompt builders
func (s *EvaluatorService) buildEvaluationInstructions() string {
	return fmt.Sprintf(`You evaluate interview answers for one of twelve GRIT traits.
Return ONLY valid JSON matching this schema:
{"grit_item": <trait number 1-12>, "score": <number %.0f to %.0f>, "comment": "<one or two sentences>"}`,
		s.scale.Min, s.scale.Max)
}

func (s *EvaluatorService) buildEvaluationPrompt(turn model.Turn) string {
	return fmt.Sprintf(`Trait: %d (%s)
Question: %s
Answer: %s

Score how strongly the answer shows this trait.`,
		turn.Dimension, s.traits.Label(turn.Dimension), turn.Question, turn.Answer)
}
