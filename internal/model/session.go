package model

import (
	"fmt"
	"time"
)

// SessionPhase is the lifecycle state of an interview session
type SessionPhase string

const (
	PhaseAwaitingAnswer         SessionPhase = "awaiting_answer"
	PhaseEvaluating             SessionPhase = "evaluating"
	PhaseGeneratingNextQuestion SessionPhase = "generating_next_question"
	PhaseComplete               SessionPhase = "complete"
)

var phaseTransitions = map[SessionPhase][]SessionPhase{
	PhaseAwaitingAnswer:         {PhaseEvaluating},
	PhaseEvaluating:             {PhaseGeneratingNextQuestion, PhaseAwaitingAnswer},
	PhaseGeneratingNextQuestion: {PhaseAwaitingAnswer, PhaseComplete},
	PhaseComplete:               nil,
}

// CanTransition reports whether from -> to is a legal lifecycle step
func CanTransition(from, to SessionPhase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the full state of one interview
type Session struct {
	ID             string            `json:"id" bson:"_id"`
	Phase          SessionPhase      `json:"phase" bson:"phase"`
	Turns          []Turn            `json:"turns" bson:"turns"`
	Scores         []ScoreRecord     `json:"scores" bson:"scores"`
	ClosingMessage string            `json:"closingMessage,omitempty" bson:"closingMessage,omitempty"`
	Outcome        *CompositeOutcome `json:"outcome,omitempty" bson:"outcome,omitempty"`
	CreatedAt      time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt" bson:"updatedAt"`
	CompletedAt    *time.Time        `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// Transition moves the session to phase to, rejecting illegal steps
func (s *Session) Transition(to SessionPhase) error {
	if !CanTransition(s.Phase, to) {
		return fmt.Errorf("illegal phase transition %s -> %s", s.Phase, to)
	}
	s.Phase = to
	return nil
}

// CurrentTurn returns the last issued turn, or nil if none exist
func (s *Session) CurrentTurn() *Turn {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// Probed returns the set of dimensions that already have a score record
func (s *Session) Probed() map[TraitDimension]bool {
	probed := make(map[TraitDimension]bool, len(s.Scores))
	for _, r := range s.Scores {
		probed[r.Dimension] = true
	}
	return probed
}

// ScoreFor returns the score record for a turn index, or nil
func (s *Session) ScoreFor(turnIndex int) *ScoreRecord {
	for i := range s.Scores {
		if s.Scores[i].TurnIndex == turnIndex {
			return &s.Scores[i]
		}
	}
	return nil
}

// AnsweredTurns counts turns with a recorded answer
func (s *Session) AnsweredTurns() int {
	n := 0
	for i := range s.Turns {
		if s.Turns[i].Answered() {
			n++
		}
	}
	return n
}

// Consistent checks that scores and answered turns agree
func (s *Session) Consistent() error {
	if len(s.Scores) != s.AnsweredTurns() {
		return fmt.Errorf("session %s has %d scores for %d answered turns", s.ID, len(s.Scores), s.AnsweredTurns())
	}
	seen := make(map[TraitDimension]bool, len(s.Scores))
	for i, r := range s.Scores {
		if seen[r.Dimension] {
			return fmt.Errorf("session %s probed trait %d twice", s.ID, r.Dimension)
		}
		seen[r.Dimension] = true
		if i > 0 && s.Scores[i-1].TurnIndex >= r.TurnIndex {
			return fmt.Errorf("session %s scores out of turn order", s.ID)
		}
	}
	return nil
}

// SessionListItem is the compact form used by admin listings
type SessionListItem struct {
	ID          string       `json:"id" bson:"_id"`
	Phase       SessionPhase `json:"phase" bson:"phase"`
	Turns       int          `json:"turns" bson:"turns"`
	Outcome     *int         `json:"outcome,omitempty" bson:"outcome,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" bson:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}
