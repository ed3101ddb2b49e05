package model

import "time"

// ScoreRecord is the evaluation of one turn's answer. Created once per turn, never mutated.
type ScoreRecord struct {
	TurnIndex int            `json:"turnIndex" bson:"turnIndex"`
	Dimension TraitDimension `json:"dimension" bson:"dimension"`
	Label     string         `json:"label" bson:"label"`
	Score     float64        `json:"score" bson:"score"`
	Comment   string         `json:"comment" bson:"comment"`

	// ReportedItem is the grit_item the oracle returned when it differs from Dimension
	ReportedItem TraitDimension `json:"reportedItem,omitempty" bson:"reportedItem,omitempty"`

	EvaluatedAt time.Time `json:"evaluatedAt" bson:"evaluatedAt"`
}

// EvaluationPayload is the wire shape the evaluation oracle must return
type EvaluationPayload struct {
	GritItem *int     `json:"grit_item"`
	Score    *float64 `json:"score"`
	Comment  string   `json:"comment"`
}

// ScoreScale bounds evaluation scores (inclusive)
type ScoreScale struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the scale
func (s ScoreScale) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}
