package model

import "time"

// SummaryRequest is the assembled narrative-generation payload
type SummaryRequest struct {
	SessionID  string           `json:"sessionId"`
	Transcript string           `json:"transcript"`
	ScoreLines []string         `json:"scoreLines"`
	Outcome    CompositeOutcome `json:"outcome"`
}

// SummaryReport is the stored result of summarizing a completed session
type SummaryReport struct {
	SessionID   string           `json:"sessionId" bson:"_id"`
	Narrative   string           `json:"narrative" bson:"narrative"`
	Outcome     CompositeOutcome `json:"outcome" bson:"outcome"`
	Scores      []ScoreRecord    `json:"scores" bson:"scores"`
	GeneratedAt time.Time        `json:"generatedAt" bson:"generatedAt"`
}
