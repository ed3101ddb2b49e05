package model

import "time"

// Turn is one question/answer exchange. It is immutable once Answer is recorded.
type Turn struct {
	Index      int            `json:"index" bson:"index"` // 1-based, monotonically increasing
	Dimension  TraitDimension `json:"dimension" bson:"dimension"`
	Label      string         `json:"label" bson:"label"`
	Question   string         `json:"question" bson:"question"`
	Answer     string         `json:"answer,omitempty" bson:"answer,omitempty"`
	AskedAt    time.Time      `json:"askedAt" bson:"askedAt"`
	AnsweredAt *time.Time     `json:"answeredAt,omitempty" bson:"answeredAt,omitempty"`
}

// Answered reports whether the respondent's answer has been recorded
func (t *Turn) Answered() bool {
	return t.AnsweredAt != nil
}
