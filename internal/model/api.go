package model

// StartSessionResponse is returned when a new interview begins
type StartSessionResponse struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// SubmitAnswerRequest carries the respondent's answer to the current turn
type SubmitAnswerRequest struct {
	TurnIndex int    `json:"turnIndex"`
	Answer    string `json:"answer"`
}

// SubmitAnswerResponse reports the recorded score and either the next turn or completion
type SubmitAnswerResponse struct {
	Score           *ScoreRecord      `json:"score"`
	NextTurn        *Turn             `json:"nextTurn,omitempty"`
	SessionComplete bool              `json:"sessionComplete"`
	ClosingMessage  string            `json:"closingMessage,omitempty"`
	Outcome         *CompositeOutcome `json:"outcome,omitempty"`
	Phase           SessionPhase      `json:"phase"`
}

// DraftRequest saves an unsent answer
type DraftRequest struct {
	TurnIndex int    `json:"turnIndex"`
	Answer    string `json:"answer"`
}

// Draft is an answer held until it is scored
type Draft struct {
	TurnIndex int    `json:"turnIndex"`
	Answer    string `json:"answer"`
}

// TraitStat aggregates scores for one trait across sessions
type TraitStat struct {
	Dimension TraitDimension `json:"dimension"`
	Label     string         `json:"label"`
	Count     int64          `json:"count"`
	Mean      float64        `json:"mean"`
}

// OutcomeEntry is one row of the outcome board
type OutcomeEntry struct {
	SessionID string `json:"sessionId"`
	Value     int    `json:"value"`
	Rank      int    `json:"rank"`
}

// WSEvent is a push message over websocket
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}
