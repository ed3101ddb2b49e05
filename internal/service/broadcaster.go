package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	BroadcastToHosts(msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

// WebSocket event types
const (
	EventSessionStarted   = "session_started"
	EventSessionProgress  = "session_progress"
	EventSessionCompleted = "session_completed"
	EventEvaluating       = "evaluating"
	EventEvaluationResult = "evaluation_result"
	EventNextQuestion     = "next_question"
	EventSessionComplete  = "session_complete"
	EventError            = "error"

	// sent once when a websocket connection opens
	EventSessionState = "session_state"
	EventLiveSessions = "live_sessions"
)
