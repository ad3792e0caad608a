package websocket

import "github.com/shikshaprep/mocktest-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStatus Event = "status"
	EventPong   Event = "pong"
)

// StatusEvent reports a test's processing state. The ingestion pipeline
// publishes it on the per-test Redis channel and the socket forwards it
// verbatim, so both sides share this shape.
type StatusEvent struct {
	Event           Event            `json:"event"`
	TestID          string           `json:"test_id"`
	Status          model.TestStatus `json:"status"`
	QuestionCount   int              `json:"question_count"`
	ProcessingError string           `json:"processing_error,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
