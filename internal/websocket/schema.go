package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNavigate Action = "navigate"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to save a single answer.
type AnswerRequest struct {
	Action        Action `json:"action"`
	QuestionID    string `json:"question_id"`
	SelectedIndex *int   `json:"selected_index,omitempty"`
	Text          string `json:"text,omitempty"`
}

// NavigateRequest moves the session position: "next", "previous", or "goto"
// with a zero-based index.
type NavigateRequest struct {
	Action Action `json:"action"`
	Move   string `json:"move"`
	Index  int    `json:"index"`
}

// SubmitRequest is sent by the client to finish and grade the quiz.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventGraded  Event = "graded"
	EventTick    Event = "tick"
	EventPong    Event = "pong"
)

type AnswerResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// GradedResponse carries the final outcome, pushed on explicit submit and on
// countdown expiry alike.
type GradedResponse struct {
	Event        Event   `json:"event"`
	Status       string  `json:"status"`
	Score        int     `json:"score"`
	ScorePercent float64 `json:"score_percent"`
	Passed       bool    `json:"passed"`
}

// TickResponse streams the remaining seconds while the quiz is timed.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
