package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer    Action = "answer"
	ActionViolation Action = "violation"
	ActionSubmit    Action = "submit"
	ActionPing      Action = "ping"
)

// RequestEnvelope carries every client message. Fields beyond Action
// are populated depending on the action.
type RequestEnvelope struct {
	Action Action `json:"action"`

	// answer
	QID    string `json:"q_id,omitempty"`
	Answer string `json:"ans,omitempty"`

	// violation
	Type   string `json:"type,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventViolation Event = "violation"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

type SavedResponse struct {
	Event Event  `json:"event"`
	QID   string `json:"q_id"`
}

// ViolationResponse mirrors the REST escalation contract so the client
// renders the same UI regardless of transport.
type ViolationResponse struct {
	Event          Event  `json:"event"`
	ViolationCount int    `json:"violationCount"`
	MaxViolations  int    `json:"maxViolations"`
	CurrentPenalty int    `json:"currentPenalty"`
	WarningLevel   string `json:"warningLevel"`
	AutoSubmitted  bool   `json:"autoSubmitted"`
}

type SubmittedResponse struct {
	Event      Event   `json:"event"`
	FinalScore float64 `json:"finalScore"`
	Passed     bool    `json:"passed"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse doubles as clock sync: the client resets its advisory
// countdown from RemainingSeconds on every pong.
type PongResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remainingSeconds"`
}
