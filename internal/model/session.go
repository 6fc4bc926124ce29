package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionState enumerates test session states. Transitions are
// one-directional: not-started → in-progress → submitted.
type SessionState string

const (
	SessionNotStarted SessionState = "not-started"
	SessionInProgress SessionState = "in-progress"
	SessionSubmitted  SessionState = "submitted"
)

// SubmitReason records why a session was finalized. Timeout and the
// violation limit are normal terminal transitions, not errors.
type SubmitReason string

const (
	SubmitManual         SubmitReason = "manual"
	SubmitTimeout        SubmitReason = "timeout"
	SubmitViolationLimit SubmitReason = "violation-limit"
)

// TestSession is one provisioned test attempt tied to a single leave
// request. Immutable once submitted.
type TestSession struct {
	ID               uuid.UUID     `json:"id"`
	LeaveID          uuid.UUID     `json:"leave_id"`
	UserID           int           `json:"user_id"`
	State            SessionState  `json:"state"`
	SubmitReason     *SubmitReason `json:"submit_reason,omitempty"`
	TimeLimitMinutes int           `json:"time_limit_minutes"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	FinishedAt       *time.Time    `json:"finished_at,omitempty"`
	ViolationCount   int           `json:"violation_count"`

	// Scoring fields, populated at finalization.
	RawScore         *float64 `json:"raw_score,omitempty"`
	FinalScore       *float64 `json:"final_score,omitempty"`
	Round1Score      *float64 `json:"round1_score,omitempty"`
	Round2Score      *float64 `json:"round2_score,omitempty"`
	ViolationPenalty *int     `json:"violation_penalty,omitempty"`
	Passed           *bool    `json:"passed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionQuestion ties a bank question into a session with its position
// and round tag (round 1 = MCQ, round 2 = coding).
type SessionQuestion struct {
	SessionID  uuid.UUID `json:"session_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Position   int       `json:"position"`
	Round      int       `json:"round"`
}

// SessionQuestionRow is a session question joined with its bank row.
type SessionQuestionRow struct {
	QuestionID uuid.UUID
	Position   int
	Round      int
	Type       QuestionType
	Subject    string
	Difficulty Difficulty
	Points     int
	Payload    json.RawMessage
}

// Response is the current answer for one session question. Later
// submissions overwrite earlier ones; at most one row per question.
type Response struct {
	QuestionID  uuid.UUID `json:"question_id"`
	Value       string    `json:"value"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ViolationRecord is one anti-cheat event. Append-only.
type ViolationRecord struct {
	Type       string    `json:"type"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// StartSessionRequest carries the client's fullscreen acknowledgement,
// required before start when the policy demands fullscreen.
type StartSessionRequest struct {
	FullscreenAck bool `json:"fullscreen_ack"`
}

// SubmitAnswerRequest is the payload for answering one question.
// Value is the selected option index (as digits) for MCQ, or the code
// text for coding questions; the shape is validated only at scoring.
type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Value      string `json:"value" binding:"required"`
}

// ReportViolationRequest is the payload for one proctoring event.
type ReportViolationRequest struct {
	Type   string `json:"type" binding:"required,min=1,max=64"`
	Detail string `json:"detail" binding:"max=500"`
}

// SessionStateView is returned on start and on reload so the client can
// restore its advisory countdown from the server clock.
type SessionStateView struct {
	SessionID        uuid.UUID         `json:"session_id"`
	State            SessionState      `json:"state"`
	StartedAt        *time.Time        `json:"started_at,omitempty"`
	TimeLimitMinutes int               `json:"time_limit_minutes"`
	RemainingSeconds int               `json:"remaining_seconds"`
	AutosavedAnswers map[string]string `json:"autosaved_answers,omitempty"`
}

// TestResult is the finalized outcome summary.
type TestResult struct {
	SessionID        uuid.UUID    `json:"session_id"`
	TotalScore       float64      `json:"total_score"`
	MaxScore         float64      `json:"max_score"`
	Percentage       float64      `json:"percentage"`
	RoundScores      RoundScores  `json:"round_scores"`
	ViolationCount   int          `json:"violation_count"`
	ViolationPenalty int          `json:"violation_penalty"`
	Passed           bool         `json:"passed"`
	SubmitReason     SubmitReason `json:"submit_reason"`
	Responses        []Response   `json:"responses"`
	StartTime        *time.Time   `json:"start_time,omitempty"`
	EndTime          *time.Time   `json:"end_time,omitempty"`
}

// RoundScores reports the two round percentages independently.
type RoundScores struct {
	Round1 float64 `json:"round1"`
	Round2 float64 `json:"round2"`
}

// ViolationStatus is the full contract returned on every violation
// report; the client renders its escalation UI from this alone.
type ViolationStatus struct {
	ViolationCount int    `json:"violationCount"`
	MaxViolations  int    `json:"maxViolations"`
	CurrentPenalty int    `json:"currentPenalty"`
	WarningLevel   string `json:"warningLevel"`
	AutoSubmitted  bool   `json:"autoSubmitted"`
}
