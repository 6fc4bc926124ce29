package model

import (
	"time"

	"github.com/google/uuid"
)

// LeaveStatus enumerates the lifecycle of a leave request. The status is
// advanced only by the test pipeline (ASSIGNED/COMPLETED) and the admin
// decision (APPROVED/REJECTED).
type LeaveStatus string

const (
	LeaveStatusPending       LeaveStatus = "pending"
	LeaveStatusTestAssigned  LeaveStatus = "test-assigned"
	LeaveStatusTestCompleted LeaveStatus = "test-completed"
	LeaveStatusApproved      LeaveStatus = "approved"
	LeaveStatusRejected      LeaveStatus = "rejected"
)

// LeaveRequest represents an employee's leave application. The test
// attempt gating its approval is referenced through SessionID.
type LeaveRequest struct {
	ID           uuid.UUID   `json:"id"`
	UserID       int         `json:"user_id"`
	Reason       string      `json:"reason"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      time.Time   `json:"end_date"`
	Subjects     []string    `json:"subjects"`
	Status       LeaveStatus `json:"status"`
	TestScore    *float64    `json:"test_score,omitempty"`
	SessionID    *uuid.UUID  `json:"session_id,omitempty"`
	AdminRemarks *string     `json:"admin_remarks,omitempty"`
	DecidedBy    *int        `json:"decided_by,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ApplyLeaveRequest is the payload for submitting a leave application.
// Dates use the YYYY-MM-DD form.
type ApplyLeaveRequest struct {
	Reason    string   `json:"reason" binding:"required,min=3,max=2000"`
	StartDate string   `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string   `json:"end_date" binding:"required,datetime=2006-01-02"`
	Subjects  []string `json:"subjects" binding:"required,min=1,dive,min=1"`
}

// DecideLeaveRequest is the payload for the admin approval decision.
// The recommendation attached to listings is advisory; this is the
// human decision of record.
type DecideLeaveRequest struct {
	Status       string `json:"status" binding:"required,oneof=approved rejected"`
	AdminRemarks string `json:"admin_remarks" binding:"max=2000"`
}
