package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leavedesk/leavegate-backend/internal/model"
)

// LeaveRepository handles leave request data access.
type LeaveRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveRepository creates a new LeaveRepository.
func NewLeaveRepository(pool *pgxpool.Pool) *LeaveRepository {
	return &LeaveRepository{pool: pool}
}

const leaveColumns = `id, user_id, reason, start_date, end_date, subjects, status,
	test_score, session_id, admin_remarks, decided_by, created_at`

func scanLeave(row pgx.Row) (*model.LeaveRequest, error) {
	lr := &model.LeaveRequest{}
	err := row.Scan(&lr.ID, &lr.UserID, &lr.Reason, &lr.StartDate, &lr.EndDate,
		&lr.Subjects, &lr.Status, &lr.TestScore, &lr.SessionID,
		&lr.AdminRemarks, &lr.DecidedBy, &lr.CreatedAt)
	if err != nil {
		return nil, err
	}
	return lr, nil
}

// Create inserts a new leave request in pending state.
func (r *LeaveRepository) Create(ctx context.Context, lr *model.LeaveRequest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO leave_requests (user_id, reason, start_date, end_date, subjects, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		lr.UserID, lr.Reason, lr.StartDate, lr.EndDate, lr.Subjects, lr.Status,
	).Scan(&lr.ID, &lr.CreatedAt)
}

// GetByID retrieves a leave request by ID. Returns nil if not found.
func (r *LeaveRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error) {
	lr, err := scanLeave(r.pool.QueryRow(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lr, err
}

// ListByUser retrieves all leave requests belonging to one employee,
// newest first.
func (r *LeaveRepository) ListByUser(ctx context.Context, userID int) ([]model.LeaveRequest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leaveColumns+` FROM leave_requests WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeaves(rows)
}

// ListAll retrieves leave requests across all employees, optionally
// filtered by status, newest first.
func (r *LeaveRepository) ListAll(ctx context.Context, status *model.LeaveStatus) ([]model.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests`
	args := []any{}
	if status != nil && *status != "" {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeaves(rows)
}

func collectLeaves(rows pgx.Rows) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	for rows.Next() {
		lr, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, *lr)
	}
	return leaves, rows.Err()
}

// AttachSession links a provisioned test session to the leave request and
// moves it to test-assigned. The status guard makes provisioning
// idempotent: a second attempt on the same pending request is a no-op.
func (r *LeaveRepository) AttachSession(ctx context.Context, leaveID, sessionID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leave_requests SET session_id = $2, status = $3
		 WHERE id = $1 AND status = $4`,
		leaveID, sessionID, model.LeaveStatusTestAssigned, model.LeaveStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetTestScore records the final test score and moves the request to
// test-completed.
func (r *LeaveRepository) SetTestScore(ctx context.Context, leaveID uuid.UUID, score float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE leave_requests SET test_score = $2, status = $3 WHERE id = $1`,
		leaveID, score, model.LeaveStatusTestCompleted)
	return err
}

// Decide records the admin verdict. Requests can be decided once the
// test completed, or while still pending (no test provisioned yet);
// anything already decided or mid-test is refused by the WHERE guard.
func (r *LeaveRepository) Decide(ctx context.Context, leaveID uuid.UUID, status model.LeaveStatus, remarks *string, adminID int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leave_requests SET status = $2, admin_remarks = $3, decided_by = $4
		 WHERE id = $1 AND status IN ($5, $6)`,
		leaveID, status, remarks, adminID, model.LeaveStatusTestCompleted, model.LeaveStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
