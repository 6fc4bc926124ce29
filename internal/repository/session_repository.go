package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leavedesk/leavegate-backend/internal/model"
)

// SessionRepository handles test session data access. State transitions
// are single conditional UPDATEs so concurrent requests against the same
// session resolve in the database without application locks.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, leave_id, user_id, state, submit_reason, time_limit_minutes,
	started_at, finished_at, violation_count, raw_score, final_score,
	round1_score, round2_score, violation_penalty, passed, created_at, updated_at`

func scanSession(row pgx.Row) (*model.TestSession, error) {
	s := &model.TestSession{}
	err := row.Scan(&s.ID, &s.LeaveID, &s.UserID, &s.State, &s.SubmitReason,
		&s.TimeLimitMinutes, &s.StartedAt, &s.FinishedAt, &s.ViolationCount,
		&s.RawScore, &s.FinalScore, &s.Round1Score, &s.Round2Score,
		&s.ViolationPenalty, &s.Passed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts the session together with its selected question set in
// one transaction so a half-provisioned session can never be observed.
func (r *SessionRepository) Create(ctx context.Context, s *model.TestSession, questions []model.SessionQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO test_sessions (leave_id, user_id, state, time_limit_minutes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		s.LeaveID, s.UserID, s.State, s.TimeLimitMinutes,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}

	batchRows := make([][]any, 0, len(questions))
	for i := range questions {
		questions[i].SessionID = s.ID
		batchRows = append(batchRows, []any{
			s.ID, questions[i].QuestionID, questions[i].Position, questions[i].Round,
		})
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"session_questions"},
		[]string{"session_id", "question_id", "position", "round"},
		pgx.CopyFromRows(batchRows))
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a session by ID. Returns nil if not found.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// GetByLeave retrieves the session provisioned for a leave request, if any.
func (r *SessionRepository) GetByLeave(ctx context.Context, leaveID uuid.UUID) (*model.TestSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE leave_id = $1`, leaveID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// Start transitions not-started -> in-progress and stamps the server
// start time. Returns the stamped time, or nil when the session was not
// in not-started state (already running or already submitted).
func (r *SessionRepository) Start(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	var startedAt time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE test_sessions SET state = $2, started_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND state = $3
		 RETURNING started_at`,
		id, model.SessionInProgress, model.SessionNotStarted,
	).Scan(&startedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &startedAt, nil
}

// MarkSubmitted transitions in-progress -> submitted with the given
// reason. Exactly one caller can win this transition; everyone else gets
// false and must not run finalization again.
func (r *SessionRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, reason model.SubmitReason) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE test_sessions SET state = $2, submit_reason = $3, finished_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND state = $4`,
		id, model.SessionSubmitted, reason, model.SessionInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementViolationCount atomically bumps the counter and returns the
// new value. Concurrent reports each get a distinct count. The state
// guard serializes reports against the submit transition: a report that
// loses the race gets 0, meaning the session is no longer mutable and
// its frozen penalty must not move.
func (r *SessionRepository) IncrementViolationCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE test_sessions SET violation_count = violation_count + 1, updated_at = NOW()
		 WHERE id = $1 AND state = $2
		 RETURNING violation_count`, id, model.SessionInProgress).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}

// HasQuestion reports whether the question belongs to the session's
// selected set.
func (r *SessionRepository) HasQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM session_questions WHERE session_id = $1 AND question_id = $2)`,
		sessionID, questionID).Scan(&exists)
	return exists, err
}

// ListQuestions returns the session's question set joined with the bank
// rows, in presentation order.
func (r *SessionRepository) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]model.SessionQuestionRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sq.question_id, sq.position, sq.round,
		        q.question_type, q.subject, q.difficulty, q.points, q.payload
		 FROM session_questions sq
		 JOIN questions q ON q.id = sq.question_id
		 WHERE sq.session_id = $1
		 ORDER BY sq.position ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SessionQuestionRow
	for rows.Next() {
		var row model.SessionQuestionRow
		if err := rows.Scan(&row.QuestionID, &row.Position, &row.Round,
			&row.Type, &row.Subject, &row.Difficulty, &row.Points, &row.Payload); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SaveResult persists the scoring outcome on the submitted session.
func (r *SessionRepository) SaveResult(ctx context.Context, id uuid.UUID, raw, final, round1, round2 float64, penalty int, passed bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE test_sessions
		 SET raw_score = $2, final_score = $3, round1_score = $4, round2_score = $5,
		     violation_penalty = $6, passed = $7, updated_at = NOW()
		 WHERE id = $1`,
		id, raw, final, round1, round2, penalty, passed)
	return err
}

// UpsertAnswer durably stores one answer, overwriting any previous value
// for the same question. Used by the finalize flush, which runs after
// the submit transition and is the last writer; live traffic goes
// through UpsertAnswerIfActive.
func (r *SessionRepository) UpsertAnswer(ctx context.Context, sessionID, questionID uuid.UUID, value string, submittedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO session_answers (session_id, question_id, value, submitted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET value = EXCLUDED.value, submitted_at = EXCLUDED.submitted_at`,
		sessionID, questionID, value, submittedAt)
	return err
}

// UpsertAnswerIfActive stores one answer only while the session is
// still in progress. Returns false when the session has been finalized
// meanwhile, so a racing write cannot append unscored answers to a
// submitted session.
func (r *SessionRepository) UpsertAnswerIfActive(ctx context.Context, sessionID, questionID uuid.UUID, value string, submittedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO session_answers (session_id, question_id, value, submitted_at)
		 SELECT $1, $2, $3, $4
		 FROM test_sessions WHERE id = $1 AND state = $5
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET value = EXCLUDED.value, submitted_at = EXCLUDED.submitted_at`,
		sessionID, questionID, value, submittedAt, model.SessionInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListAnswers returns the durably stored answers for a session.
func (r *SessionRepository) ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.Response, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, value, submitted_at
		 FROM session_answers WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Response
	for rows.Next() {
		var a model.Response
		if err := rows.Scan(&a.QuestionID, &a.Value, &a.SubmittedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
