package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leavedesk/leavegate-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a new bank question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (question_type, subject, difficulty, points, payload)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		q.Type, q.Subject, q.Difficulty, q.Points, q.Payload,
	).Scan(&q.ID, &q.CreatedAt)
}

// ErrQuestionReferenced is returned when a delete hits the foreign key
// from session_questions: a question that any session ever selected is
// part of the audit trail and must stay.
var ErrQuestionReferenced = errors.New("question is referenced by a test session")

// Delete removes a bank question that no session has used.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return false, ErrQuestionReferenced
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List retrieves questions with optional filters and pagination.
func (r *QuestionRepository) List(ctx context.Context, subject *string, qtype *model.QuestionType, difficulty *model.Difficulty, page, perPage int) ([]model.Question, int64, error) {
	baseQuery := ` FROM questions WHERE 1=1`
	args := []any{}

	if subject != nil && *subject != "" {
		args = append(args, *subject)
		baseQuery += fmt.Sprintf(" AND subject = $%d", len(args))
	}
	if qtype != nil && *qtype != "" {
		args = append(args, *qtype)
		baseQuery += fmt.Sprintf(" AND question_type = $%d", len(args))
	}
	if difficulty != nil && *difficulty != "" {
		args = append(args, *difficulty)
		baseQuery += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, question_type, subject, difficulty, points, payload, created_at` +
		baseQuery +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Type, &q.Subject, &q.Difficulty, &q.Points, &q.Payload, &q.CreatedAt); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// Subjects returns the distinct subjects present in the bank.
func (r *QuestionRepository) Subjects(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT subject FROM questions ORDER BY subject ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Sample picks up to limit random questions of one type, optionally
// restricted to a subject set and a difficulty bucket, excluding any
// already-selected IDs. Randomization happens in the database so the
// provisioner stays stateless.
func (r *QuestionRepository) Sample(ctx context.Context, qtype model.QuestionType, subjects []string, difficulty *model.Difficulty, exclude []uuid.UUID, limit int) ([]model.Question, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT id, question_type, subject, difficulty, points, payload, created_at
	          FROM questions WHERE question_type = $1`
	args := []any{qtype}

	if len(subjects) > 0 {
		args = append(args, subjects)
		query += fmt.Sprintf(" AND subject = ANY($%d)", len(args))
	}
	if difficulty != nil {
		args = append(args, *difficulty)
		query += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}
	if len(exclude) > 0 {
		args = append(args, exclude)
		query += fmt.Sprintf(" AND id != ALL($%d)", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY random() LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Type, &q.Subject, &q.Difficulty, &q.Points, &q.Payload, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByIDs retrieves questions by ID, keyed for lookup.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_type, subject, difficulty, points, payload, created_at
		 FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make(map[uuid.UUID]*model.Question, len(ids))
	for rows.Next() {
		q := &model.Question{}
		if err := rows.Scan(&q.ID, &q.Type, &q.Subject, &q.Difficulty, &q.Points, &q.Payload, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions[q.ID] = q
	}
	return questions, rows.Err()
}
