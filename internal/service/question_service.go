package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/repository"
)

// Question bank errors.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidQuestion  = errors.New("invalid question payload")
	ErrQuestionInUse    = errors.New("question is part of a test session")
)

// QuestionService handles question bank management.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// Add validates and stores a bank question. The type-specific body is
// checked here because the shared binding layer cannot see which fields
// the type requires.
func (s *QuestionService) Add(ctx context.Context, req *model.AddQuestionRequest) (*model.Question, error) {
	var payload any
	switch model.QuestionType(req.Type) {
	case model.QuestionTypeMCQ:
		if req.QuestionText == "" {
			return nil, fmt.Errorf("%w: question_text is required for mcq", ErrInvalidQuestion)
		}
		if len(req.Options) < 2 {
			return nil, fmt.Errorf("%w: mcq needs at least 2 options", ErrInvalidQuestion)
		}
		correct := 0
		for _, opt := range req.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, fmt.Errorf("%w: exactly one option must be correct", ErrInvalidQuestion)
		}
		payload = model.MCQPayload{
			QuestionText: req.QuestionText,
			Options:      req.Options,
		}
	case model.QuestionTypeCoding:
		if req.ProblemStatement == "" {
			return nil, fmt.Errorf("%w: problem_statement is required for coding", ErrInvalidQuestion)
		}
		if len(req.TestCases) == 0 {
			return nil, fmt.Errorf("%w: coding needs at least one test case", ErrInvalidQuestion)
		}
		payload = model.CodingPayload{
			ProblemStatement: req.ProblemStatement,
			Constraints:      req.Constraints,
			InputFormat:      req.InputFormat,
			OutputFormat:     req.OutputFormat,
			SampleInput:      req.SampleInput,
			SampleOutput:     req.SampleOutput,
			StarterCode:      req.StarterCode,
			TestCases:        req.TestCases,
			TimeLimitSec:     req.TimeLimitSec,
		}
	default:
		return nil, fmt.Errorf("%w: unknown question type %q", ErrInvalidQuestion, req.Type)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	question := &model.Question{
		Type:       model.QuestionType(req.Type),
		Subject:    req.Subject,
		Difficulty: model.Difficulty(req.Difficulty),
		Points:     req.Points,
		Payload:    raw,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return question, nil
}

// Delete removes a bank question. Questions that any session selected
// are part of the audit trail and are refused with ErrQuestionInUse.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.questionRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrQuestionReferenced) {
		return ErrQuestionInUse
	}
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if !deleted {
		return ErrQuestionNotFound
	}
	return nil
}

// List retrieves questions with optional filters and pagination.
func (s *QuestionService) List(ctx context.Context, subject *string, qtype *model.QuestionType, difficulty *model.Difficulty, page, perPage int) ([]model.Question, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.questionRepo.List(ctx, subject, qtype, difficulty, page, perPage)
}

// Subjects lists the distinct subjects in the bank, for the leave form.
func (s *QuestionService) Subjects(ctx context.Context) ([]string, error) {
	return s.questionRepo.Subjects(ctx)
}
