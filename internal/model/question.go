package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionType distinguishes the two test rounds.
type QuestionType string

const (
	QuestionTypeMCQ    QuestionType = "mcq"
	QuestionTypeCoding QuestionType = "coding"
)

// Difficulty buckets drive the duration-based sampling bias.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a bank entry. Payload holds the type-specific body
// (MCQPayload or CodingPayload) as raw JSON, decoded on demand.
type Question struct {
	ID         uuid.UUID       `json:"id"`
	Type       QuestionType    `json:"question_type"`
	Subject    string          `json:"subject"`
	Difficulty Difficulty      `json:"difficulty"`
	Points     int             `json:"points"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MCQOption is a single choice; exactly one option per question carries
// IsCorrect.
type MCQOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// MCQPayload is the body of a multiple-choice question.
type MCQPayload struct {
	QuestionText string      `json:"question_text"`
	Options      []MCQOption `json:"options"`
}

// CorrectIndex returns the index of the correct option, or -1 when the
// payload is malformed.
func (p *MCQPayload) CorrectIndex() int {
	for i, opt := range p.Options {
		if opt.IsCorrect {
			return i
		}
	}
	return -1
}

// CodingTestCase is one judge case. Hidden cases are scored but never
// shown to the test taker.
type CodingTestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Hidden         bool   `json:"hidden"`
}

// CodingPayload is the body of a coding question.
type CodingPayload struct {
	ProblemStatement string           `json:"problem_statement"`
	Constraints      string           `json:"constraints,omitempty"`
	InputFormat      string           `json:"input_format,omitempty"`
	OutputFormat     string           `json:"output_format,omitempty"`
	SampleInput      string           `json:"sample_input,omitempty"`
	SampleOutput     string           `json:"sample_output,omitempty"`
	StarterCode      string           `json:"starter_code,omitempty"`
	TestCases        []CodingTestCase `json:"test_cases"`
	TimeLimitSec     int              `json:"time_limit_sec,omitempty"`
}

// DecodeMCQ parses the payload of an MCQ question.
func (q *Question) DecodeMCQ() (*MCQPayload, error) {
	if q.Type != QuestionTypeMCQ {
		return nil, fmt.Errorf("question %s is %s, not mcq", q.ID, q.Type)
	}
	var p MCQPayload
	if err := json.Unmarshal(q.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode mcq payload: %w", err)
	}
	return &p, nil
}

// DecodeCoding parses the payload of a coding question.
func (q *Question) DecodeCoding() (*CodingPayload, error) {
	if q.Type != QuestionTypeCoding {
		return nil, fmt.Errorf("question %s is %s, not coding", q.ID, q.Type)
	}
	var p CodingPayload
	if err := json.Unmarshal(q.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode coding payload: %w", err)
	}
	return &p, nil
}

// TakerQuestion is the taker-facing projection of a Question: no
// correct flags, no hidden case outputs.
type TakerQuestion struct {
	ID         uuid.UUID    `json:"id"`
	Round      int          `json:"round"`
	Type       QuestionType `json:"question_type"`
	Subject    string       `json:"subject"`
	Difficulty Difficulty   `json:"difficulty"`
	Points     int          `json:"points"`

	// MCQ fields.
	QuestionText string   `json:"question_text,omitempty"`
	Options      []string `json:"options,omitempty"`

	// Coding fields.
	ProblemStatement string `json:"problem_statement,omitempty"`
	Constraints      string `json:"constraints,omitempty"`
	InputFormat      string `json:"input_format,omitempty"`
	OutputFormat     string `json:"output_format,omitempty"`
	SampleInput      string `json:"sample_input,omitempty"`
	SampleOutput     string `json:"sample_output,omitempty"`
	StarterCode      string `json:"starter_code,omitempty"`
}

// AddQuestionRequest is the payload for adding a bank question.
// Type-specific fields are validated in the service layer since gin
// binding cannot express the conditional shape.
type AddQuestionRequest struct {
	Type       string `json:"question_type" binding:"required,oneof=mcq coding"`
	Subject    string `json:"subject" binding:"required,min=1,max=100"`
	Difficulty string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Points     int    `json:"points" binding:"required,min=1,max=100"`

	// MCQ fields.
	QuestionText string      `json:"question_text,omitempty"`
	Options      []MCQOption `json:"options,omitempty"`

	// Coding fields.
	ProblemStatement string           `json:"problem_statement,omitempty"`
	Constraints      string           `json:"constraints,omitempty"`
	InputFormat      string           `json:"input_format,omitempty"`
	OutputFormat     string           `json:"output_format,omitempty"`
	SampleInput      string           `json:"sample_input,omitempty"`
	SampleOutput     string           `json:"sample_output,omitempty"`
	StarterCode      string           `json:"starter_code,omitempty"`
	TestCases        []CodingTestCase `json:"test_cases,omitempty"`
	TimeLimitSec     int              `json:"time_limit_sec,omitempty"`
}
