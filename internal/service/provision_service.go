package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leavedesk/leavegate-backend/internal/assessment"
	"github.com/leavedesk/leavegate-backend/internal/config"
	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/repository"
)

// Provisioning errors.
var (
	ErrInsufficientQuestions = errors.New("question bank cannot satisfy the required composition")
)

// ProvisionService assembles a test session for a leave request:
// duration tier, difficulty-biased sampling from the requested subjects,
// and the session record with its frozen question set.
type ProvisionService struct {
	questionRepo *repository.QuestionRepository
	sessionRepo  *repository.SessionRepository
	leaveRepo    *repository.LeaveRepository
	policySvc    *PolicyService
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewProvisionService creates a new ProvisionService.
func NewProvisionService(
	questionRepo *repository.QuestionRepository,
	sessionRepo *repository.SessionRepository,
	leaveRepo *repository.LeaveRepository,
	policySvc *PolicyService,
	rdb *redis.Client,
	log zerolog.Logger,
) *ProvisionService {
	return &ProvisionService{
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		leaveRepo:    leaveRepo,
		policySvc:    policySvc,
		rdb:          rdb,
		log:          log.With().Str("component", "provision_service").Logger(),
	}
}

// ProvisionTest creates the session for a pending leave request and
// moves the request to test-assigned. Idempotent: a leave that already
// has a session gets the existing one back regardless of who calls.
func (s *ProvisionService) ProvisionTest(ctx context.Context, leave *model.LeaveRequest) (*model.TestSession, error) {
	if leave.Status != model.LeaveStatusPending {
		existing, err := s.sessionRepo.GetByLeave(ctx, leave.ID)
		if err != nil {
			return nil, fmt.Errorf("get existing session: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("leave %s is %s but has no session", leave.ID, leave.Status)
	}

	policy, err := s.policySvc.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}

	days := assessment.LeaveDays(leave.StartDate, leave.EndDate)
	comp := assessment.CompositionFor(days)

	mcqs, err := s.sampleBiased(ctx, model.QuestionTypeMCQ, leave.Subjects, comp.MCQCount, comp.Bias)
	if err != nil {
		return nil, err
	}
	coding, err := s.sampleBiased(ctx, model.QuestionTypeCoding, leave.Subjects, comp.CodingCount, comp.Bias)
	if err != nil {
		return nil, err
	}

	// MCQ round first, coding round after, positions contiguous.
	questions := make([]model.SessionQuestion, 0, len(mcqs)+len(coding))
	pos := 0
	for _, q := range mcqs {
		questions = append(questions, model.SessionQuestion{QuestionID: q.ID, Position: pos, Round: 1})
		pos++
	}
	for _, q := range coding {
		questions = append(questions, model.SessionQuestion{QuestionID: q.ID, Position: pos, Round: 2})
		pos++
	}

	timeLimit := policy.MCQTimeLimit + policy.CodingTimeLimit

	session := &model.TestSession{
		LeaveID:          leave.ID,
		UserID:           leave.UserID,
		State:            model.SessionNotStarted,
		TimeLimitMinutes: timeLimit,
	}
	if err := s.sessionRepo.Create(ctx, session, questions); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	attached, err := s.leaveRepo.AttachSession(ctx, leave.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("attach session: %w", err)
	}
	if !attached {
		// Lost a provisioning race; the winner's session is the real one.
		existing, fetchErr := s.sessionRepo.GetByLeave(ctx, leave.ID)
		if fetchErr != nil || existing == nil {
			return nil, fmt.Errorf("concurrent provisioning detected, fetch failed: %w", fetchErr)
		}
		if existing.ID != session.ID {
			return existing, nil
		}
	}

	s.warmCache(ctx, session, append(mcqs, coding...), questions)

	s.log.Info().
		Str("leave_id", leave.ID.String()).
		Str("session_id", session.ID.String()).
		Int("leave_days", days).
		Int("mcq", len(mcqs)).
		Int("coding", len(coding)).
		Str("bias", string(comp.Bias)).
		Msg("Test session provisioned")

	return session, nil
}

// sampleBiased fills the per-difficulty quotas for one question type.
// Relaxation happens in two logged steps: a bucket that runs short is
// topped up from any difficulty within the requested subjects, and a
// subject set that still cannot supply the total falls back to the
// whole bank. Only a bank that is short across all subjects fails
// provisioning.
func (s *ProvisionService) sampleBiased(ctx context.Context, qtype model.QuestionType, subjects []string, count int, bias assessment.DifficultyBias) ([]model.Question, error) {
	if count <= 0 {
		return nil, nil
	}

	quota := assessment.DifficultyQuota(count, bias)
	picked := make([]model.Question, 0, count)
	exclude := make([]uuid.UUID, 0, count)

	for _, difficulty := range []model.Difficulty{model.DifficultyHard, model.DifficultyMedium, model.DifficultyEasy} {
		want := quota[difficulty]
		if want == 0 {
			continue
		}
		d := difficulty
		batch, err := s.questionRepo.Sample(ctx, qtype, subjects, &d, exclude, want)
		if err != nil {
			return nil, fmt.Errorf("sample %s/%s: %w", qtype, difficulty, err)
		}
		for _, q := range batch {
			picked = append(picked, q)
			exclude = append(exclude, q.ID)
		}
	}

	if missing := count - len(picked); missing > 0 {
		s.log.Warn().
			Str("type", string(qtype)).
			Strs("subjects", subjects).
			Int("missing", missing).
			Msg("Difficulty quota short, topping up from any bucket")

		batch, err := s.questionRepo.Sample(ctx, qtype, subjects, nil, exclude, missing)
		if err != nil {
			return nil, fmt.Errorf("sample %s top-up: %w", qtype, err)
		}
		for _, q := range batch {
			picked = append(picked, q)
			exclude = append(exclude, q.ID)
		}
	}

	if missing := count - len(picked); missing > 0 {
		s.log.Warn().
			Str("type", string(qtype)).
			Strs("subjects", subjects).
			Int("missing", missing).
			Msg("Requested subjects exhausted, falling back to the whole bank")

		batch, err := s.questionRepo.Sample(ctx, qtype, nil, nil, exclude, missing)
		if err != nil {
			return nil, fmt.Errorf("sample %s cross-subject fallback: %w", qtype, err)
		}
		for _, q := range batch {
			picked = append(picked, q)
			exclude = append(exclude, q.ID)
		}
	}

	if len(picked) < count {
		return nil, fmt.Errorf("%w: need %d %s questions, bank has %d (subjects requested: %v)",
			ErrInsufficientQuestions, count, qtype, len(picked), subjects)
	}
	return picked, nil
}

// warmCache stores the taker-facing paper and the question-ID set so
// the hot session endpoints avoid the join. Failures are logged only;
// Postgres remains the source of truth.
func (s *ProvisionService) warmCache(ctx context.Context, session *model.TestSession, bank []model.Question, set []model.SessionQuestion) {
	byID := make(map[uuid.UUID]*model.Question, len(bank))
	for i := range bank {
		byID[bank[i].ID] = &bank[i]
	}

	paper := make([]model.TakerQuestion, 0, len(set))
	ids := make([]any, 0, len(set))
	for _, sq := range set {
		q, ok := byID[sq.QuestionID]
		if !ok {
			continue
		}
		tq, err := TakerView(q, sq.Round)
		if err != nil {
			s.log.Error().Err(err).Str("question_id", q.ID.String()).Msg("Skipping malformed question payload")
			continue
		}
		paper = append(paper, *tq)
		ids = append(ids, sq.QuestionID.String())
	}

	raw, err := json.Marshal(paper)
	if err != nil {
		return
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.SessionPaperKey(session.ID.String()), raw, 24*time.Hour)
	pipe.SAdd(ctx, config.CacheKey.SessionQuestionSetKey(session.ID.String()), ids...)
	pipe.Expire(ctx, config.CacheKey.SessionQuestionSetKey(session.ID.String()), 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Failed to warm session cache")
	}
}

// TakerView projects a bank question into its taker-facing form:
// options without correct flags, coding cases reduced to the samples.
func TakerView(q *model.Question, round int) (*model.TakerQuestion, error) {
	tq := &model.TakerQuestion{
		ID:         q.ID,
		Round:      round,
		Type:       q.Type,
		Subject:    q.Subject,
		Difficulty: q.Difficulty,
		Points:     q.Points,
	}

	switch q.Type {
	case model.QuestionTypeMCQ:
		p, err := q.DecodeMCQ()
		if err != nil {
			return nil, err
		}
		tq.QuestionText = p.QuestionText
		tq.Options = make([]string, 0, len(p.Options))
		for _, opt := range p.Options {
			tq.Options = append(tq.Options, opt.Text)
		}
	case model.QuestionTypeCoding:
		p, err := q.DecodeCoding()
		if err != nil {
			return nil, err
		}
		tq.ProblemStatement = p.ProblemStatement
		tq.Constraints = p.Constraints
		tq.InputFormat = p.InputFormat
		tq.OutputFormat = p.OutputFormat
		tq.SampleInput = p.SampleInput
		tq.SampleOutput = p.SampleOutput
		tq.StarterCode = p.StarterCode
	}
	return tq, nil
}
