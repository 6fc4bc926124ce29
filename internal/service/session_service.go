package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leavedesk/leavegate-backend/internal/assessment"
	"github.com/leavedesk/leavegate-backend/internal/config"
	"github.com/leavedesk/leavegate-backend/internal/judge"
	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/repository"
)

// Session errors.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrAlreadyStarted     = errors.New("session already started")
	ErrAlreadySubmitted   = errors.New("session already submitted")
	ErrSessionNotActive   = errors.New("session is not in progress")
	ErrSessionExpired     = errors.New("session time limit has elapsed")
	ErrUnknownQuestion    = errors.New("question does not belong to this session")
	ErrResultNotFound     = errors.New("result not available")
	ErrFullscreenRequired = errors.New("fullscreen acknowledgement required")
)

// SessionService drives a test session through its lifecycle. All time
// arithmetic uses the server-stamped start time; expiry is enforced
// lazily on the next interaction, so no per-session timers exist.
type SessionService struct {
	sessionRepo   *repository.SessionRepository
	leaveRepo     *repository.LeaveRepository
	violationRepo *repository.ViolationRepository
	policySvc     *PolicyService
	judge         judge.Runner
	rdb           *redis.Client
	log           zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	leaveRepo *repository.LeaveRepository,
	violationRepo *repository.ViolationRepository,
	policySvc *PolicyService,
	runner judge.Runner,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:   sessionRepo,
		leaveRepo:     leaveRepo,
		violationRepo: violationRepo,
		policySvc:     policySvc,
		judge:         runner,
		rdb:           rdb,
		log:           log.With().Str("component", "session_service").Logger(),
	}
}

// getOwned fetches a session and verifies the caller owns it. Foreign
// sessions are reported as not found, not forbidden.
func (s *SessionService) getOwned(ctx context.Context, userID int, sessionID uuid.UUID) (*model.TestSession, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Start transitions the session to in-progress and stamps the server
// start time. The fullscreen acknowledgement is checked against the
// live policy before the transition.
func (s *SessionService) Start(ctx context.Context, userID int, sessionID uuid.UUID, req *model.StartSessionRequest) (*model.SessionStateView, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	policy, err := s.policySvc.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}
	if policy.RequireFullscreen && !req.FullscreenAck {
		return nil, ErrFullscreenRequired
	}

	startedAt, err := s.sessionRepo.Start(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if startedAt == nil {
		// Lost the transition: the session is past not-started.
		if sess.State == model.SessionSubmitted {
			return nil, ErrAlreadySubmitted
		}
		return nil, ErrAlreadyStarted
	}

	// Cache the authoritative start time; State falls back to Postgres
	// on a cache miss, so a Redis hiccup here is not fatal.
	startKey := config.CacheKey.SessionStartKey(sessionID.String())
	if err := s.rdb.Set(ctx, startKey, startedAt.Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to cache start time")
	}

	s.log.Info().Str("session_id", sessionID.String()).Int("user_id", userID).Msg("Session started")

	return &model.SessionStateView{
		SessionID:        sessionID,
		State:            model.SessionInProgress,
		StartedAt:        startedAt,
		TimeLimitMinutes: sess.TimeLimitMinutes,
		RemainingSeconds: sess.TimeLimitMinutes * 60,
	}, nil
}

// State returns the current session state plus autosaved answers so a
// reloading client can restore itself from the server clock. An expired
// in-progress session is finalized here before the view is built.
func (s *SessionService) State(ctx context.Context, userID int, sessionID uuid.UUID) (*model.SessionStateView, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	view := &model.SessionStateView{
		SessionID:        sessionID,
		State:            sess.State,
		StartedAt:        sess.StartedAt,
		TimeLimitMinutes: sess.TimeLimitMinutes,
	}

	switch sess.State {
	case model.SessionNotStarted:
		view.RemainingSeconds = sess.TimeLimitMinutes * 60
		return view, nil
	case model.SessionSubmitted:
		view.RemainingSeconds = 0
		return view, nil
	}

	startedAt, err := s.startTime(ctx, sess)
	if err != nil {
		return nil, err
	}
	remaining := assessment.RemainingSeconds(startedAt, sess.TimeLimitMinutes, time.Now())
	if remaining == 0 {
		if _, err := s.finalize(ctx, sess, model.SubmitTimeout); err != nil {
			return nil, err
		}
		view.State = model.SessionSubmitted
		view.RemainingSeconds = 0
		return view, nil
	}

	answers, err := s.rdb.HGetAll(ctx, config.CacheKey.SessionAnswersKey(sessionID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get autosaved answers: %w", err)
	}

	view.RemainingSeconds = remaining
	view.AutosavedAnswers = answers
	return view, nil
}

// Paper returns the taker-facing question set. Available only once the
// session has been started; the cache is rebuilt from Postgres on miss.
func (s *SessionService) Paper(ctx context.Context, userID int, sessionID uuid.UUID) ([]model.TakerQuestion, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State == model.SessionNotStarted {
		return nil, ErrSessionNotActive
	}

	paperKey := config.CacheKey.SessionPaperKey(sessionID.String())
	raw, err := s.rdb.Get(ctx, paperKey).Result()
	if err == nil {
		var paper []model.TakerQuestion
		if jsonErr := json.Unmarshal([]byte(raw), &paper); jsonErr == nil {
			return paper, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get cached paper: %w", err)
	}

	rows, err := s.sessionRepo.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session questions: %w", err)
	}

	paper := make([]model.TakerQuestion, 0, len(rows))
	for _, row := range rows {
		q := rowQuestion(row)
		tq, err := TakerView(&q, row.Round)
		if err != nil {
			s.log.Error().Err(err).Str("question_id", row.QuestionID.String()).Msg("Skipping malformed question payload")
			continue
		}
		paper = append(paper, *tq)
	}

	if data, err := json.Marshal(paper); err == nil {
		_ = s.rdb.Set(ctx, paperKey, data, 24*time.Hour).Err()
	}
	return paper, nil
}

// answerQueuePayload matches what the answers worker drains.
type answerQueuePayload struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
	Timestamp  int64  `json:"timestamp"`
}

// SubmitAnswer records one answer. The latest value per question wins;
// the write lands in Redis immediately and reaches Postgres through the
// answers worker.
func (s *SessionService) SubmitAnswer(ctx context.Context, userID int, sessionID uuid.UUID, req *model.SubmitAnswerRequest) error {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if err := s.ensureActive(ctx, sess); err != nil {
		return err
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return ErrUnknownQuestion
	}
	ok, err := s.hasQuestion(ctx, sessionID, questionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownQuestion
	}

	now := time.Now()
	answersKey := config.CacheKey.SessionAnswersKey(sessionID.String())
	if err := s.rdb.HSet(ctx, answersKey, questionID.String(), req.Value).Err(); err != nil {
		return fmt.Errorf("autosave answer: %w", err)
	}

	// Re-check the state after the write: a finalize that raced us has
	// already read the hash, so this value would never be scored. Undo
	// it and refuse rather than let a late answer linger.
	fresh, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("recheck session: %w", err)
	}
	if fresh == nil || fresh.State != model.SessionInProgress {
		_ = s.rdb.HDel(ctx, answersKey, questionID.String()).Err()
		return ErrSessionNotActive
	}

	payload, _ := json.Marshal(answerQueuePayload{
		SessionID:  sessionID.String(),
		QuestionID: questionID.String(),
		Value:      req.Value,
		Timestamp:  now.Unix(),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err(); err != nil {
		// Redis holds the answer; finalization reads from the hash, so
		// losing the durability queue entry is recoverable.
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to enqueue answer for persistence")
	}
	return nil
}

// violationQueuePayload matches what the violation worker drains.
type violationQueuePayload struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	Detail    string `json:"detail"`
	Timestamp int64  `json:"timestamp"`
}

// ReportViolation records one proctoring event and returns the full
// escalation contract. When the count reaches the configured maximum
// and auto-submit is on, the session is finalized here; AutoSubmitted
// is true only for the report that actually performed the submission.
func (s *SessionService) ReportViolation(ctx context.Context, userID int, sessionID uuid.UUID, req *model.ReportViolationRequest) (*model.ViolationStatus, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureActive(ctx, sess); err != nil {
		return nil, err
	}

	policy, err := s.policySvc.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}

	count, err := s.sessionRepo.IncrementViolationCount(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("increment violation count: %w", err)
	}
	if count == 0 {
		// Lost the race against a concurrent finalize; the penalty is
		// frozen and this report must not touch it.
		return nil, ErrSessionNotActive
	}

	payload, _ := json.Marshal(violationQueuePayload{
		SessionID: sessionID.String(),
		Type:      req.Type,
		Detail:    req.Detail,
		Timestamp: time.Now().Unix(),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to enqueue violation for persistence")
	}

	status := &model.ViolationStatus{
		ViolationCount: count,
		MaxViolations:  policy.MaxViolations,
		CurrentPenalty: assessment.PenaltyPercent(count, policy.ViolationPenaltyPercent),
		WarningLevel:   string(assessment.WarnLevel(count, policy.MaxViolations)),
	}

	if policy.AutoSubmitOnViolation && assessment.LimitReached(count, policy.MaxViolations) {
		won, err := s.finalize(ctx, sess, model.SubmitViolationLimit)
		if err != nil {
			return nil, err
		}
		status.AutoSubmitted = won
	}

	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("type", req.Type).
		Int("count", count).
		Bool("auto_submitted", status.AutoSubmitted).
		Msg("Violation reported")

	return status, nil
}

// Submit finalizes the session on the taker's request.
func (s *SessionService) Submit(ctx context.Context, userID int, sessionID uuid.UUID) (*model.TestResult, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureActive(ctx, sess); err != nil {
		return nil, err
	}

	won, err := s.finalize(ctx, sess, model.SubmitManual)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrAlreadySubmitted
	}
	return s.Result(ctx, userID, sessionID)
}

// Result returns the finalized outcome. Only submitted sessions have
// one.
func (s *SessionService) Result(ctx context.Context, userID int, sessionID uuid.UUID) (*model.TestResult, error) {
	sess, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildResult(ctx, sess)
}

// ResultForReview returns the outcome without the ownership check, for
// admin review surfaces.
func (s *SessionService) ResultForReview(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return s.buildResult(ctx, sess)
}

// Violations lists the audit trail of a session for admin review.
func (s *SessionService) Violations(ctx context.Context, sessionID uuid.UUID) ([]model.ViolationRecord, error) {
	return s.violationRepo.ListBySession(ctx, sessionID)
}

func (s *SessionService) buildResult(ctx context.Context, sess *model.TestSession) (*model.TestResult, error) {
	if sess.State != model.SessionSubmitted || sess.FinalScore == nil {
		return nil, ErrResultNotFound
	}

	answers, err := s.sessionRepo.ListAnswers(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	result := &model.TestResult{
		SessionID:  sess.ID,
		TotalScore: *sess.FinalScore,
		Percentage: *sess.FinalScore,
		MaxScore:   100,
		RoundScores: model.RoundScores{
			Round1: deref(sess.Round1Score),
			Round2: deref(sess.Round2Score),
		},
		ViolationCount:   sess.ViolationCount,
		ViolationPenalty: derefInt(sess.ViolationPenalty),
		Passed:           derefBool(sess.Passed),
		Responses:        answers,
		StartTime:        sess.StartedAt,
		EndTime:          sess.FinishedAt,
	}
	if sess.SubmitReason != nil {
		result.SubmitReason = *sess.SubmitReason
	}
	return result, nil
}

// ensureActive rejects interaction with sessions that are not running.
// An in-progress session past its limit is finalized with the timeout
// reason and then rejected as expired.
func (s *SessionService) ensureActive(ctx context.Context, sess *model.TestSession) error {
	switch sess.State {
	case model.SessionNotStarted:
		return ErrSessionNotActive
	case model.SessionSubmitted:
		return ErrSessionNotActive
	}

	startedAt, err := s.startTime(ctx, sess)
	if err != nil {
		return err
	}
	if assessment.RemainingSeconds(startedAt, sess.TimeLimitMinutes, time.Now()) == 0 {
		if _, err := s.finalize(ctx, sess, model.SubmitTimeout); err != nil {
			return err
		}
		return ErrSessionExpired
	}
	return nil
}

// startTime resolves the authoritative start time, Redis first with a
// Postgres fallback that self-heals the cache.
func (s *SessionService) startTime(ctx context.Context, sess *model.TestSession) (time.Time, error) {
	startKey := config.CacheKey.SessionStartKey(sess.ID.String())
	val, err := s.rdb.Get(ctx, startKey).Result()
	if err == nil {
		unix, parseErr := strconv.ParseInt(val, 10, 64)
		if parseErr == nil {
			return time.Unix(unix, 0), nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return time.Time{}, fmt.Errorf("get start time: %w", err)
	}

	if sess.StartedAt == nil {
		return time.Time{}, ErrSessionNotActive
	}
	_ = s.rdb.Set(ctx, startKey, sess.StartedAt.Unix(), 0).Err()
	return *sess.StartedAt, nil
}

// hasQuestion checks membership against the cached ID set, falling back
// to Postgres when the set was evicted.
func (s *SessionService) hasQuestion(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error) {
	setKey := config.CacheKey.SessionQuestionSetKey(sessionID.String())
	exists, err := s.rdb.Exists(ctx, setKey).Result()
	if err == nil && exists > 0 {
		member, merr := s.rdb.SIsMember(ctx, setKey, questionID.String()).Result()
		if merr == nil {
			return member, nil
		}
	}
	ok, err := s.sessionRepo.HasQuestion(ctx, sessionID, questionID)
	if err != nil {
		return false, fmt.Errorf("check question membership: %w", err)
	}
	return ok, nil
}

// finalize performs the one-shot submitted transition and, on winning
// it, grades the session synchronously: answers are flushed from Redis
// to Postgres, MCQs are compared locally, coding runs through the
// judge, and the outcome lands on the session and the leave request.
func (s *SessionService) finalize(ctx context.Context, sess *model.TestSession, reason model.SubmitReason) (bool, error) {
	won, err := s.sessionRepo.MarkSubmitted(ctx, sess.ID, reason)
	if err != nil {
		return false, fmt.Errorf("mark submitted: %w", err)
	}
	if !won {
		return false, nil
	}

	policy, err := s.policySvc.GetPolicy(ctx)
	if err != nil {
		return true, err
	}

	// Flush autosaved answers to durable storage. The Redis hash holds
	// the latest value per question; rows already persisted by the
	// worker are simply overwritten with the same value.
	answersKey := config.CacheKey.SessionAnswersKey(sess.ID.String())
	cached, err := s.rdb.HGetAll(ctx, answersKey).Result()
	if err != nil {
		return true, fmt.Errorf("read autosaved answers: %w", err)
	}
	now := time.Now()
	for qidStr, value := range cached {
		qid, parseErr := uuid.Parse(qidStr)
		if parseErr != nil {
			continue
		}
		if err := s.sessionRepo.UpsertAnswer(ctx, sess.ID, qid, value, now); err != nil {
			return true, fmt.Errorf("persist answer: %w", err)
		}
	}

	stored, err := s.sessionRepo.ListAnswers(ctx, sess.ID)
	if err != nil {
		return true, fmt.Errorf("list answers: %w", err)
	}
	answerByQuestion := make(map[uuid.UUID]string, len(stored))
	for _, a := range stored {
		answerByQuestion[a.QuestionID] = a.Value
	}

	rows, err := s.sessionRepo.ListQuestions(ctx, sess.ID)
	if err != nil {
		return true, fmt.Errorf("list session questions: %w", err)
	}

	graded := make([]assessment.GradedQuestion, 0, len(rows))
	for _, row := range rows {
		graded = append(graded, s.grade(ctx, row, answerByQuestion))
	}

	// Re-read for the final violation count; concurrent reports may
	// have landed after the caller's snapshot.
	fresh, err := s.sessionRepo.GetByID(ctx, sess.ID)
	if err != nil {
		return true, fmt.Errorf("reload session: %w", err)
	}
	if fresh == nil {
		return true, ErrSessionNotFound
	}

	penalty := assessment.PenaltyPercent(fresh.ViolationCount, policy.ViolationPenaltyPercent)
	outcome := assessment.Score(graded, penalty, policy.PassingPercentage)

	if err := s.sessionRepo.SaveResult(ctx, sess.ID,
		outcome.RawScore, outcome.FinalScore, outcome.Round1Score, outcome.Round2Score,
		outcome.Penalty, outcome.Passed); err != nil {
		return true, fmt.Errorf("save result: %w", err)
	}
	if err := s.leaveRepo.SetTestScore(ctx, sess.LeaveID, outcome.FinalScore); err != nil {
		return true, fmt.Errorf("update leave score: %w", err)
	}

	s.cleanupCache(ctx, sess.ID)

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Str("reason", string(reason)).
		Float64("final_score", outcome.FinalScore).
		Int("penalty", outcome.Penalty).
		Bool("passed", outcome.Passed).
		Msg("Session finalized")

	return true, nil
}

// grade scores one question. A judge outage grades the coding question
// as zero rather than failing the whole submission.
func (s *SessionService) grade(ctx context.Context, row model.SessionQuestionRow, answers map[uuid.UUID]string) assessment.GradedQuestion {
	g := assessment.GradedQuestion{
		QuestionID: row.QuestionID,
		Round:      row.Round,
		Points:     float64(row.Points),
	}
	answer, answered := answers[row.QuestionID]
	if !answered || answer == "" {
		return g
	}
	g.Answered = true

	q := rowQuestion(row)
	switch row.Type {
	case model.QuestionTypeMCQ:
		p, err := q.DecodeMCQ()
		if err != nil {
			s.log.Error().Err(err).Str("question_id", row.QuestionID.String()).Msg("Malformed mcq payload at grading")
			return g
		}
		idx, err := strconv.Atoi(answer)
		if err == nil && idx == p.CorrectIndex() {
			g.Earned = g.Points
		}
	case model.QuestionTypeCoding:
		p, err := q.DecodeCoding()
		if err != nil {
			s.log.Error().Err(err).Str("question_id", row.QuestionID.String()).Msg("Malformed coding payload at grading")
			return g
		}
		run, err := s.judge.RunTestCases(ctx, answer, p.TestCases, p.TimeLimitSec)
		if err != nil {
			s.log.Error().Err(err).Str("question_id", row.QuestionID.String()).Msg("Judge unavailable, grading as zero")
			return g
		}
		g.Earned = assessment.GradeCoding(row.Points, run.CasesPassed, run.CasesTotal)
	}
	return g
}

func (s *SessionService) cleanupCache(ctx context.Context, sessionID uuid.UUID) {
	id := sessionID.String()
	if err := s.rdb.Del(ctx,
		config.CacheKey.SessionStartKey(id),
		config.CacheKey.SessionAnswersKey(id),
		config.CacheKey.SessionPaperKey(id),
		config.CacheKey.SessionQuestionSetKey(id),
	).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("Failed to clear session cache")
	}
}

func rowQuestion(row model.SessionQuestionRow) model.Question {
	return model.Question{
		ID:         row.QuestionID,
		Type:       row.Type,
		Subject:    row.Subject,
		Difficulty: row.Difficulty,
		Points:     row.Points,
		Payload:    row.Payload,
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefBool(v *bool) bool {
	if v == nil {
		return false
	}
	return *v
}
