package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leavedesk/leavegate-backend/internal/assessment"
	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/repository"
)

// Leave workflow errors.
var (
	ErrLeaveNotFound   = errors.New("leave request not found")
	ErrLeaveTooLong    = errors.New("leave duration exceeds the allowed maximum")
	ErrLeaveNotDecided = errors.New("leave request is not awaiting a decision")
	ErrInvalidDates    = errors.New("end date precedes start date")
)

// LeaveView is a leave request decorated with the advisory
// recommendation for admin listings.
type LeaveView struct {
	model.LeaveRequest
	Recommendation assessment.Recommendation `json:"recommendation"`
}

// LeaveService handles the leave request workflow. Applying immediately
// provisions the gating test; the admin decision closes it out.
type LeaveService struct {
	leaveRepo    *repository.LeaveRepository
	provisionSvc *ProvisionService
	policySvc    *PolicyService
	log          zerolog.Logger
}

// NewLeaveService creates a new LeaveService.
func NewLeaveService(
	leaveRepo *repository.LeaveRepository,
	provisionSvc *ProvisionService,
	policySvc *PolicyService,
	log zerolog.Logger,
) *LeaveService {
	return &LeaveService{
		leaveRepo:    leaveRepo,
		provisionSvc: provisionSvc,
		policySvc:    policySvc,
		log:          log.With().Str("component", "leave_service").Logger(),
	}
}

// Apply files a leave request and provisions its test in one go. The
// returned request is already in test-assigned state with the session
// attached.
func (s *LeaveService) Apply(ctx context.Context, userID int, req *model.ApplyLeaveRequest) (*model.LeaveRequest, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("parse end date: %w", err)
	}
	if end.Before(start) {
		return nil, ErrInvalidDates
	}

	policy, err := s.policySvc.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}
	days := assessment.LeaveDays(start, end)
	if days > policy.MaxLeaveDays {
		return nil, fmt.Errorf("%w: %d days requested, max %d", ErrLeaveTooLong, days, policy.MaxLeaveDays)
	}

	leave := &model.LeaveRequest{
		UserID:    userID,
		Reason:    req.Reason,
		StartDate: start,
		EndDate:   end,
		Subjects:  req.Subjects,
		Status:    model.LeaveStatusPending,
	}
	if err := s.leaveRepo.Create(ctx, leave); err != nil {
		return nil, fmt.Errorf("create leave: %w", err)
	}

	session, err := s.provisionSvc.ProvisionTest(ctx, leave)
	if err != nil {
		// The leave stays pending; provisioning can be retried once the
		// bank is refilled.
		s.log.Error().Err(err).Str("leave_id", leave.ID.String()).Msg("Provisioning failed after apply")
		return nil, err
	}

	leave.Status = model.LeaveStatusTestAssigned
	leave.SessionID = &session.ID

	s.log.Info().
		Str("leave_id", leave.ID.String()).
		Int("user_id", userID).
		Int("days", days).
		Msg("Leave request filed")

	return leave, nil
}

// GetMine retrieves one of the employee's own requests.
func (s *LeaveService) GetMine(ctx context.Context, userID int, leaveID uuid.UUID) (*model.LeaveRequest, error) {
	leave, err := s.leaveRepo.GetByID(ctx, leaveID)
	if err != nil {
		return nil, fmt.Errorf("get leave: %w", err)
	}
	if leave == nil || leave.UserID != userID {
		return nil, ErrLeaveNotFound
	}
	return leave, nil
}

// GetByID retrieves any request without an ownership check, for admin
// surfaces. Returns nil if not found.
func (s *LeaveService) GetByID(ctx context.Context, leaveID uuid.UUID) (*model.LeaveRequest, error) {
	return s.leaveRepo.GetByID(ctx, leaveID)
}

// ListMine retrieves the employee's own requests, newest first.
func (s *LeaveService) ListMine(ctx context.Context, userID int) ([]model.LeaveRequest, error) {
	return s.leaveRepo.ListByUser(ctx, userID)
}

// ListAll retrieves requests for the admin dashboard, each decorated
// with the advisory recommendation derived from its test score.
func (s *LeaveService) ListAll(ctx context.Context, status *model.LeaveStatus) ([]LeaveView, error) {
	leaves, err := s.leaveRepo.ListAll(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list leaves: %w", err)
	}

	policy, err := s.policySvc.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]LeaveView, 0, len(leaves))
	for _, leave := range leaves {
		view := LeaveView{LeaveRequest: leave}
		if leave.TestScore != nil {
			view.Recommendation = assessment.Recommend(*leave.TestScore, policy.PassingPercentage)
		} else {
			view.Recommendation = assessment.RecommendPendingTest()
		}
		views = append(views, view)
	}
	return views, nil
}

// Decide records the admin verdict on a test-completed or still-pending
// request. The recommendation never binds the decision.
func (s *LeaveService) Decide(ctx context.Context, adminID int, leaveID uuid.UUID, req *model.DecideLeaveRequest) (*model.LeaveRequest, error) {
	leave, err := s.leaveRepo.GetByID(ctx, leaveID)
	if err != nil {
		return nil, fmt.Errorf("get leave: %w", err)
	}
	if leave == nil {
		return nil, ErrLeaveNotFound
	}

	var remarks *string
	if req.AdminRemarks != "" {
		remarks = &req.AdminRemarks
	}

	decided, err := s.leaveRepo.Decide(ctx, leaveID, model.LeaveStatus(req.Status), remarks, adminID)
	if err != nil {
		return nil, fmt.Errorf("decide leave: %w", err)
	}
	if !decided {
		return nil, ErrLeaveNotDecided
	}

	s.log.Info().
		Str("leave_id", leaveID.String()).
		Int("admin_id", adminID).
		Str("verdict", req.Status).
		Msg("Leave request decided")

	return s.leaveRepo.GetByID(ctx, leaveID)
}
