package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leavedesk/leavegate-backend/internal/middleware"
	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/response"
	"github.com/leavedesk/leavegate-backend/internal/service"
	"github.com/leavedesk/leavegate-backend/internal/validator"
)

// LeaveHandler handles the leave request workflow: employee filing and
// listing, admin review and decision.
type LeaveHandler struct {
	leaveService   *service.LeaveService
	sessionService *service.SessionService
}

// NewLeaveHandler creates a new LeaveHandler.
func NewLeaveHandler(leaveService *service.LeaveService, sessionService *service.SessionService) *LeaveHandler {
	return &LeaveHandler{leaveService: leaveService, sessionService: sessionService}
}

// Apply godoc
// POST /api/v1/employee/leaves
// Files a leave request; the gating test is provisioned in the same call.
func (h *LeaveHandler) Apply(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ApplyLeaveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	leave, err := h.leaveService.Apply(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeaveTooLong):
			response.Fail(c, http.StatusBadRequest, response.ErrLeaveTooLong)
		case errors.Is(err, service.ErrInvalidDates):
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		case errors.Is(err, service.ErrInsufficientQuestions):
			response.Fail(c, http.StatusConflict, response.ErrInsufficientQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"leave": leave})
}

// ListMine godoc
// GET /api/v1/employee/leaves
// Lists the caller's own leave requests, newest first.
func (h *LeaveHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	leaves, err := h.leaveService.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if leaves == nil {
		leaves = []model.LeaveRequest{}
	}

	response.Success(c, http.StatusOK, gin.H{"leaves": leaves})
}

// GetMine godoc
// GET /api/v1/employee/leaves/:leave_id
// Returns one of the caller's own leave requests.
func (h *LeaveHandler) GetMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	leaveID, err := uuid.Parse(c.Param("leave_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	leave, err := h.leaveService.GetMine(c.Request.Context(), claims.UserID, leaveID)
	if err != nil {
		if errors.Is(err, service.ErrLeaveNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrLeaveNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leave": leave})
}

// ListAll godoc
// GET /api/v1/admin/leaves?status=...
// Lists leave requests with advisory recommendations attached.
func (h *LeaveHandler) ListAll(c *gin.Context) {
	var status *model.LeaveStatus
	if raw := c.Query("status"); raw != "" {
		s := model.LeaveStatus(raw)
		status = &s
	}

	leaves, err := h.leaveService.ListAll(c.Request.Context(), status)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if leaves == nil {
		leaves = []service.LeaveView{}
	}

	response.Success(c, http.StatusOK, gin.H{"leaves": leaves})
}

// Decide godoc
// PUT /api/v1/admin/leaves/:leave_id/decision
// Records the admin verdict on a test-completed leave request.
func (h *LeaveHandler) Decide(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	leaveID, err := uuid.Parse(c.Param("leave_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.DecideLeaveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	leave, err := h.leaveService.Decide(c.Request.Context(), claims.UserID, leaveID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeaveNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrLeaveNotFound)
		case errors.Is(err, service.ErrLeaveNotDecided):
			response.Fail(c, http.StatusConflict, response.ErrLeaveNotDecided)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leave": leave})
}

// SessionDetail godoc
// GET /api/v1/admin/leaves/:leave_id/session
// Returns the test outcome and violation audit trail for review.
func (h *LeaveHandler) SessionDetail(c *gin.Context) {
	leaveID, err := uuid.Parse(c.Param("leave_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	leave, err := h.leaveService.GetByID(c.Request.Context(), leaveID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if leave == nil || leave.SessionID == nil {
		response.Fail(c, http.StatusNotFound, response.ErrLeaveNotFound)
		return
	}

	result, err := h.sessionService.ResultForReview(c.Request.Context(), *leave.SessionID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) || errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	violations, err := h.sessionService.Violations(c.Request.Context(), *leave.SessionID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if violations == nil {
		violations = []model.ViolationRecord{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"result":     result,
		"violations": violations,
	})
}
