package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/response"
	"github.com/leavedesk/leavegate-backend/internal/service"
	"github.com/leavedesk/leavegate-backend/internal/validator"
)

// SettingHandler handles the admin test policy endpoints.
type SettingHandler struct {
	policyService *service.PolicyService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(policyService *service.PolicyService) *SettingHandler {
	return &SettingHandler{policyService: policyService}
}

// GetPolicy godoc
// GET /api/v1/admin/settings/policy
func (h *SettingHandler) GetPolicy(c *gin.Context) {
	policy, err := h.policyService.GetPolicy(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"policy": policy})
}

// UpdatePolicy godoc
// PUT /api/v1/admin/settings/policy
// Replaces the policy; already-provisioned sessions keep their baked-in
// time limits.
func (h *SettingHandler) UpdatePolicy(c *gin.Context) {
	var req model.UpdatePolicyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	policy, err := h.policyService.UpdatePolicy(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"policy": policy})
}
