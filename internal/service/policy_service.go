package service

import (
	"context"
	"fmt"

	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/repository"
)

// PolicyService resolves the effective test policy from stored settings.
// Missing or unparseable keys fall back to the documented defaults, so a
// fresh database behaves identically to one seeded with defaults.
type PolicyService struct {
	settingRepo *repository.SettingRepository
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(settingRepo *repository.SettingRepository) *PolicyService {
	return &PolicyService{settingRepo: settingRepo}
}

// GetPolicy loads the effective policy.
func (s *PolicyService) GetPolicy(ctx context.Context) (model.TestPolicy, error) {
	settings, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		return model.TestPolicy{}, fmt.Errorf("load settings: %w", err)
	}

	kv := make(map[string]string, len(settings))
	for _, setting := range settings {
		kv[setting.Key] = setting.Value
	}
	return model.PolicyFromSettings(kv), nil
}

// UpdatePolicy replaces the stored policy wholesale. Sessions already
// provisioned keep the time limit baked in at provisioning; the new
// policy applies from the next provisioning onward.
func (s *PolicyService) UpdatePolicy(ctx context.Context, req *model.UpdatePolicyRequest) (model.TestPolicy, error) {
	policy := model.TestPolicy{
		MCQCount:                req.MCQCount,
		CodingCount:             req.CodingCount,
		MCQTimeLimit:            req.MCQTimeLimit,
		CodingTimeLimit:         req.CodingTimeLimit,
		PassingPercentage:       req.PassingPercentage,
		Round1PassingPercentage: req.Round1PassingPercentage,
		MaxViolations:           req.MaxViolations,
		ViolationPenaltyPercent: req.ViolationPenaltyPercent,
		AutoSubmitOnViolation:   req.AutoSubmitOnViolation,
		RequireFullscreen:       req.RequireFullscreen,
		MaxLeaveDays:            req.MaxLeaveDays,
	}

	for key, value := range policy.ToSettings() {
		if err := s.settingRepo.Upsert(ctx, key, value); err != nil {
			return model.TestPolicy{}, fmt.Errorf("store setting %s: %w", key, err)
		}
	}
	return policy, nil
}
