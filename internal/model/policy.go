package model

import "strconv"

// Setting keys as stored in the app_settings table.
const (
	SettingMCQCount                = "mcq_count"
	SettingCodingCount             = "coding_count"
	SettingMCQTimeLimit            = "mcq_time_limit"
	SettingCodingTimeLimit         = "coding_time_limit"
	SettingPassingPercentage       = "passing_percentage"
	SettingRound1PassingPercentage = "round1_passing_percentage"
	SettingMaxViolations           = "max_violations"
	SettingViolationPenaltyPercent = "violation_penalty_percent"
	SettingAutoSubmitOnViolation   = "auto_submit_on_violation"
	SettingRequireFullscreen       = "require_fullscreen"
	SettingMaxLeaveDays            = "max_leave_days"
)

// TestPolicy is the tunable assessment policy. It is loaded per request
// and passed into the core components explicitly; nothing reads it as
// ambient state.
type TestPolicy struct {
	MCQCount                int  `json:"mcqCount"`
	CodingCount             int  `json:"codingCount"`
	MCQTimeLimit            int  `json:"mcqTimeLimit"`
	CodingTimeLimit         int  `json:"codingTimeLimit"`
	PassingPercentage       int  `json:"passingPercentage"`
	Round1PassingPercentage int  `json:"round1PassingPercentage"`
	MaxViolations           int  `json:"maxViolations"`
	ViolationPenaltyPercent int  `json:"violationPenaltyPercent"`
	AutoSubmitOnViolation   bool `json:"autoSubmitOnViolation"`
	RequireFullscreen       bool `json:"requireFullscreen"`
	MaxLeaveDays            int  `json:"maxLeaveDays"`
}

// DefaultTestPolicy returns the documented defaults, used whenever a
// settings record is absent.
func DefaultTestPolicy() TestPolicy {
	return TestPolicy{
		MCQCount:                10,
		CodingCount:             2,
		MCQTimeLimit:            30,
		CodingTimeLimit:         45,
		PassingPercentage:       70,
		Round1PassingPercentage: 60,
		MaxViolations:           5,
		ViolationPenaltyPercent: 5,
		AutoSubmitOnViolation:   true,
		RequireFullscreen:       true,
		MaxLeaveDays:            7,
	}
}

// PolicyFromSettings overlays stored key/value settings onto the
// defaults. Unknown keys are ignored; unparseable values keep the
// default.
func PolicyFromSettings(settings map[string]string) TestPolicy {
	p := DefaultTestPolicy()
	overlayInt(settings, SettingMCQCount, &p.MCQCount)
	overlayInt(settings, SettingCodingCount, &p.CodingCount)
	overlayInt(settings, SettingMCQTimeLimit, &p.MCQTimeLimit)
	overlayInt(settings, SettingCodingTimeLimit, &p.CodingTimeLimit)
	overlayInt(settings, SettingPassingPercentage, &p.PassingPercentage)
	overlayInt(settings, SettingRound1PassingPercentage, &p.Round1PassingPercentage)
	overlayInt(settings, SettingMaxViolations, &p.MaxViolations)
	overlayInt(settings, SettingViolationPenaltyPercent, &p.ViolationPenaltyPercent)
	overlayBool(settings, SettingAutoSubmitOnViolation, &p.AutoSubmitOnViolation)
	overlayBool(settings, SettingRequireFullscreen, &p.RequireFullscreen)
	overlayInt(settings, SettingMaxLeaveDays, &p.MaxLeaveDays)
	return p
}

// ToSettings flattens the policy into the key/value form for storage.
func (p TestPolicy) ToSettings() map[string]string {
	return map[string]string{
		SettingMCQCount:                strconv.Itoa(p.MCQCount),
		SettingCodingCount:             strconv.Itoa(p.CodingCount),
		SettingMCQTimeLimit:            strconv.Itoa(p.MCQTimeLimit),
		SettingCodingTimeLimit:         strconv.Itoa(p.CodingTimeLimit),
		SettingPassingPercentage:       strconv.Itoa(p.PassingPercentage),
		SettingRound1PassingPercentage: strconv.Itoa(p.Round1PassingPercentage),
		SettingMaxViolations:           strconv.Itoa(p.MaxViolations),
		SettingViolationPenaltyPercent: strconv.Itoa(p.ViolationPenaltyPercent),
		SettingAutoSubmitOnViolation:   strconv.FormatBool(p.AutoSubmitOnViolation),
		SettingRequireFullscreen:       strconv.FormatBool(p.RequireFullscreen),
		SettingMaxLeaveDays:            strconv.Itoa(p.MaxLeaveDays),
	}
}

// UpdatePolicyRequest is the admin payload for replacing the policy.
type UpdatePolicyRequest struct {
	MCQCount                int  `json:"mcqCount" binding:"required,min=1,max=50"`
	CodingCount             int  `json:"codingCount" binding:"min=0,max=10"`
	MCQTimeLimit            int  `json:"mcqTimeLimit" binding:"required,min=5,max=120"`
	CodingTimeLimit         int  `json:"codingTimeLimit" binding:"required,min=10,max=180"`
	PassingPercentage       int  `json:"passingPercentage" binding:"min=0,max=100"`
	Round1PassingPercentage int  `json:"round1PassingPercentage" binding:"min=0,max=100"`
	MaxViolations           int  `json:"maxViolations" binding:"required,min=1,max=20"`
	ViolationPenaltyPercent int  `json:"violationPenaltyPercent" binding:"min=0,max=25"`
	AutoSubmitOnViolation   bool `json:"autoSubmitOnViolation"`
	RequireFullscreen       bool `json:"requireFullscreen"`
	MaxLeaveDays            int  `json:"maxLeaveDays" binding:"required,min=1,max=30"`
}

func overlayInt(settings map[string]string, key string, dst *int) {
	if raw, ok := settings[key]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			*dst = n
		}
	}
}

func overlayBool(settings map[string]string, key string, dst *bool) {
	if raw, ok := settings[key]; ok {
		if b, err := strconv.ParseBool(raw); err == nil {
			*dst = b
		}
	}
}
