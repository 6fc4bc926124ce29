package model

import "time"

// AppSetting is one row of the app_settings table. The leave policy is
// persisted as a set of these rows so admins can tune it at runtime
// without a redeploy; PolicyFromSettings reassembles the struct.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
