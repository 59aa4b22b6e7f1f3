package models

import "time"

// Settings is the flat per-user settings document.
type Settings struct {
	ProfileName  string    `json:"profile_name"`
	BusinessName string    `json:"business_name"`
	Email        string    `json:"email"`
	UpdatedAt    time.Time `json:"updated_at"`
}
