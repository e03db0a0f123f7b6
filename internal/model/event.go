package model

import "time"

// CheckEvent is published for every non-ok check result so downstream
// consumers can raise alerts.
type CheckEvent struct {
	CheckType CheckType `json:"check_type"`
	URL       string    `json:"url"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	CheckedAt string    `json:"checked_at"`
	CreatedAt time.Time `json:"created_at"`
}
