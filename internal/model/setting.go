package model

import "time"

// PluginSetting is one persisted key/value row. Value is encoded text
// (JSON, "1"/"0" or a numeric string).
type PluginSetting struct {
	ID          int64     `json:"id" db:"id"`
	Key         string    `json:"key" db:"key"`
	Value       string    `json:"value" db:"value"`
	DateCreated time.Time `json:"dateCreated" db:"date_created"`
	DateUpdated time.Time `json:"dateUpdated" db:"date_updated"`
	UID         string    `json:"uid" db:"uid"`
}
