package models

import "time"

// AppSetting is a small persisted key/value record. The reindex trigger keeps
// its last-run summary here as JSON.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
