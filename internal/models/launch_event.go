package models

import (
	"time"

	"gorm.io/gorm"
)

type LaunchEvent struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ServerTimestamp uint32         `gorm:"not null;index" json:"server_timestamp"`
	ConfigTimestamp uint32         `gorm:"not null;default:0" json:"config_timestamp"`
	Width           uint16         `gorm:"not null;default:0" json:"width"`
	Height          uint16         `gorm:"not null;default:0" json:"height"`
	StartedAt       time.Time      `gorm:"not null;index" json:"started_at"`
	DurationMs      int64          `gorm:"not null;default:0" json:"duration_ms"`
	ExitCode        int            `gorm:"not null;default:0" json:"exit_code"`
	Error           string         `json:"error,omitempty"`
	DisplayServer   string         `gorm:"not null" json:"display_server"` // "x11"
	CreatedAt       time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Succeeded reports whether the tool ran and exited with status 0
func (e *LaunchEvent) Succeeded() bool {
	return e.ExitCode == 0 && e.Error == ""
}

type HistoryReport struct {
	Launches    []*LaunchEvent `json:"launches"`
	Total       int64          `json:"total"`
	Failed      int64          `json:"failed"`
	GeneratedAt time.Time      `json:"generated_at"`
}
