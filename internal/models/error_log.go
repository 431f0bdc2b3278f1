package models

import (
	"time"

	"gorm.io/gorm"
)

// ErrorLog records a non-fatal failure seen by the event loop
type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Stage     string         `gorm:"not null;index" json:"stage"` // "wait" or "launch"
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
