package model

import (
	"time"
)

// SavedConfig is a generated document stored under a user-chosen name.
type SavedConfig struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"uniqueIndex"`
	Document string

	// Summary of the document, kept for listing without decoding it.
	ProxyCount int
	FinalTag   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
