package model

import (
	"time"
)

// OutboxEvent represents the database model for pending event deliveries
type OutboxEvent struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	TransactionID string    `gorm:"not null;size:255;index"`
	Payload       string    `gorm:"type:text;not null"`
	Status        string    `gorm:"not null;size:20;index"`
	ErrorMessage  string    `gorm:"type:text"`
	RetryCount    int       `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null;index"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for OutboxEvent
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
