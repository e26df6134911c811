package model

import (
	"time"
)

// CustomerLimit represents the database model for the daily limit ledger
type CustomerLimit struct {
	CustomerID          string    `gorm:"primaryKey;size:64"`
	DailyMaxInCents     int64     `gorm:"not null"`
	CurrentSpentInCents int64     `gorm:"not null;default:0"`
	LastReset           time.Time `gorm:"not null"`
}

// TableName specifies the table name for CustomerLimit
func (CustomerLimit) TableName() string {
	return "customer_limits"
}
