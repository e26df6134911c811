package model

import (
	"time"
)

// Transaction represents the database model for admitted transactions
type Transaction struct {
	ID            string    `gorm:"primaryKey;size:36"`
	TransactionID string    `gorm:"uniqueIndex;not null;size:255"`
	CorrelationID string    `gorm:"size:64"`
	AccountID     string    `gorm:"not null;size:64;index"`
	CustomerID    string    `gorm:"not null;size:64;index"`
	Amount        string    `gorm:"not null;size:50"`
	AmountInCents int64     `gorm:"not null"`
	Currency      string    `gorm:"not null;size:3"`
	OperationType string    `gorm:"not null;size:30"`
	MerchantID    string    `gorm:"size:64"`
	MerchantName  string    `gorm:"size:255"`
	MCC           string    `gorm:"size:4"`
	TerminalID    string    `gorm:"size:64"`
	IPAddress     string    `gorm:"size:45"`
	Channel       string    `gorm:"size:30"`
	Status        string    `gorm:"not null;size:20"`
	ResponseCode  string    `gorm:"not null;size:2"`
	Description   string    `gorm:"size:255"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
