package entity

import "time"

// TransactionEvent is the wire representation of a decided transaction handed
// to the message channel. Pure data; it carries no identity beyond the
// business transaction ID it mirrors.
type TransactionEvent struct {
	TransactionID string    `json:"transactionId"`
	CustomerID    string    `json:"customerId"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	ResponseCode  string    `json:"responseCode"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlationId"`
}
