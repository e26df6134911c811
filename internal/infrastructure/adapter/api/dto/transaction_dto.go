package dto

// TransactionRequest represents the API request for admitting a transaction
type TransactionRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	AccountID     string `json:"accountId" binding:"required"`
	CustomerID    string `json:"customerId" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Currency      string `json:"currency" binding:"required,oneof=PEN USD EUR"`
	OperationType string `json:"operationType" binding:"required,oneof=DEBIT CREDIT TRANSFER CASH_WITHDRAWAL"`
	MerchantID    string `json:"merchantId"`
	MerchantName  string `json:"merchantName"`
	MCC           string `json:"mcc"`
	TerminalID    string `json:"terminalId"`
	IPAddress     string `json:"ipAddress"`
	Channel       string `json:"channel" binding:"omitempty,oneof=WEB MOBILE POS ATM"`
}

// TransactionResponse represents the API response for an admitted transaction
type TransactionResponse struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	ResponseCode  string `json:"responseCode"`
	Description   string `json:"description"`
	CreatedAt     string `json:"createdAt"`
}
