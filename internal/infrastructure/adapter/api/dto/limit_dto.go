package dto

// LimitResponse represents the API response for a customer's daily limit
type LimitResponse struct {
	CustomerID   string `json:"customerId"`
	DailyMax     string `json:"dailyMax"`
	CurrentSpent string `json:"currentSpent"`
	Available    string `json:"available"`
}
