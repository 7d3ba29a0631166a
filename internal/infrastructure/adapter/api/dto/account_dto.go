package dto

// ProvisionAccountRequest creates an account for a registered user
type ProvisionAccountRequest struct {
	UserID uint64 `json:"userId" binding:"required"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	AccountID uint64 `json:"accountId"`
	UserID    uint64 `json:"userId"`
	Balance   string `json:"balance"`
	Cents     int64  `json:"cents"`
}

// BalanceResponse represents the API response for an account balance
type BalanceResponse struct {
	AccountID uint64 `json:"accountId"`
	Balance   string `json:"balance"`
	Cents     int64  `json:"cents"`
}

// TransactionResponse represents one ledger entry
type TransactionResponse struct {
	TransactionID uint64  `json:"transactionId"`
	TaskID        *uint64 `json:"taskId,omitempty"`
	Category      string  `json:"category"`
	Amount        string  `json:"amount"`
	BalanceBefore string  `json:"balanceBefore"`
	BalanceAfter  string  `json:"balanceAfter"`
	CreatedAt     string  `json:"createdAt"`
}

// TransactionPageResponse is one page of ledger history
type TransactionPageResponse struct {
	Entries  []TransactionResponse `json:"entries"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"pageSize"`
}

// DailyTotalResponse is one row of the per-day aggregate
type DailyTotalResponse struct {
	Day      string `json:"day"`
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int64  `json:"count"`
}
