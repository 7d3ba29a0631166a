package dto

// ChargeTaskRequest pre-charges a priced generation task
type ChargeTaskRequest struct {
	TaskType    string `json:"taskType" binding:"required"`
	ImageNumber int    `json:"imageNumber" binding:"required,min=1"`
	Payload     string `json:"payload"`
}

// ChargeTaskResponse reports the created task and ledger entry
type ChargeTaskResponse struct {
	TaskID        uint64 `json:"taskId"`
	TransactionID uint64 `json:"transactionId"`
	Amount        string `json:"amount"`
	Balance       string `json:"balance"`
}

// AnalysisChargeRequest debits the flat image-analysis price
type AnalysisChargeRequest struct {
	ImageNumber int `json:"imageNumber" binding:"required,min=1"`
}

// AnalysisChargeResponse reports the ledger entry of an analysis debit
type AnalysisChargeResponse struct {
	TransactionID uint64 `json:"transactionId"`
	Amount        string `json:"amount"`
	Balance       string `json:"balance"`
}

// RefundTaskRequest refunds the charge of a failed task
type RefundTaskRequest struct {
	TaskID uint64 `json:"taskId" binding:"required"`
	Reason string `json:"reason"`
}

// RefundTaskResponse reports the compensating ledger entry
type RefundTaskResponse struct {
	TransactionID uint64 `json:"transactionId"`
	Amount        string `json:"amount"`
	Balance       string `json:"balance"`
}
