package dto

// CreateOrderRequest starts a top-up payment
type CreateOrderRequest struct {
	AccountID uint64 `json:"accountId" binding:"required"`
	Cents     int64  `json:"cents" binding:"required,min=1"`
}

// CreateOrderResponse carries the order reference and payment instructions
type CreateOrderResponse struct {
	OutTradeNo string `json:"outTradeNo"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	ExpireAt   string `json:"expireAt"`
	QRCodeURL  string `json:"qrCodeUrl,omitempty"`
	PayURL     string `json:"payUrl,omitempty"`
}

// OrderStatusResponse is the reconciled order state returned to polling clients
type OrderStatusResponse struct {
	OutTradeNo    string `json:"outTradeNo"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	TransactionID uint64 `json:"transactionId,omitempty"`
	Balance       string `json:"balance,omitempty"`
}
