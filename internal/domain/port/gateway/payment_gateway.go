package gateway

import "context"

// RemoteOrderStatus is the gateway's view of an order
type RemoteOrderStatus string

// Remote order statuses as reported by the provider
const (
	RemoteStatusPending RemoteOrderStatus = "pending"
	RemoteStatusPaid    RemoteOrderStatus = "paid"
	RemoteStatusFailed  RemoteOrderStatus = "failed"
)

// PaymentInstructions is the provider payload shown to the user, typically a
// scannable code
type PaymentInstructions struct {
	QRCodeURL string // Scannable code image or deep link
	PayURL    string // Fallback browser payment page
}

// RemoteOrder is the provider's answer to a status query. Responses are
// untrusted input: callers must re-validate amount and reference before
// acting on a paid status.
type RemoteOrder struct {
	OutTradeNo string
	Amount     int64 // Minor units as echoed by the provider
	Status     RemoteOrderStatus
}

// PaymentGateway is the outbound contract to the external payment provider.
// Only the result shape matters here; QR generation and signing live behind
// the implementation.
type PaymentGateway interface {
	// CreateRemoteOrder registers an order with the provider and returns
	// payment instructions. Any transport or provider failure surfaces as
	// ErrGatewayUnavailable and nothing is persisted locally.
	CreateRemoteOrder(ctx context.Context, amount int64, outTradeNo string) (*PaymentInstructions, error)

	// QueryRemoteOrder fetches the provider's authoritative status
	QueryRemoteOrder(ctx context.Context, outTradeNo string) (*RemoteOrder, error)
}
