package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInsufficientBalance     = 4001
	CodeInvalidAmount           = 4002
	CodeUnsupportedPricingModel = 4003
	CodePricingNotConfigured    = 4004
	CodeAlreadyRefunded         = 4005
	CodeOrderNotPayable         = 4006
	CodeNothingToRefund         = 4007
	CodeAccountExists           = 4009
	CodeAccountNotFound         = 4040
	CodeTaskNotFound            = 4041
	CodeOrderNotFound           = 4042

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeGatewayUnavailable = 5020
)

// Base error types
var (
	// ErrInsufficientBalance is returned when an account cannot cover a charge
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned when a monetary amount is zero, negative or out of bounds
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountOverflow is returned when a cost computation would overflow int64
	ErrAmountOverflow = errors.New("amount is too large and would cause overflow")

	// ErrPricingNotConfigured is returned when no price row exists for a task type
	ErrPricingNotConfigured = errors.New("pricing not configured for task type")

	// ErrUnsupportedPricingModel is returned for any billing unit other than per_image
	ErrUnsupportedPricingModel = errors.New("unsupported pricing model")

	// ErrAccountNotFound is returned when the requested account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned when provisioning an account for a user that already has one
	ErrAccountExists = errors.New("account already exists for user")

	// ErrTaskNotFound is returned when the requested task doesn't exist
	ErrTaskNotFound = errors.New("task not found")

	// ErrTransactionNotFound is returned when the requested ledger entry doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAlreadyRefunded is returned when a refund entry already exists for the task
	ErrAlreadyRefunded = errors.New("task already refunded")

	// ErrNothingToRefund is returned when a task carries no charge to compensate
	ErrNothingToRefund = errors.New("nothing to refund")

	// ErrOrderNotFound is returned when no order matches the external reference
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNotPayable is returned when a confirmation arrives for a failed or expired order
	ErrOrderNotPayable = errors.New("order is not payable")

	// ErrGatewayUnavailable is returned when the payment gateway cannot be reached
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrAmountOverflow):
		return CodeInvalidAmount
	case errors.Is(err, ErrUnsupportedPricingModel):
		return CodeUnsupportedPricingModel
	case errors.Is(err, ErrPricingNotConfigured):
		return CodePricingNotConfigured
	case errors.Is(err, ErrAlreadyRefunded):
		return CodeAlreadyRefunded
	case errors.Is(err, ErrNothingToRefund):
		return CodeNothingToRefund
	case errors.Is(err, ErrOrderNotPayable):
		return CodeOrderNotPayable
	case errors.Is(err, ErrAccountExists):
		return CodeAccountExists
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrTaskNotFound):
		return CodeTaskNotFound
	case errors.Is(err, ErrOrderNotFound):
		return CodeOrderNotFound
	case errors.Is(err, ErrGatewayUnavailable):
		return CodeGatewayUnavailable
	default:
		return CodeInternalServer
	}
}

// InsufficientBalanceError carries the computed shortfall for a rejected charge
type InsufficientBalanceError struct {
	AccountID uint64
	Required  int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for account %d: required %d, available %d (short %d)",
		e.AccountID, e.Required, e.Available, e.Required-e.Available)
}

// Is checks if the target error is an ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_balance",
		"account_id": e.AccountID,
		"required":   e.Required,
		"available":  e.Available,
		"shortfall":  e.Required - e.Available,
		"error_code": CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a detailed insufficient balance error
func NewInsufficientBalanceError(accountID uint64, required, available int64) error {
	return &InsufficientBalanceError{AccountID: accountID, Required: required, Available: available}
}

// AlreadyRefundedError reports the prior refund entry for a duplicate refund attempt
type AlreadyRefundedError struct {
	TaskID        uint64
	TransactionID uint64
}

// Error implements the error interface
func (e *AlreadyRefundedError) Error() string {
	return fmt.Sprintf("task %d already refunded by transaction %d", e.TaskID, e.TransactionID)
}

// Is checks if the target error is an ErrAlreadyRefunded
func (e *AlreadyRefundedError) Is(target error) bool {
	return target == ErrAlreadyRefunded
}

// LogFields returns a map of fields for structured logging
func (e *AlreadyRefundedError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "already_refunded",
		"task_id":        e.TaskID,
		"transaction_id": e.TransactionID,
		"error_code":     CodeAlreadyRefunded,
	}
}

// NewAlreadyRefundedError creates a detailed duplicate refund error
func NewAlreadyRefundedError(taskID, transactionID uint64) error {
	return &AlreadyRefundedError{TaskID: taskID, TransactionID: transactionID}
}

// OrderNotPayableError reports why a confirmation was rejected
type OrderNotPayableError struct {
	OutTradeNo string
	Status     string
}

// Error implements the error interface
func (e *OrderNotPayableError) Error() string {
	return fmt.Sprintf("order %s is not payable in status %s", e.OutTradeNo, e.Status)
}

// Is checks if the target error is an ErrOrderNotPayable
func (e *OrderNotPayableError) Is(target error) bool {
	return target == ErrOrderNotPayable
}

// LogFields returns a map of fields for structured logging
func (e *OrderNotPayableError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "order_not_payable",
		"out_trade_no": e.OutTradeNo,
		"status":       e.Status,
		"error_code":   CodeOrderNotPayable,
	}
}

// NewOrderNotPayableError creates a detailed non-payable order error
func NewOrderNotPayableError(outTradeNo, status string) error {
	return &OrderNotPayableError{OutTradeNo: outTradeNo, Status: status}
}

// AmountOutOfRangeError is returned when a top-up amount violates provider bounds
type AmountOutOfRangeError struct {
	Amount int64
	Min    int64
	Max    int64
}

// Error implements the error interface
func (e *AmountOutOfRangeError) Error() string {
	return fmt.Sprintf("amount %d outside allowed range [%d, %d]", e.Amount, e.Min, e.Max)
}

// Is checks if the target error is an ErrInvalidAmount
func (e *AmountOutOfRangeError) Is(target error) bool {
	return target == ErrInvalidAmount
}

// NewAmountOutOfRangeError creates a detailed out-of-range amount error
func NewAmountOutOfRangeError(amount, min, max int64) error {
	return &AmountOutOfRangeError{Amount: amount, Min: min, Max: max}
}

// IsInsufficientBalanceError checks if the error is related to insufficient balance
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsAlreadyRefundedError checks if the error is a duplicate refund attempt
func IsAlreadyRefundedError(err error) bool {
	return errors.Is(err, ErrAlreadyRefunded)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}

// IsGatewayError checks if the error comes from the payment gateway collaborator
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable)
}
