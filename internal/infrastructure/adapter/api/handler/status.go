package handler

import (
	"errors"
	"net/http"

	domainerr "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

// httpStatus maps a domain error to the HTTP status code the API reports
func httpStatus(err error) int {
	switch {
	case domainerr.IsInsufficientBalanceError(err):
		return http.StatusPaymentRequired
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case domainerr.IsAlreadyRefundedError(err),
		errors.Is(err, domainerr.ErrOrderNotPayable):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrNothingToRefund),
		errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrAmountOverflow),
		errors.Is(err, domainerr.ErrPricingNotConfigured),
		errors.Is(err, domainerr.ErrUnsupportedPricingModel),
		errors.Is(err, domainerr.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrAccountExists):
		return http.StatusConflict
	case domainerr.IsGatewayError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
