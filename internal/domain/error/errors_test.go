package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "insufficient balance", err: ErrInsufficientBalance, want: CodeInsufficientBalance},
		{name: "detailed insufficient balance", err: NewInsufficientBalanceError(1, 100, 50), want: CodeInsufficientBalance},
		{name: "invalid amount", err: ErrInvalidAmount, want: CodeInvalidAmount},
		{name: "overflow maps to invalid amount", err: ErrAmountOverflow, want: CodeInvalidAmount},
		{name: "amount out of range", err: NewAmountOutOfRangeError(50, 100, 1000), want: CodeInvalidAmount},
		{name: "unsupported pricing model", err: ErrUnsupportedPricingModel, want: CodeUnsupportedPricingModel},
		{name: "pricing not configured", err: ErrPricingNotConfigured, want: CodePricingNotConfigured},
		{name: "already refunded", err: NewAlreadyRefundedError(7, 11), want: CodeAlreadyRefunded},
		{name: "nothing to refund", err: ErrNothingToRefund, want: CodeNothingToRefund},
		{name: "order not payable", err: NewOrderNotPayableError("CRG001", "expired"), want: CodeOrderNotPayable},
		{name: "account exists", err: ErrAccountExists, want: CodeAccountExists},
		{name: "account not found", err: ErrAccountNotFound, want: CodeAccountNotFound},
		{name: "task not found", err: ErrTaskNotFound, want: CodeTaskNotFound},
		{name: "order not found", err: ErrOrderNotFound, want: CodeOrderNotFound},
		{name: "gateway unavailable", err: ErrGatewayUnavailable, want: CodeGatewayUnavailable},
		{name: "wrapped error keeps its code", err: fmt.Errorf("context: %w", ErrInsufficientBalance), want: CodeInsufficientBalance},
		{name: "unknown error is internal", err: errors.New("boom"), want: CodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestDetailedErrors_Is(t *testing.T) {
	t.Run("insufficient balance error matches its sentinel", func(t *testing.T) {
		err := NewInsufficientBalanceError(1, 100, 50)
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Error("expected errors.Is to match ErrInsufficientBalance")
		}
	})

	t.Run("already refunded error matches its sentinel", func(t *testing.T) {
		err := NewAlreadyRefundedError(7, 11)
		if !errors.Is(err, ErrAlreadyRefunded) {
			t.Error("expected errors.Is to match ErrAlreadyRefunded")
		}
	})

	t.Run("order not payable error matches its sentinel", func(t *testing.T) {
		err := NewOrderNotPayableError("CRG001", "expired")
		if !errors.Is(err, ErrOrderNotPayable) {
			t.Error("expected errors.Is to match ErrOrderNotPayable")
		}
	})

	t.Run("amount out of range matches invalid amount", func(t *testing.T) {
		err := NewAmountOutOfRangeError(50, 100, 1000)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Error("expected errors.Is to match ErrInvalidAmount")
		}
	})
}

func TestErrorClassifiers(t *testing.T) {
	if !IsInsufficientBalanceError(NewInsufficientBalanceError(1, 100, 50)) {
		t.Error("expected insufficient balance classification")
	}
	if !IsAlreadyRefundedError(NewAlreadyRefundedError(7, 11)) {
		t.Error("expected already refunded classification")
	}
	if !IsNotFoundError(ErrTaskNotFound) || !IsNotFoundError(ErrOrderNotFound) {
		t.Error("expected not found classification")
	}
	if IsNotFoundError(ErrInvalidAmount) {
		t.Error("invalid amount must not classify as not found")
	}
	if !IsGatewayError(fmt.Errorf("query: %w", ErrGatewayUnavailable)) {
		t.Error("expected gateway classification for wrapped error")
	}
}
