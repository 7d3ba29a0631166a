package entity

import (
	"fmt"

	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

// All monetary values are carried as int64 in the minor currency unit (cents).
// No floating point is ever involved in balance arithmetic.

// ValidateAmount checks that an amount is a positive number of minor units
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", errs.ErrInvalidAmount, amount)
	}
	return nil
}

// CheckedMul multiplies a unit price by a count, guarding against int64 overflow
func CheckedMul(price int64, count int64) (int64, error) {
	if price < 0 || count < 0 {
		return 0, fmt.Errorf("%w: negative operand", errs.ErrInvalidAmount)
	}
	if price == 0 || count == 0 {
		return 0, nil
	}
	total := price * count
	if total/count != price {
		return 0, errs.ErrAmountOverflow
	}
	return total, nil
}

// FormatAmount renders minor units as a decimal string for logs and responses.
// For example 1015 becomes "10.15" and -50 becomes "-0.50".
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
