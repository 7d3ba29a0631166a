package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/arman-rahimi/credit-ledger/internal/domain/error"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		wantErr error
	}{
		{name: "positive amount is valid", amount: 1, wantErr: nil},
		{name: "large amount is valid", amount: math.MaxInt64, wantErr: nil},
		{name: "zero is rejected", amount: 0, wantErr: errs.ErrInvalidAmount},
		{name: "negative is rejected", amount: -100, wantErr: errs.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCheckedMul(t *testing.T) {
	t.Run("should multiply price by count", func(t *testing.T) {
		total, err := CheckedMul(250, 4)

		assert.NoError(t, err)
		assert.Equal(t, int64(1000), total)
	})

	t.Run("should return zero for zero count", func(t *testing.T) {
		total, err := CheckedMul(250, 0)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("should reject negative operands", func(t *testing.T) {
		_, err := CheckedMul(-1, 4)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		_, err = CheckedMul(250, -4)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("should detect overflow", func(t *testing.T) {
		_, err := CheckedMul(math.MaxInt64/2, 3)

		assert.ErrorIs(t, err, errs.ErrAmountOverflow)
	})

	t.Run("should accept the largest product that fits", func(t *testing.T) {
		total, err := CheckedMul(math.MaxInt64, 1)

		assert.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), total)
	})
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{name: "whole units", amount: 1000, want: "10.00"},
		{name: "units and cents", amount: 1015, want: "10.15"},
		{name: "cents only", amount: 5, want: "0.05"},
		{name: "zero", amount: 0, want: "0.00"},
		{name: "negative below one unit", amount: -50, want: "-0.50"},
		{name: "negative with units", amount: -1234, want: "-12.34"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.amount))
		})
	}
}
