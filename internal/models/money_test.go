package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "vestra/internal/errors"
)

func TestMoneyArithmetic(t *testing.T) {
	a := NewMoney(100_00, CurrencyNGN)
	b := NewMoney(50_00, CurrencyNGN)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(150_00), sum.Amount)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, int64(50_00), diff.Amount)

	// Different currencies never mix.
	_, err = a.Add(NewMoney(50, CurrencyUSDT))
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
	_, err = a.Sub(NewMoney(50, CurrencyUSDT))
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)
}

func TestMoneyPercentTruncates(t *testing.T) {
	// 1% of 100,000.00 NGN is exactly 1,000.00.
	step := NewMoney(100_000_00, CurrencyNGN).Percent(decimal.NewFromInt(1))
	assert.Equal(t, int64(1_000_00), step.Amount)

	// 1% of 1.01 NGN is 1.01 kobo; fractional kobo are dropped, never rounded up.
	odd := NewMoney(101, CurrencyNGN).Percent(decimal.NewFromInt(1))
	assert.Equal(t, int64(1), odd.Amount)

	// Fractional rates work the same way.
	half := NewMoney(333, CurrencyNGN).Percent(decimal.NewFromFloat(0.5))
	assert.Equal(t, int64(1), half.Amount)

	zero := NewMoney(100_00, CurrencyNGN).Percent(decimal.Zero)
	assert.True(t, zero.IsZero())
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "1000.00 NGN", NewMoney(100_000, CurrencyNGN).String())
	assert.Equal(t, "1.500000 USDT", NewMoney(1_500_000, CurrencyUSDT).String())
}

func TestCurrencyDecimals(t *testing.T) {
	assert.Equal(t, int32(2), CurrencyNGN.Decimals())
	assert.Equal(t, int32(6), CurrencyUSDT.Decimals())
	assert.False(t, Currency("EUR").Valid())
}
