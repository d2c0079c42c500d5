package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	domain "vestra/internal/errors"
)

// Currency identifies one of the two currencies the platform settles in.
type Currency string

const (
	CurrencyNGN  Currency = "NGN"
	CurrencyUSDT Currency = "USDT"
)

// Currencies lists every supported currency. Wallets carry one balance per entry.
var Currencies = []Currency{CurrencyNGN, CurrencyUSDT}

func (c Currency) Valid() bool {
	return c == CurrencyNGN || c == CurrencyUSDT
}

// Decimals returns the minor-unit scale: kobo for naira, micro-units for USDT.
func (c Currency) Decimals() int32 {
	if c == CurrencyUSDT {
		return 6
	}
	return 2
}

// Money is a fixed-precision amount in minor units of a single currency.
// All stored monetary fields use this type; floating point never touches a balance.
type Money struct {
	Amount   int64    `json:"amount"`
	Currency Currency `json:"currency"`
}

func NewMoney(amount int64, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns the zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{Currency: currency}
}

func (m Money) IsZero() bool     { return m.Amount == 0 }
func (m Money) IsPositive() bool { return m.Amount > 0 }
func (m Money) IsNegative() bool { return m.Amount < 0 }

// Add returns m + other. Amounts in different currencies never mix.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, domain.ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns m - other. Fails on currency mismatch; the result may be negative,
// callers guard against that where it matters (wallet debits).
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, domain.ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Percent returns rate% of m, truncated toward zero to a whole minor unit.
// Truncation keeps repeated daily accruals from ever overshooting the cap.
func (m Money) Percent(rate decimal.Decimal) Money {
	amount := decimal.NewFromInt(m.Amount).
		Mul(rate).
		Div(decimal.NewFromInt(100)).
		Truncate(0)
	return Money{Amount: amount.IntPart(), Currency: m.Currency}
}

// LessThan reports m < other, failing on currency mismatch.
func (m Money) LessThan(other Money) (bool, error) {
	if m.Currency != other.Currency {
		return false, domain.ErrCurrencyMismatch
	}
	return m.Amount < other.Amount, nil
}

// Decimal returns the amount in major units, for display and reporting only.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -m.Currency.Decimals())
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(m.Currency.Decimals()), m.Currency)
}
