package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON is a flexible jsonb column for transaction metadata.
type JSON map[string]interface{}

// NewJSON wraps a plain map for use as column value.
func NewJSON(m map[string]interface{}) JSON {
	return JSON(m)
}

// Value implements the driver.Valuer interface.
func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface.
func (j *JSON) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &j)
}

// BalanceMap maps a currency to its balance in minor units. Stored as jsonb so
// wallet operations stay currency-agnostic and a new currency is a map key, not
// a schema migration.
type BalanceMap map[Currency]int64

// NewBalanceMap returns a map zeroed for every supported currency.
func NewBalanceMap() BalanceMap {
	b := make(BalanceMap, len(Currencies))
	for _, c := range Currencies {
		b[c] = 0
	}
	return b
}

// Add accumulates an amount into the map, initialising it if needed.
func (b *BalanceMap) Add(amount Money) {
	if *b == nil {
		*b = NewBalanceMap()
	}
	(*b)[amount.Currency] += amount.Amount
}

// Of returns the entry for a currency as Money.
func (b BalanceMap) Of(currency Currency) Money {
	return NewMoney(b[currency], currency)
}

// Value implements the driver.Valuer interface.
func (b BalanceMap) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements the sql.Scanner interface.
func (b *BalanceMap) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("balance map: unsupported column type")
	}
	return json.Unmarshal(bytes, b)
}
