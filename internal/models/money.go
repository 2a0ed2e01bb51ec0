package models

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount as the bank's core sends it. Depending on the
// transaction channel the same field arrives as a JSON number ("Amount": 100.5)
// or as a formatted string ("Amount": "100.50"). Absent, null, empty or
// unparseable values decode as zero: a bad balance field must never cause a
// whole notification to be rejected and redelivered forever.
type Money struct {
	decimal.Decimal
}

var jsonNull = []byte("null")

// UnmarshalJSON accepts numbers, numeric strings, empty strings and null.
func (m *Money) UnmarshalJSON(data []byte) error {
	m.Decimal = decimal.Zero

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}

	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	m.Decimal = d
	return nil
}

// MarshalJSON emits the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return m.Decimal.MarshalJSON()
}
