// Package core provides the tracker's domain types.
//
// Money is kept in integer cents. Parsing and JSON rendering go through
// decimal arithmetic so amounts typed as "12,5" or stored as 12.5 round
// trip without floating point drift.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents bounds a single amount at 999,999,999,999.99. Sums of bounded
// amounts only saturate after millions of entries.
const MaxCents int64 = 99_999_999_999_999

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(MaxCents)
)

// Money is an amount in minor units.
type Money struct {
	Cents int64
}

// ParseAmount converts user input to Money.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted; the
// value is rounded half-up to two decimals. Empty, non-numeric, zero and
// negative input is rejected with ErrInvalidAmount.
//
//	ParseAmount("250")    -> 250.00
//	ParseAmount("12,345") -> 12.35
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m, err := FromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// FromDecimal rounds d to cents. Values whose magnitude exceeds MaxCents
// are rejected with ErrInvalidAmount.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, d, Money{Cents: MaxCents})
	}
	return Money{Cents: cents.IntPart()}, nil
}

// FromUnits builds Money from a whole amount in major units.
func FromUnits(units int64) Money {
	return Money{Cents: units * 100}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add saturates at the int64 limits instead of wrapping.
func (m Money) Add(o Money) Money {
	switch {
	case o.Cents > 0 && m.Cents > math.MaxInt64-o.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents < 0 && m.Cents < math.MinInt64-o.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: m.Cents + o.Cents}
}

// Sub saturates like Add.
func (m Money) Sub(o Money) Money {
	if o.Cents == math.MinInt64 {
		return m.Add(Money{Cents: math.MaxInt64}).Add(Money{Cents: 1})
	}
	return m.Add(Money{Cents: -o.Cents})
}

// String renders the amount with two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a plain JSON number in major units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidAmount
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return ErrInvalidAmount
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
