// Package money implements fixed-precision currency amounts.
//
// An Amount counts minor units (1/100 of the display unit), so repeated sums
// never drift the way binary floats do. Conversions from decimal input use
// banker's rounding to the minor unit. Divisions that do not distribute evenly
// (Split, Allocate) truncate each share and hand the whole remainder to the
// first share, so the parts always add back up to the original amount.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places carried by an Amount.
const Scale = 2

// Epsilon is the tolerance used for every sign and zero check on balances.
const Epsilon Amount = 1

// Zero is the zero amount.
const Zero Amount = 0

var ErrInvalidAmount = errors.New("invalid money amount")

// Amount is a signed number of minor units.
type Amount int64

// FromMinor builds an Amount from a count of minor units.
func FromMinor(units int64) Amount {
	return Amount(units)
}

// FromMajor builds an Amount from a whole number of major units.
func FromMajor(units int64) Amount {
	return Amount(units * 100)
}

// FromDecimal converts d to minor units with banker's rounding.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Shift(Scale).RoundBank(0).IntPart())
}

// FromFloat converts a float such as a legacy REAL column value.
// NaN and infinities are rejected.
func FromFloat(f float64) (Amount, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(decimal.NewFromFloat(f)), nil
}

// Parse reads a decimal string ("12", "12.5", "12.345").
// A comma decimal separator is accepted.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d), nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Minor returns the raw count of minor units.
func (a Amount) Minor() int64 { return int64(a) }

func (a Amount) Add(b Amount) Amount { return a + b }

func (a Amount) Sub(b Amount) Amount { return a - b }

func (a Amount) Neg() Amount { return -a }

func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int {
	return a.Cmp(0)
}

// IsZero reports whether a lies within eps of zero.
func (a Amount) IsZero(eps Amount) bool {
	return a.Abs() <= eps
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if b < a {
		return b
	}
	return a
}

// Sum adds up amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// MulDecimal multiplies by a scalar and rounds to the minor unit (banker's).
func (a Amount) MulDecimal(f decimal.Decimal) Amount {
	return Amount(a.Decimal().Mul(f).Shift(Scale).RoundBank(0).IntPart())
}

// Split divides a into n equal shares. Each share is truncated toward zero
// and the remainder is added to the first share. n <= 0 yields nil.
func (a Amount) Split(n int) []Amount {
	if n <= 0 {
		return nil
	}
	shares := make([]Amount, n)
	q := a / Amount(n)
	for i := range shares {
		shares[i] = q
	}
	shares[0] += a - q*Amount(n)
	return shares
}

// Allocate divides a proportionally to weights. Negative weights count as
// zero. Each share is truncated and the remainder goes to the first share
// with a non-zero weight. When all weights are zero every share is zero.
func (a Amount) Allocate(weights []decimal.Decimal) []Amount {
	shares := make([]Amount, len(weights))
	total := decimal.Zero
	first := -1
	for i, w := range weights {
		if w.Sign() <= 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		total = total.Add(w)
	}
	if first < 0 || a == 0 {
		return shares
	}

	whole := decimal.NewFromInt(int64(a))
	var allocated Amount
	for i, w := range weights {
		if w.Sign() <= 0 {
			continue
		}
		q, _ := whole.Mul(w).QuoRem(total, 0)
		shares[i] = Amount(q.IntPart())
		allocated += shares[i]
	}
	shares[first] += a - allocated
	return shares
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// Float64 is for display and charting only.
func (a Amount) Float64() float64 {
	return a.Decimal().InexactFloat64()
}

// String formats with exactly two decimal places, e.g. "-12.50".
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// MarshalJSON encodes the amount as a quoted two-place decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted strings and bare JSON numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	*a = FromDecimal(d)
	return nil
}

// Value stores the amount as an integer count of minor units.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan reads an integer column of minor units.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = 0
	case int64:
		*a = Amount(v)
	case float64:
		*a = Amount(math.Round(v))
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}

func (a *Amount) scanString(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("money: scan %q: %w", s, err)
	}
	*a = Amount(d.RoundBank(0).IntPart())
	return nil
}
