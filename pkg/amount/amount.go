// Package amount implements overflow-checked signed monetary arithmetic
// denominated in zatoshi, the smallest unit of the protocol.
package amount

import (
	"errors"
	"fmt"
)

// COIN is the number of zatoshi in one coin.
const COIN int64 = 100_000_000

// MaxMoney is the maximum representable quantity of zatoshi, matching the
// protocol's total supply cap. Amounts outside ±MaxMoney are rejected.
const MaxMoney int64 = 21_000_000 * COIN

// ErrInvalidAmount is returned whenever a value falls outside
// [-MaxMoney, MaxMoney] or an operation would overflow that range.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a signed zatoshi quantity bounded to ±MaxMoney.
type Amount int64

// Zero is the additive identity.
const Zero Amount = 0

// New constructs an Amount, rejecting values outside the protocol range.
func New(zatoshi int64) (Amount, error) {
	if zatoshi < -MaxMoney || zatoshi > MaxMoney {
		return 0, ErrInvalidAmount
	}
	return Amount(zatoshi), nil
}

// MustNew is New but panics on an out-of-range value; reserved for
// constructing constants from literals known to be in range.
func MustNew(zatoshi int64) Amount {
	a, err := New(zatoshi)
	if err != nil {
		panic(err)
	}
	return a
}

// Int64 returns the underlying zatoshi count.
func (a Amount) Int64() int64 {
	return int64(a)
}

// IsNegative reports whether a is strictly less than zero.
func (a Amount) IsNegative() bool {
	return a < 0
}

// Add returns a+b, failing with ErrInvalidAmount on overflow or
// out-of-range result.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := int64(a) + int64(b)
	if (b > 0 && sum < int64(a)) || (b < 0 && sum > int64(a)) {
		return 0, ErrInvalidAmount
	}
	return New(sum)
}

// Sub returns a-b, failing with ErrInvalidAmount on overflow or
// out-of-range result.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := int64(a) - int64(b)
	if (b < 0 && diff < int64(a)) || (b > 0 && diff > int64(a)) {
		return 0, ErrInvalidAmount
	}
	return New(diff)
}

// Sum folds a slice of Amounts left to right through Add, failing fast on
// the first overflow or out-of-range partial sum.
func Sum(amounts ...Amount) (Amount, error) {
	total := Zero
	var err error
	for _, a := range amounts {
		total, err = total.Add(a)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// String renders the amount as whole-and-fractional coins, e.g. "1.00000000".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%08d", sign, v/COIN, v%COIN)
}
