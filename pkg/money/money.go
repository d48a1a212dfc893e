// Package money implements exact integer chip arithmetic. No floating point
// is used in this package; the only rounding in the engine happens in rake (floor)
// and odd-chip pot splits (explicit policy), both handled outside this
// package.
package money

import (
	"fmt"
	"strconv"
)

// Amount is a non-negative chip count. The zero value is zero chips.
type Amount int64

// Zero is the additive identity.
const Zero Amount = 0

// Add returns a+b. Chip totals in a single table never approach the int64
// ceiling (~9.2e18), so overflow is not guarded against.
func Add(a, b Amount) Amount {
	return a + b
}

// Sub returns a-b. Panics if b > a; pkg/engine's public Table methods
// recover this via guardPanic and report InternalError, since a correct
// caller never constructs a subtraction that underflows.
func Sub(a, b Amount) Amount {
	if b > a {
		panic(fmt.Sprintf("money: underflow subtracting %d from %d", b, a))
	}
	return a - b
}

// Mul returns a multiplied by a non-negative integer factor.
func Mul(a Amount, factor int64) Amount {
	if factor < 0 {
		panic("money: negative multiplication factor")
	}
	return a * Amount(factor)
}

// DivMod returns (a/b, a%b). Panics if b <= 0.
func DivMod(a Amount, b int64) (quotient, remainder Amount) {
	if b <= 0 {
		panic("money: division by non-positive divisor")
	}
	return a / Amount(b), a % Amount(b)
}

// Cmp returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func Cmp(a, b Amount) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a > b {
		return a
	}
	return b
}

// String formats the amount as a plain decimal string, used both for
// display and for the hand-history JSON codec, which serializes chip
// amounts as decimal strings to avoid precision loss.
func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}

// Parse parses a decimal string produced by String back into an Amount.
func Parse(s string) (Amount, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("money: negative amount %q", s)
	}
	return Amount(v), nil
}

// MarshalJSON encodes the amount as a JSON string, preserving precision.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes a JSON string produced by MarshalJSON.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
