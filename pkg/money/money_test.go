package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddSub(t *testing.T) {
	require.Equal(t, Amount(30), Add(10, 20))
	require.Equal(t, Amount(10), Sub(30, 20))
}

func TestSubUnderflowPanics(t *testing.T) {
	require.Panics(t, func() {
		Sub(5, 10)
	})
}

func TestMulNegativeFactorPanics(t *testing.T) {
	require.Panics(t, func() {
		Mul(5, -1)
	})
}

func TestDivMod(t *testing.T) {
	q, r := DivMod(101, 2)
	require.Equal(t, Amount(50), q)
	require.Equal(t, Amount(1), r)
}

func TestDivModByZeroPanics(t *testing.T) {
	require.Panics(t, func() {
		DivMod(10, 0)
	})
}

func TestCmpMinMax(t *testing.T) {
	require.Equal(t, -1, Cmp(1, 2))
	require.Equal(t, 1, Cmp(2, 1))
	require.Equal(t, 0, Cmp(2, 2))
	require.Equal(t, Amount(1), Min(1, 2))
	require.Equal(t, Amount(2), Max(1, 2))
}

func TestStringParseRoundTrip(t *testing.T) {
	a := Amount(123456789)
	require.Equal(t, "123456789", a.String())

	parsed, err := Parse(a.String())
	require.NoError(t, err)
	require.Equal(t, a, parsed)
}

func TestParseRejectsNegative(t *testing.T) {
	_, err := Parse("-5")
	require.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		A Amount `json:"a"`
	}
	w := wrapper{A: 42}

	data, err := json.Marshal(w)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":"42"}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, w, out)
}
