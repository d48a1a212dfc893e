package rng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeededDeterministic(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.NextInt(52), b.NextInt(52))
	}
}

func TestSeededWithinBounds(t *testing.T) {
	s := NewSeeded(7)
	for i := 0; i < 1000; i++ {
		v := s.NextInt(52)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 52)
	}
}

func TestSeededDifferentSeedsDiverge(t *testing.T) {
	a := NewSeeded(1)
	b := NewSeeded(2)

	same := true
	for i := 0; i < 20; i++ {
		if a.NextInt(1000) != b.NextInt(1000) {
			same = false
		}
	}
	require.False(t, same, "different seeds should diverge within 20 draws")
}

// TestSeededMatchesMulberry32Formula checks NextInt's scaled output against
// an independent re-implementation of spec.md §4.3's mixing step, keyed off
// the same pre-mix accumulator for both the XOR and the OR-multiply. This
// is the exact distinction a prior regression got wrong (multiplying by
// the already-XORed value instead of the original accumulator).
func TestSeededMatchesMulberry32Formula(t *testing.T) {
	const seed = uint32(12345)
	s := NewSeeded(seed)

	state := seed
	next := func() uint32 {
		state += 0x6d2b79f5
		accumulator := state
		t := accumulator
		t ^= t >> 15
		t *= accumulator | 1
		t ^= t + (t^(t>>7))*(t|61)
		return t ^ (t >> 14)
	}

	for i := 0; i < 1000; i++ {
		raw := next()
		want := int(float64(raw) / 4294967296.0 * 100)
		require.Equal(t, want, s.NextInt(100), "iteration %d", i)
	}
}

func TestNextIntPanicsOnNonPositiveBound(t *testing.T) {
	s := NewSeeded(1)
	require.Panics(t, func() { s.NextInt(0) })
	require.Panics(t, func() { s.NextInt(-1) })
}

func TestCryptoWithinBounds(t *testing.T) {
	c, err := NewCrypto()
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		v := c.NextInt(52)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 52)
	}
}

func TestCryptoFromSeedDeterministic(t *testing.T) {
	a, err := NewCryptoFromSeed([]byte("fixture-seed"))
	require.NoError(t, err)
	b, err := NewCryptoFromSeed([]byte("fixture-seed"))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.Equal(t, a.NextInt(52), b.NextInt(52))
	}
}
