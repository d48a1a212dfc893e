package poker

import (
	"testing"

	"github.com/holdem/tableengine/pkg/rng"
	"github.com/stretchr/testify/require"
)

func TestParseCardRoundTrip(t *testing.T) {
	for rank := Rank2; rank <= RankA; rank++ {
		for suit := SuitClubs; suit <= SuitSpades; suit++ {
			c := NewCard(rank, suit)
			parsed, err := ParseCard(c.String())
			require.NoError(t, err)
			require.Equal(t, c, parsed)
		}
	}
}

func TestParseCardCaseInsensitive(t *testing.T) {
	c, err := ParseCard("ah")
	require.NoError(t, err)
	require.Equal(t, NewCard(RankA, SuitHearts), c)
}

func TestParseCardRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "A", "Ahh", "1h", "Ax"} {
		_, err := ParseCard(s)
		require.ErrorIs(t, err, ErrInvalidCard)
	}
}

func TestNewDeckHas52DistinctCards(t *testing.T) {
	d := NewDeck()
	seen := make(map[Card]bool, 52)
	for i := 0; i < 52; i++ {
		cards, err := d.Deal(1)
		require.NoError(t, err)
		require.False(t, seen[cards[0]], "duplicate card dealt: %v", cards[0])
		seen[cards[0]] = true
	}
	require.Len(t, seen, 52)
}

func TestDealPastEndFails(t *testing.T) {
	d := NewDeck()
	_, err := d.Deal(52)
	require.NoError(t, err)
	_, err = d.Deal(1)
	require.ErrorIs(t, err, ErrOutOfCards)
}

func TestShuffleDeterministicForSameSeed(t *testing.T) {
	a := NewDeck()
	a.Shuffle(rng.NewSeeded(99))
	dealtA, err := a.Deal(52)
	require.NoError(t, err)

	b := NewDeck()
	b.Shuffle(rng.NewSeeded(99))
	dealtB, err := b.Deal(52)
	require.NoError(t, err)

	require.Equal(t, dealtA, dealtB)
}

func TestShuffleIsPermutation(t *testing.T) {
	d := NewDeck()
	d.Shuffle(rng.NewSeeded(1))
	dealt, err := d.Deal(52)
	require.NoError(t, err)

	seen := make(map[Card]bool, 52)
	for _, c := range dealt {
		seen[c] = true
	}
	require.Len(t, seen, 52)
}

func TestShuffleOnlyAffectsUndealtPortion(t *testing.T) {
	d := NewDeck()
	dealt, err := d.Deal(3)
	require.NoError(t, err)

	d.Shuffle(rng.NewSeeded(5))
	rest, err := d.Deal(49)
	require.NoError(t, err)

	all := append(dealt, rest...)
	require.Equal(t, dealt, all[:3])

	seen := make(map[Card]bool, 52)
	for _, c := range all {
		seen[c] = true
	}
	require.Len(t, seen, 52)
}

func TestDealHoleCardsRoundRobin(t *testing.T) {
	d := NewDeck()
	cards := [6]Card{
		NewCard(Rank2, SuitClubs), NewCard(Rank3, SuitClubs), NewCard(Rank4, SuitClubs),
		NewCard(Rank5, SuitClubs), NewCard(Rank6, SuitClubs), NewCard(Rank7, SuitClubs),
	}
	copy(d.cards[:6], cards[:])

	pairs, err := d.DealHoleCards(3)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	require.Equal(t, HoleCardPair{cards[0], cards[3]}, pairs[0])
	require.Equal(t, HoleCardPair{cards[1], cards[4]}, pairs[1])
	require.Equal(t, HoleCardPair{cards[2], cards[5]}, pairs[2])
	require.Equal(t, 6, d.Cursor())
}

func TestDealHoleCardsOutOfCards(t *testing.T) {
	d := NewDeck()
	_, err := d.Deal(50)
	require.NoError(t, err)

	_, err = d.DealHoleCards(2)
	require.ErrorIs(t, err, ErrOutOfCards)
}

func TestResetRestoresCursor(t *testing.T) {
	d := NewDeck()
	_, err := d.Deal(10)
	require.NoError(t, err)
	require.Equal(t, 10, d.Cursor())

	d.Reset()
	require.Equal(t, 0, d.Cursor())
}
