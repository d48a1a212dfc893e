// Package poker implements the 52-card universe (C2) and hand evaluation
// (C4): card/rank/suit encoding, a dealt-cursor deck over an abstract
// random source, and best-5-of-5-to-7 hand classification with a total
// order over hands.
package poker

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holdem/tableengine/pkg/rng"
)

// Rank is a card rank, 2 through Ace, encoded 0..12.
type Rank int8

const (
	Rank2 Rank = iota
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
)

var rankNames = [...]string{"2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K", "A"}

func (r Rank) String() string {
	if r < 0 || int(r) >= len(rankNames) {
		return "?"
	}
	return rankNames[r]
}

// Suit is a card suit, encoded 0..3.
type Suit int8

const (
	SuitClubs Suit = iota
	SuitDiamonds
	SuitHearts
	SuitSpades
)

var suitNames = [...]string{"c", "d", "h", "s"}

func (s Suit) String() string {
	if s < 0 || int(s) >= len(suitNames) {
		return "?"
	}
	return suitNames[s]
}

// Card is a value in [0, 52), encoded as rank*4 + suit.
type Card int8

// NewCard builds a Card from a rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card(int(rank)*4 + int(suit))
}

// Rank returns the card's rank.
func (c Card) Rank() Rank {
	return Rank(int(c) / 4)
}

// Suit returns the card's suit.
func (c Card) Suit() Suit {
	return Suit(int(c) % 4)
}

// String renders the card in its two-character textual form, e.g. "Ah".
func (c Card) String() string {
	return c.Rank().String() + c.Suit().String()
}

// MarshalJSON renders a Card as its two-character text form (spec.md §6).
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON parses a Card from its two-character text form.
func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

var rankByChar = map[byte]Rank{
	'2': Rank2, '3': Rank3, '4': Rank4, '5': Rank5, '6': Rank6,
	'7': Rank7, '8': Rank8, '9': Rank9, 'T': Rank10, 'J': RankJ,
	'Q': RankQ, 'K': RankK, 'A': RankA,
}

var suitByChar = map[byte]Suit{
	'C': SuitClubs, 'D': SuitDiamonds, 'H': SuitHearts, 'S': SuitSpades,
}

// ParseCard parses the two-character textual form (case-insensitive),
// e.g. "Ah", "2c", "Ts". Returns InvalidCard on malformed input.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	upper := strings.ToUpper(s)
	rank, ok := rankByChar[upper[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	suit, ok := suitByChar[upper[1]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	return NewCard(rank, suit), nil
}

// ErrInvalidCard is returned by ParseCard on malformed input.
var ErrInvalidCard = fmt.Errorf("invalid card")

// ErrOutOfCards is returned by Deck.Deal / DealHoleCards when the deck
// cannot satisfy the request.
var ErrOutOfCards = fmt.Errorf("out of cards")

// Deck is an ordered sequence of 52 distinct cards plus a dealt cursor.
// Cards at indices [0, cursor) are dealt; Shuffle permutes [cursor, 52)
// only.
type Deck struct {
	cards  [52]Card
	cursor int
}

// NewDeck returns the canonical 52-card ordering, undealt.
func NewDeck() *Deck {
	d := &Deck{}
	for rank := Rank2; rank <= RankA; rank++ {
		for suit := SuitClubs; suit <= SuitSpades; suit++ {
			d.cards[int(rank)*4+int(suit)] = NewCard(rank, suit)
		}
	}
	return d
}

// Cursor returns the current dealt cursor.
func (d *Deck) Cursor() int {
	return d.cursor
}

// Reset returns the cursor to 0 without reordering the cards.
func (d *Deck) Reset() {
	d.cursor = 0
}

// Shuffle performs Fisher-Yates on [cursor, 52) using the given random
// source: for i = 51 down to cursor+1, picks j = cursor + rng.NextInt(i -
// cursor + 1) and swaps cards[i] and cards[j].
func (d *Deck) Shuffle(source rng.Source) {
	for i := 51; i > d.cursor; i-- {
		span := i - d.cursor + 1
		j := d.cursor + source.NextInt(span)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal returns the next n cards and advances the cursor. Fails
// ErrOutOfCards if cursor+n > 52.
func (d *Deck) Deal(n int) ([]Card, error) {
	if d.cursor+n > len(d.cards) {
		return nil, ErrOutOfCards
	}
	out := make([]Card, n)
	copy(out, d.cards[d.cursor:d.cursor+n])
	d.cursor += n
	return out, nil
}

// HoleCardPair is two hole cards dealt to one seat.
type HoleCardPair [2]Card

// DealHoleCards deals round-robin: one card to each of k seats, then a
// second card to each, returning k pairs in seat order. Fails
// ErrOutOfCards if 2k > remaining.
func (d *Deck) DealHoleCards(k int) ([]HoleCardPair, error) {
	if d.cursor+2*k > len(d.cards) {
		return nil, ErrOutOfCards
	}
	pairs := make([]HoleCardPair, k)
	for round := 0; round < 2; round++ {
		for seat := 0; seat < k; seat++ {
			pairs[seat][round] = d.cards[d.cursor]
			d.cursor++
		}
	}
	return pairs, nil
}
