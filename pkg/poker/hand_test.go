package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustCards(t *testing.T, ss ...string) []Card {
	t.Helper()
	cards := make([]Card, len(ss))
	for i, s := range ss {
		c, err := ParseCard(s)
		require.NoError(t, err)
		cards[i] = c
	}
	return cards
}

func TestEvaluateRejectsBadCardCount(t *testing.T) {
	_, err := Evaluate(mustCards(t, "Ah", "Kh", "Qh", "Jh"))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Evaluate(mustCards(t, "Ah", "Kh", "Qh", "Jh", "Th", "9h", "8h", "7h"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestEvaluateStraightFlush(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "9h", "Th", "Jh", "Qh", "Kh"))
	require.NoError(t, err)
	require.Equal(t, StraightFlush, hr.Category)
	require.Equal(t, []Rank{RankK}, hr.PrimaryRanks)
}

func TestEvaluateWheelStraight(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "Ah", "2c", "3d", "4s", "5h"))
	require.NoError(t, err)
	require.Equal(t, Straight, hr.Category)
	require.Equal(t, []Rank{Rank5}, hr.PrimaryRanks)
}

func TestEvaluateWheelStraightFlush(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "Ah", "2h", "3h", "4h", "5h"))
	require.NoError(t, err)
	require.Equal(t, StraightFlush, hr.Category)
	require.Equal(t, []Rank{Rank5}, hr.PrimaryRanks)
}

func TestEvaluateQuads(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "9h", "9c", "9d", "9s", "2h"))
	require.NoError(t, err)
	require.Equal(t, Quads, hr.Category)
	require.Equal(t, []Rank{Rank9}, hr.PrimaryRanks)
	require.Equal(t, []Rank{Rank2}, hr.Kickers)
}

func TestEvaluateFullHouse(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "9h", "9c", "9d", "2s", "2h"))
	require.NoError(t, err)
	require.Equal(t, FullHouse, hr.Category)
	require.Equal(t, []Rank{Rank9, Rank2}, hr.PrimaryRanks)
}

func TestEvaluateFlushBeatsStraight(t *testing.T) {
	flush, err := Evaluate(mustCards(t, "2h", "5h", "9h", "Jh", "Kh"))
	require.NoError(t, err)
	straight, err := Evaluate(mustCards(t, "4c", "5d", "6h", "7s", "8c"))
	require.NoError(t, err)
	require.Equal(t, Flush, flush.Category)
	require.Equal(t, Straight, straight.Category)
	require.Equal(t, 1, Compare(flush, straight))
}

func TestEvaluateTrips(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "9h", "9c", "9d", "Ks", "2h"))
	require.NoError(t, err)
	require.Equal(t, Trips, hr.Category)
	require.Equal(t, []Rank{Rank9}, hr.PrimaryRanks)
	require.Equal(t, []Rank{RankK, Rank2}, hr.Kickers)
}

func TestEvaluateTwoPair(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "9h", "9c", "2d", "2s", "Kh"))
	require.NoError(t, err)
	require.Equal(t, TwoPair, hr.Category)
	require.Equal(t, []Rank{Rank9, Rank2}, hr.PrimaryRanks)
	require.Equal(t, []Rank{RankK}, hr.Kickers)
}

func TestEvaluatePair(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "9h", "9c", "2d", "5s", "Kh"))
	require.NoError(t, err)
	require.Equal(t, Pair, hr.Category)
	require.Equal(t, []Rank{Rank9}, hr.PrimaryRanks)
	require.Equal(t, []Rank{RankK, Rank5, Rank2}, hr.Kickers)
}

func TestEvaluateHighCard(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "2h", "5c", "9d", "Js", "Kh"))
	require.NoError(t, err)
	require.Equal(t, HighCard, hr.Category)
	require.Equal(t, []Rank{RankK, RankJ, Rank9, Rank5, Rank2}, hr.Kickers)
}

func TestEvaluatePicksBest5Of7(t *testing.T) {
	hr, err := Evaluate(mustCards(t, "9h", "9c", "9d", "9s", "2h", "3c", "4d"))
	require.NoError(t, err)
	require.Equal(t, Quads, hr.Category)
}

func TestCompareCategoryDominates(t *testing.T) {
	pair, err := Evaluate(mustCards(t, "Ah", "Ac", "Kd", "Qs", "Jh"))
	require.NoError(t, err)
	highCard, err := Evaluate(mustCards(t, "2h", "5c", "9d", "Js", "Kh"))
	require.NoError(t, err)
	require.Equal(t, 1, Compare(pair, highCard))
}

func TestDetermineWinnersSplitPot(t *testing.T) {
	board := mustCards(t, "Ah", "Kd", "Qc", "5s", "2h")
	holeA := mustCards(t, "9h", "9c")
	holeB := mustCards(t, "9d", "9s")

	winners, hands, err := DetermineWinners([][]Card{holeA, holeB}, board)
	require.NoError(t, err)
	require.Len(t, hands, 2)
	require.ElementsMatch(t, []int{0, 1}, winners)
}

func TestDetermineWinnersSingleWinner(t *testing.T) {
	board := mustCards(t, "2h", "5d", "9c", "Js", "Kh")
	holeA := mustCards(t, "Ah", "Ac")
	holeB := mustCards(t, "2c", "3d")

	winners, _, err := DetermineWinners([][]Card{holeA, holeB}, board)
	require.NoError(t, err)
	require.Equal(t, []int{0}, winners)
}

func TestDetermineWinnersRejectsEmptyPlayers(t *testing.T) {
	board := mustCards(t, "2h", "5d", "9c")
	_, _, err := DetermineWinners(nil, board)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDetermineWinnersRejectsBadBoardSize(t *testing.T) {
	board := mustCards(t, "2h", "5d")
	hole := mustCards(t, "Ah", "Ac")
	_, _, err := DetermineWinners([][]Card{hole}, board)
	require.ErrorIs(t, err, ErrInvalidInput)
}
