package engine

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/rng"
	"github.com/stretchr/testify/require"
)

func newHeadsUpInPreflop(t *testing.T) (*Table, string, string) {
	t.Helper()
	tb := newTestTable(t, 2, 9, 1, 2, 42)
	seatTwo(t, tb, 100, 100)
	st, err := tb.StartHand()
	require.NoError(t, err)
	toAct := *st.CurrentPlayerID
	other := "bob"
	if toAct == "bob" {
		other = "alice"
	}
	return tb, toAct, other
}

func TestValidateActionRejectsCheckFacingABet(t *testing.T) {
	tb, toAct, _ := newHeadsUpInPreflop(t)
	_, err := tb.ApplyAction(toAct, Action{Type: ActionCheck})
	require.Error(t, err)
	te, ok := AsTableError(err)
	require.True(t, ok)
	require.Equal(t, ErrInvalidAction, te.Code)
}

func TestValidateActionRejectsCallWithNothingToCall(t *testing.T) {
	tb, toAct, other := newHeadsUpInPreflop(t)
	_, err := tb.ApplyAction(toAct, Action{Type: ActionCall})
	require.NoError(t, err)
	_, err = tb.ApplyAction(other, Action{Type: ActionCheck})
	require.NoError(t, err)

	// Flop: first to act checks; facing no bet, Call is illegal.
	st := tb.GetState()
	_, err = tb.ApplyAction(*st.CurrentPlayerID, Action{Type: ActionCall})
	require.Error(t, err)
	te, ok := AsTableError(err)
	require.True(t, ok)
	require.Equal(t, ErrInvalidAction, te.Code)
}

func TestValidateActionRejectsRaiseBelowMinimumIncrement(t *testing.T) {
	tb, toAct, _ := newHeadsUpInPreflop(t)
	// Current bet is the big blind (2); the minimum raise increment is
	// also the big blind. A raise of 1 is below that floor.
	_, err := tb.ApplyAction(toAct, Action{Type: ActionRaise, Amount: 1})
	require.Error(t, err)
	te, ok := AsTableError(err)
	require.True(t, ok)
	require.Equal(t, ErrInvalidRaiseAmount, te.Code)
}

func TestValidateActionAcceptsRaiseAtMinimumIncrement(t *testing.T) {
	tb, toAct, _ := newHeadsUpInPreflop(t)
	_, err := tb.ApplyAction(toAct, Action{Type: ActionRaise, Amount: 2})
	require.NoError(t, err)
}

func TestValidateActionRejectsBetWhenBetAlreadyOutstanding(t *testing.T) {
	tb, toAct, _ := newHeadsUpInPreflop(t)
	_, err := tb.ApplyAction(toAct, Action{Type: ActionBet, Amount: 10})
	require.Error(t, err)
	te, ok := AsTableError(err)
	require.True(t, ok)
	require.Equal(t, ErrInvalidAction, te.Code)
}

func TestValidateActionRejectsUnknownPlayer(t *testing.T) {
	tb, _, _ := newHeadsUpInPreflop(t)
	_, err := tb.ApplyAction("carol", Action{Type: ActionFold})
	require.Error(t, err)
	te, ok := AsTableError(err)
	require.True(t, ok)
	require.Equal(t, ErrPlayerNotFound, te.Code)
}

func TestShortAllInDoesNotReopenActionForPlayersWhoAlreadyActed(t *testing.T) {
	// Three-way: p1 raises to 10, p2 calls (has acted), p3 goes all-in for
	// only 4 more (a short raise below the 8-chip minimum increment) —
	// this must not reopen the action for p1 or p2.
	cfg := TableConfig{MinPlayers: 2, MaxPlayers: 9, SmallBlind: 1, BigBlind: 2}
	tb, err := NewTable(cfg, rng.NewSeeded(3), quartz.NewMock(t))
	require.NoError(t, err)
	_, err = tb.SeatPlayer("p1", 200)
	require.NoError(t, err)
	_, err = tb.SeatPlayer("p2", 200)
	require.NoError(t, err)
	_, err = tb.SeatPlayer("p3", 14)
	require.NoError(t, err)

	st, err := tb.StartHand()
	require.NoError(t, err)

	firstRaiser := *st.CurrentPlayerID
	for i := 0; i < 3; i++ {
		var action Action
		switch i {
		case 0:
			action = Action{Type: ActionRaise, Amount: 8} // to 10 total
		case 1:
			action = Action{Type: ActionCall}
		case 2:
			action = Action{Type: ActionAllIn} // short all-in, below min raise
		}
		st, err = tb.ApplyAction(*st.CurrentPlayerID, action)
		require.NoError(t, err)
	}

	// The short all-in raised the stakes but, being below the tracked
	// minimum increment, does not reopen raising rights: p1 and p2 must
	// still act (call the extra 4) but may only call or fold, not raise.
	require.Equal(t, Preflop, st.Phase)
	require.Equal(t, firstRaiser, *st.CurrentPlayerID)
	actions := tb.AvailableActions(firstRaiser)
	require.Contains(t, actions, ActionCall)
	require.Contains(t, actions, ActionFold)
	require.NotContains(t, actions, ActionRaise)

	_, err = tb.ApplyAction(firstRaiser, Action{Type: ActionRaise, Amount: 8})
	require.Error(t, err)
	te, ok := AsTableError(err)
	require.True(t, ok)
	require.Equal(t, ErrInvalidAction, te.Code)
}

func TestAvailableActionsEmptyWhenNotPlayersTurn(t *testing.T) {
	tb, _, other := newHeadsUpInPreflop(t)
	require.Empty(t, tb.AvailableActions(other))
}

func TestAvailableActionsIncludeRaiseOnlyWithSufficientStack(t *testing.T) {
	tb, toAct, _ := newHeadsUpInPreflop(t)
	actions := tb.AvailableActions(toAct)
	require.Contains(t, actions, ActionRaise)
	require.Contains(t, actions, ActionCall)
	require.Contains(t, actions, ActionFold)
	require.Contains(t, actions, ActionAllIn)
	require.NotContains(t, actions, ActionCheck)
	require.NotContains(t, actions, ActionBet)
}

func TestCallAmountForReturnsZeroWhenAlreadyMatched(t *testing.T) {
	p := &PlayerState{Committed: 10}
	require.Equal(t, money.Zero, callAmountFor(10, p))
	require.Equal(t, money.Amount(5), callAmountFor(15, p))
}
