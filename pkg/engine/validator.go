package engine

import "github.com/holdem/tableengine/pkg/money"

// currentBet is the maximum committed amount across every seated player
// (folded players' prior commitments still count: they already matched
// whatever they matched before folding).
func (t *Table) currentBet() money.Amount {
	var max money.Amount
	for _, p := range t.seats {
		if p == nil {
			continue
		}
		if p.Committed > max {
			max = p.Committed
		}
	}
	return max
}

func callAmountFor(currentBet money.Amount, p *PlayerState) money.Amount {
	if currentBet <= p.Committed {
		return 0
	}
	return currentBet - p.Committed
}

// minRaiseIncrement is the size of the last bet-or-raise increment seen
// this betting round; floored to the big blind at the start of every
// round (spec.md §9 open question 1: track the increment explicitly
// rather than using currentBet as a conservative floor).
func (t *Table) minRaiseIncrement() money.Amount {
	return t.lastRaiseIncrement
}

func (t *Table) findPlayer(id string) (*PlayerState, *TableError) {
	for _, p := range t.seats {
		if p != nil && p.ID == id {
			return p, nil
		}
	}
	return nil, newErr(ErrPlayerNotFound, "no player with id %q", id)
}

// validateAction checks a proposed action's legality against the current
// state. It never mutates t.
func (t *Table) validateAction(playerID string, action Action) (*PlayerState, *TableError) {
	if t.phase == Idle || t.phase == Showdown {
		return nil, newErr(ErrInvalidState, "no betting round in progress")
	}
	p, err := t.findPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if t.currentSeat < 0 || t.seats[t.currentSeat] == nil || t.seats[t.currentSeat].ID != playerID {
		return nil, newErr(ErrNotPlayerTurn, "it is not %q's turn", playerID)
	}
	if p.Status != Active {
		return nil, newErr(ErrInvalidState, "player %q is not active (status=%s)", playerID, p.Status)
	}

	currentBet := t.currentBet()
	callAmount := callAmountFor(currentBet, p)

	switch action.Type {
	case ActionFold:
		return p, nil

	case ActionCheck:
		if callAmount != 0 {
			return nil, newErr(ErrInvalidAction, "cannot check facing a bet of %s", callAmount)
		}
		return p, nil

	case ActionCall:
		if callAmount == 0 {
			return nil, newErr(ErrInvalidAction, "nothing to call")
		}
		if action.HasAmount && action.Amount != callAmount {
			return nil, newErr(ErrInvalidBetAmount, "call amount must equal %s, got %s", callAmount, action.Amount)
		}
		return p, nil

	case ActionBet:
		if currentBet != 0 {
			return nil, newErr(ErrInvalidAction, "cannot bet when a bet is already outstanding")
		}
		if action.Amount <= 0 {
			return nil, newErr(ErrInvalidBetAmount, "bet amount must be > 0")
		}
		if action.Amount > p.Stack {
			return nil, newErr(ErrInvalidBetAmount, "bet amount %s exceeds stack %s", action.Amount, p.Stack)
		}
		return p, nil

	case ActionRaise:
		if currentBet == 0 {
			return nil, newErr(ErrInvalidAction, "cannot raise when no bet is outstanding")
		}
		if t.reraiseLocked[p.Seat] {
			return nil, newErr(ErrInvalidAction, "a short all-in does not reopen raising for %q this round", playerID)
		}
		if action.Amount <= 0 {
			return nil, newErr(ErrInvalidRaiseAmount, "raise increment must be > 0")
		}
		if callAmount+action.Amount > p.Stack {
			return nil, newErr(ErrInvalidRaiseAmount, "raise requires %s but stack is only %s", callAmount+action.Amount, p.Stack)
		}
		minIncrement := t.minRaiseIncrement()
		if action.Amount < minIncrement {
			return nil, newErr(ErrInvalidRaiseAmount, "raise increment %s below minimum %s", action.Amount, minIncrement)
		}
		return p, nil

	case ActionAllIn:
		if p.Stack <= 0 {
			return nil, newErr(ErrInvalidAction, "player has no stack to push all-in")
		}
		if action.HasAmount && action.Amount != p.Stack {
			return nil, newErr(ErrInvalidBetAmount, "all-in amount must equal stack %s, got %s", p.Stack, action.Amount)
		}
		return p, nil

	default:
		return nil, newErr(ErrInvalidAction, "unrecognized action type %v", action.Type)
	}
}

// AvailableActions returns the legal actions for playerID in the current
// state, or an empty slice if it is not their turn or they are not
// Active.
func (t *Table) AvailableActions(playerID string) (actions []ActionType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer func() {
		if recover() != nil {
			actions = nil
		}
	}()

	if t.phase == Idle || t.phase == Showdown || t.currentSeat < 0 {
		return nil
	}
	cur := t.seats[t.currentSeat]
	if cur == nil || cur.ID != playerID || cur.Status != Active {
		return nil
	}

	currentBet := t.currentBet()
	callAmount := callAmountFor(currentBet, cur)
	minIncrement := t.minRaiseIncrement()

	actions = []ActionType{ActionFold}
	if callAmount == 0 {
		actions = append(actions, ActionCheck)
	}
	if callAmount > 0 && cur.Stack > 0 {
		actions = append(actions, ActionCall)
	}
	if currentBet == 0 && cur.Stack > 0 {
		actions = append(actions, ActionBet)
	}
	if currentBet > 0 && cur.Stack >= minIncrement+callAmount && !t.reraiseLocked[t.currentSeat] {
		actions = append(actions, ActionRaise)
	}
	if cur.Stack > 0 {
		actions = append(actions, ActionAllIn)
	}
	return actions
}
