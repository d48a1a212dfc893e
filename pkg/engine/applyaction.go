package engine

import (
	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/poker"
	"github.com/holdem/tableengine/pkg/tablelog"
)

// ApplyAction validates and applies one player's action, then advances
// the table: to the next player to act, to the next street, or all the
// way through distribution and back to Idle, as the round controller
// dictates. On any error the table is left exactly as it was.
func (t *Table) ApplyAction(playerID string, action Action) (st TableState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.guardPanic(&st, &err)

	p, verr := t.validateAction(playerID, action)
	if verr != nil {
		return t.snapshot(), verr
	}

	currentBetBefore := t.currentBet()
	callAmount := callAmountFor(currentBetBefore, p)
	seat := p.Seat

	switch action.Type {
	case ActionFold:
		p.Status = Folded
		t.markActed(seat)

	case ActionCheck:
		t.markActed(seat)

	case ActionCall:
		moved := money.Min(callAmount, p.Stack)
		p.Stack = money.Sub(p.Stack, moved)
		p.Committed = money.Add(p.Committed, moved)
		if p.Stack == 0 {
			p.Status = AllIn
		}
		t.markActed(seat)

	case ActionBet, ActionRaise:
		var moved money.Amount
		if action.Type == ActionRaise {
			moved = money.Add(callAmount, action.Amount)
		} else {
			moved = action.Amount
		}
		if moved > p.Stack {
			moved = p.Stack
		}
		t.applyAggression(p, moved, callAmount, currentBetBefore)

	case ActionAllIn:
		moved := p.Stack
		t.applyAggression(p, moved, callAmount, currentBetBefore)
	}

	t.logAppend(tablelog.HandEvent{
		Type: tablelog.ActionTaken,
		ActionTakenPayload: &tablelog.ActionTakenPayload{
			PlayerID:       p.ID,
			Seat:           seat,
			Action:         action.Type.String(),
			Amount:         action.Amount,
			StackAfter:     p.Stack,
			CommittedAfter: p.Committed,
		},
	})

	t.advanceTurn()
	// afterAction may consolidate the pot, deal further streets, run a
	// showdown, or end the hand outright — all of which must land before
	// the snapshot returned to the caller is taken.
	err = t.afterAction()
	return t.snapshot(), err
}

// applyAggression applies a Bet/Raise/AllIn's stack movement and updates
// the round's minimum-raise floor and acted-since-aggression bits. A
// short all-in (or a clamped bet/raise that falls short of the tracked
// minimum) does not reopen action for players who already acted this
// round (spec.md §9 open question 2).
func (t *Table) applyAggression(p *PlayerState, moved, callAmount, currentBetBefore money.Amount) {
	p.Stack = money.Sub(p.Stack, moved)
	p.Committed = money.Add(p.Committed, moved)
	if p.Stack == 0 {
		p.Status = AllIn
	}

	increment := money.Zero
	if moved > callAmount {
		increment = money.Sub(moved, callAmount)
	}

	reopens := increment > 0 && (currentBetBefore == 0 || increment >= t.lastRaiseIncrement)
	if reopens {
		t.lastRaiseIncrement = increment
		for seat := range t.actedSinceAggression {
			delete(t.actedSinceAggression, seat)
		}
		// A full raise reopens action for everyone, including seats a
		// previous short all-in had locked out of raising.
		for seat := range t.reraiseLocked {
			delete(t.reraiseLocked, seat)
		}
	} else if increment > 0 {
		// A short all-in raised the stakes without reopening full raising
		// rights: everyone who had already acted this round may still call
		// the difference, but may not raise again (spec.md §9 open
		// question 2).
		if t.reraiseLocked == nil {
			t.reraiseLocked = make(map[int]bool)
		}
		for seat := range t.actedSinceAggression {
			t.reraiseLocked[seat] = true
		}
	}
	t.markActed(p.Seat)
}

func (t *Table) markActed(seat int) {
	if t.actedSinceAggression == nil {
		t.actedSinceAggression = make(map[int]bool)
	}
	t.actedSinceAggression[seat] = true
}

// advanceTurn sets currentSeat to the next player able to act, or -1 if
// none remains.
func (t *Table) advanceTurn() {
	isNext := func(p *PlayerState) bool { return p != nil && p.Status == Active && p.Stack > 0 }
	if seat, ok := t.nextSeatFrom(t.currentSeat, isNext); ok {
		t.currentSeat = seat
	} else {
		t.currentSeat = -1
	}
}

// roundComplete implements C7: the round is over when at most one Active
// player remains and has matched currentBet, or every Active player has
// matched currentBet and has acted since the last aggression.
func (t *Table) roundComplete() bool {
	currentBet := t.currentBet()
	activeCount := 0
	allMatched, allActed := true, true
	for seat, p := range t.seats {
		if p == nil || p.Status != Active {
			continue
		}
		activeCount++
		if p.Stack > 0 {
			if p.Committed != currentBet {
				allMatched = false
			}
			if !t.actedSinceAggression[seat] {
				allActed = false
			}
		}
	}
	if activeCount <= 1 {
		return allMatched
	}
	return allMatched && allActed
}

// notFoldedCount counts players still in the hand (Active or AllIn).
func (t *Table) notFoldedCount() int {
	n := 0
	for _, p := range t.seats {
		if p != nil && (p.Status == Active || p.Status == AllIn) {
			n++
		}
	}
	return n
}

// afterAction consults the round controller and drives the table forward
// through street advances, or straight to distribution, as needed. It is
// called once per ApplyAction after the triggering action has been
// logged.
func (t *Table) afterAction() error {
	if !t.roundComplete() {
		return nil
	}
	if t.notFoldedCount() <= 1 {
		return t.distributeUncontested()
	}
	return t.advanceStreet()
}

// consolidateStreet folds every seat's current-round committed chips into
// the pot layering built so far, and resets committed to zero.
func (t *Table) consolidateStreet() []PotState {
	contributions := make([]Contribution, 0, len(t.seats))
	for _, p := range t.seats {
		if p == nil {
			continue
		}
		contributions = append(contributions, Contribution{PlayerID: p.ID, Amount: p.Committed})
	}
	fresh := BuildPots(contributions)
	t.pots = mergePots(t.pots, fresh)
	for _, p := range t.seats {
		if p != nil {
			p.Committed = 0
		}
	}
	return t.pots
}

func potSnapshots(pots []PotState) []tablelog.PotSnapshot {
	out := make([]tablelog.PotSnapshot, len(pots))
	for i, p := range pots {
		out[i] = tablelog.PotSnapshot{Total: p.Total, Participants: append([]string{}, p.Participants...)}
	}
	return out
}

// advanceStreet consolidates the round just completed, deals the next
// street's community cards (or transitions to Showdown), and resets the
// per-round acted/raise-increment trackers. If no Active player has
// chips left to act with, it runs straight through to Showdown without
// pausing for betting (spec.md §4.9 "if only all-in players remain...").
func (t *Table) advanceStreet() error {
	canStillAct := func() bool {
		n := 0
		for _, p := range t.seats {
			if p != nil && p.Status == Active && p.Stack > 0 {
				n++
			}
		}
		return n >= 2
	}

	for {
		pots := t.consolidateStreet()
		var dealt []poker.Card
		var err error

		switch t.phase {
		case Preflop:
			dealt, err = t.deck.Deal(3)
			t.phase = Flop
		case Flop:
			dealt, err = t.deck.Deal(1)
			t.phase = Turn
		case Turn:
			dealt, err = t.deck.Deal(1)
			t.phase = River
		case River:
			t.phase = Showdown
			t.currentSeat = -1
		default:
			return newErr(ErrInternalError, "advanceStreet called in phase %s", t.phase)
		}
		if err != nil {
			return newErr(ErrInternalError, "dealing community cards: %v", err)
		}
		t.communityCards = append(t.communityCards, dealt...)

		t.logAppend(tablelog.HandEvent{
			Type: tablelog.StreetEnded,
			StreetEndedPayload: &tablelog.StreetEndedPayload{
				NewPhase:          t.phase.String(),
				NewCommunityCards: dealt,
				Pots:              potSnapshots(pots),
			},
		})

		if t.phase == Showdown {
			return t.runShowdown()
		}

		t.lastRaiseIncrement = t.config.BigBlind
		t.actedSinceAggression = make(map[int]bool)
		t.reraiseLocked = make(map[int]bool)

		if canStillAct() {
			isActive := func(p *PlayerState) bool { return p != nil && p.Status == Active }
			if seat, ok := t.nextSeatFrom(t.dealerSeat, isActive); ok {
				t.currentSeat = seat
			} else {
				t.currentSeat = -1
			}
			return nil
		}
		// Nobody left who can act: skip straight through remaining streets.
	}
}

// runShowdown evaluates every remaining (non-folded) player's hand and
// distributes every pot accordingly.
func (t *Table) runShowdown() error {
	var playerIDs []string
	var holeSets [][]poker.Card
	for _, p := range t.seats {
		if p == nil || p.Status == Folded || p.Status == SittingOut {
			continue
		}
		playerIDs = append(playerIDs, p.ID)
		holeSets = append(holeSets, p.HoleCards)
	}

	winnerIdx, hands, err := poker.DetermineWinners(holeSets, t.communityCards)
	if err != nil {
		return newErr(ErrInternalError, "showdown evaluation: %v", err)
	}

	handSnapshots := make([]tablelog.PlayerHandSnapshot, len(playerIDs))
	for i, id := range playerIDs {
		handSnapshots[i] = tablelog.PlayerHandSnapshot{
			PlayerID:     id,
			HoleCards:    holeSets[i],
			Category:     hands[i].Category.String(),
			PrimaryRanks: rankStrings(hands[i].PrimaryRanks),
			Kickers:      rankStrings(hands[i].Kickers),
		}
	}
	t.logAppend(tablelog.HandEvent{
		Type: tablelog.Showdown,
		ShowdownPayload: &tablelog.ShowdownPayload{
			Board: append([]poker.Card{}, t.communityCards...),
			Hands: handSnapshots,
		},
	})

	winners := make([]string, len(winnerIdx))
	for i, idx := range winnerIdx {
		winners[i] = playerIDs[idx]
	}

	return t.distributeAndEnd(winners, true)
}

func rankStrings(ranks []poker.Rank) []string {
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.String()
	}
	return out
}

// distributeUncontested hands every pot's total to the sole remaining
// player without comparing hands or raking the pot (spec.md §4.8: no
// rake on an uncontested pot). No Showdown event is logged — the event
// order's `Showdown?` is optional precisely for this path — but phase
// still passes through Showdown en route to Idle (spec.md §8 scenario S2).
func (t *Table) distributeUncontested() error {
	t.consolidateStreet()
	t.phase = Showdown
	t.currentSeat = -1

	var winner string
	for _, p := range t.seats {
		if p != nil && (p.Status == Active || p.Status == AllIn) {
			winner = p.ID
			break
		}
	}
	if winner == "" {
		return newErr(ErrInternalError, "no remaining player to award an uncontested hand to")
	}
	return t.distributeAndEnd([]string{winner}, false)
}

// distributeAndEnd pays every pot out to winnersBestFirst (all mutually
// tied, per spec.md §4.9's single determineWinners call reused across
// every pot), then transitions the table back to Idle. applyRake is false
// for an uncontested hand (spec.md §4.8: no rake without a showdown).
func (t *Table) distributeAndEnd(winnersBestFirst []string, applyRake bool) error {
	seatOf := make(map[string]int, len(t.seats))
	for _, p := range t.seats {
		if p != nil {
			seatOf[p.ID] = p.Seat
		}
	}
	rakeCfg := t.config.Rake
	if !applyRake {
		rakeCfg = nil
	}

	// distributeUncontested always consolidates the final street first, so
	// t.pots holds at least one layer here: every seated player posts a
	// nonzero blind, so BuildPots never returns empty.
	distributions := make([]tablelog.PotDistribution, 0, len(t.pots))
	for i, pot := range t.pots {
		isMain := i == 0
		dist := distributePot(pot, winnersBestFirst, isMain, rakeCfg, seatOf)
		if len(dist.Payouts) == 0 && len(pot.Participants) > 0 {
			dist = t.forfeitedPotFallback(pot, isMain, rakeCfg, seatOf)
		}
		distributions = append(distributions, dist)
		for _, payout := range dist.Payouts {
			if p, ok := t.seatByID(payout.PlayerID); ok {
				p.Stack = money.Add(p.Stack, payout.Amount)
			}
		}
	}

	t.logAppend(tablelog.HandEvent{
		Type:                  tablelog.PotDistributed,
		PotDistributedPayload: &tablelog.PotDistributedPayload{Distributions: distributions},
	})

	return t.endHand()
}

// forfeitedPotFallback handles the unreachable-via-legal-inputs case
// where a pot's participants all folded out of a later consolidation
// (spec.md §9 open question 5): fall back to the winners list filtered
// to any other pot's participants, defaulting to paying no one if that
// also fails, and flags the event as an invariant violation.
func (t *Table) forfeitedPotFallback(pot PotState, isMain bool, rakeCfg *RakeConfig, seatOf map[string]int) tablelog.PotDistribution {
	for _, other := range t.pots {
		participants := make(map[string]bool, len(other.Participants))
		for _, id := range other.Participants {
			participants[id] = true
		}
		var fallbackWinners []string
		for id := range participants {
			fallbackWinners = append(fallbackWinners, id)
		}
		if len(fallbackWinners) > 0 {
			return distributePot(pot, fallbackWinners, isMain, rakeCfg, seatOf)
		}
	}
	return tablelog.PotDistribution{Total: pot.Total}
}

func (t *Table) seatByID(id string) (*PlayerState, bool) {
	for _, p := range t.seats {
		if p != nil && p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// endHand transitions the table back to Idle, clears hand-scoped state,
// and rotates the current hand's event log into lastLog.
func (t *Table) endHand() error {
	finalStacks := make([]tablelog.SeatSnapshot, 0, len(t.seats))
	for _, p := range t.seats {
		if p == nil {
			continue
		}
		finalStacks = append(finalStacks, tablelog.SeatSnapshot{PlayerID: p.ID, Seat: p.Seat, Stack: p.Stack})
		if p.Status == SittingOut {
			continue
		}
		// Folded here is a placeholder status until the next StartHand's
		// reset, which treats Folded (along with Active/AllIn) as eligible
		// to return (spec.md §9 open question: new-hand reset omits
		// Folded, resolved in DESIGN.md).
		p.Status = Folded
	}

	t.logAppend(tablelog.HandEvent{
		Type:            tablelog.HandEnded,
		HandEndedPayload: &tablelog.HandEndedPayload{HandID: t.handID, FinalStacks: finalStacks},
	})

	t.phase = Idle
	t.communityCards = nil
	t.pots = nil
	t.currentSeat = -1
	for _, p := range t.seats {
		if p != nil {
			p.HoleCards = nil
			p.Committed = 0
		}
	}

	t.lastLog = t.currentLog
	t.currentLog = nil
	return nil
}
