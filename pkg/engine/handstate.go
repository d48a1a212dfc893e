package engine

import (
	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/poker"
	"github.com/holdem/tableengine/pkg/tablelog"
)

func prospectivelyActive(p *PlayerState) bool {
	return p != nil && p.Status != SittingOut && p.Stack > 0
}

// nextSeatFrom searches forward from (from+1), wrapping once around,
// returning the first seat index matching pred. Seat order is the
// engine's single source of deterministic ordering (spec.md §9 REDESIGN
// FLAGS).
func (t *Table) nextSeatFrom(from int, pred func(*PlayerState) bool) (int, bool) {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if pred(t.seats[seat]) {
			return seat, true
		}
	}
	return -1, false
}

// StartHand begins a new hand. Requires phase == Idle and at least
// config.MinPlayers seats with status Active, AllIn or Folded (the status
// endHand leaves every dealt-in player in) and a nonzero stack.
func (t *Table) StartHand() (st TableState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.guardPanic(&st, &err)

	if t.phase != Idle {
		return t.snapshot(), newErr(ErrGameAlreadyStarted, "a hand is already in progress")
	}

	eligible := 0
	for _, p := range t.seats {
		if prospectivelyActive(p) && (p.Status == Active || p.Status == AllIn || p.Status == Folded) {
			eligible++
		}
	}
	if eligible < t.config.MinPlayers {
		return t.snapshot(), newErr(ErrNotEnoughPlayers, "need at least %d players, have %d", t.config.MinPlayers, eligible)
	}

	t.startLog()

	// 1. Advance the dealer button.
	dealerPred := func(p *PlayerState) bool {
		return prospectivelyActive(p) && (p.Status == Active || p.Status == AllIn || p.Status == Folded)
	}
	if t.dealerSeat < 0 {
		for seat, p := range t.seats {
			if dealerPred(p) {
				t.dealerSeat = seat
				break
			}
		}
	} else if seat, ok := t.nextSeatFrom(t.dealerSeat, dealerPred); ok {
		t.dealerSeat = seat
	}

	seatsBeforeBlinds := t.resetForNewHand()

	t.handID++
	t.logAppend(tablelog.HandEvent{
		Type:      tablelog.HandStarted,
		Timestamp: t.timestamp(),
		HandStartedPayload: &tablelog.HandStartedPayload{
			HandID:     t.handID,
			DealerSeat: t.dealerSeat,
			Seats:      seatsBeforeBlinds,
		},
	})

	postings := t.postForcedBets()
	t.logAppend(tablelog.HandEvent{
		Type:                tablelog.BlindsPosted,
		BlindsPostedPayload: &tablelog.BlindsPostedPayload{Postings: postings},
	})

	if err := t.shuffleAndDeal(); err != nil {
		return t.snapshot(), err
	}

	t.setFirstToActPreflop()
	t.phase = Preflop

	return t.snapshot(), nil
}

func (t *Table) startLog() {
	t.currentLog = tablelog.NewMemoryLog()
}

func (t *Table) logAppend(e tablelog.HandEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = t.timestamp()
	}
	t.currentLog.Append(e)
}

// resetForNewHand clears per-hand state and returns a snapshot of seats
// and stacks as they stood before antes/blinds, for the HandStarted
// event. Busted players (stack == 0) are moved to SittingOut rather than
// dealt back in with nothing to play.
func (t *Table) resetForNewHand() []tablelog.SeatSnapshot {
	var seats []tablelog.SeatSnapshot
	for _, p := range t.seats {
		if p == nil {
			continue
		}
		if p.Status == SittingOut {
			continue
		}
		if p.Stack == 0 {
			p.Status = SittingOut
			continue
		}
		p.Status = Active
		p.Committed = 0
		p.HoleCards = nil
		seats = append(seats, tablelog.SeatSnapshot{PlayerID: p.ID, Seat: p.Seat, Stack: p.Stack})
	}
	t.communityCards = nil
	t.pots = nil
	t.lastRaiseIncrement = t.config.BigBlind
	t.actedSinceAggression = make(map[int]bool)
	t.reraiseLocked = make(map[int]bool)
	return seats
}

// clampPost deducts amount from p's stack, clamping to the stack (a short
// post pushes the player all-in), and returns the amount actually posted.
func clampPost(p *PlayerState, amount money.Amount) money.Amount {
	posted := money.Min(amount, p.Stack)
	p.Stack = money.Sub(p.Stack, posted)
	p.Committed = money.Add(p.Committed, posted)
	if p.Stack == 0 {
		p.Status = AllIn
	}
	return posted
}

func (t *Table) activePlayingSeats() []int {
	var out []int
	for seat, p := range t.seats {
		if p != nil && p.Status == Active {
			out = append(out, seat)
		}
	}
	return out
}

// postForcedBets posts antes, blinds, and (if configured and three-way or
// more) the straddle, returning every posting in the order collected.
func (t *Table) postForcedBets() []tablelog.BlindPosting {
	var postings []tablelog.BlindPosting
	playing := t.activePlayingSeats()

	if t.config.Ante != nil {
		for _, seat := range playing {
			p := t.seats[seat]
			posted := clampPost(p, *t.config.Ante)
			if posted > 0 {
				postings = append(postings, tablelog.BlindPosting{PlayerID: p.ID, Seat: seat, Kind: tablelog.PostingAnte, Amount: posted})
			}
		}
	}

	isActive := func(p *PlayerState) bool { return p != nil && p.Status == Active }

	var sbSeat, bbSeat int
	if len(playing) == 2 {
		sbSeat = t.dealerSeat
		bbSeat, _ = t.nextSeatFrom(sbSeat, isActive)
	} else {
		sbSeat, _ = t.nextSeatFrom(t.dealerSeat, isActive)
		bbSeat, _ = t.nextSeatFrom(sbSeat, isActive)
	}
	sb := t.seats[sbSeat]
	postedSB := clampPost(sb, t.config.SmallBlind)
	postings = append(postings, tablelog.BlindPosting{PlayerID: sb.ID, Seat: sbSeat, Kind: tablelog.PostingSmall, Amount: postedSB})

	bb := t.seats[bbSeat]
	postedBB := clampPost(bb, t.config.BigBlind)
	postings = append(postings, tablelog.BlindPosting{PlayerID: bb.ID, Seat: bbSeat, Kind: tablelog.PostingBig, Amount: postedBB})

	if t.config.Straddle != nil && len(playing) >= 3 {
		straddleSeat, ok := t.nextSeatFrom(bbSeat, isActive)
		if ok {
			straddle := t.seats[straddleSeat]
			posted := clampPost(straddle, *t.config.Straddle)
			postings = append(postings, tablelog.BlindPosting{PlayerID: straddle.ID, Seat: straddleSeat, Kind: tablelog.PostingStraddle, Amount: posted})
			// Spec §4.9 step 9: with a straddle, first to act is the next
			// Active seat after the straddle poster, not the poster itself.
			t.firstToActSeat, _ = t.nextSeatFrom(straddleSeat, isActive)
		} else {
			t.firstToActSeat = -1
		}
	} else {
		t.firstToActSeat = -1
	}
	t.sbSeat, t.bbSeat = sbSeat, bbSeat
	return postings
}

// setFirstToActPreflop sets currentSeat per spec.md §4.9 step 9.
func (t *Table) setFirstToActPreflop() {
	isActive := func(p *PlayerState) bool { return p != nil && p.Status == Active }
	playing := t.activePlayingSeats()

	switch {
	case t.firstToActSeat >= 0:
		t.currentSeat = t.firstToActSeat
	case len(playing) == 2:
		t.currentSeat = t.sbSeat
	default:
		if seat, ok := t.nextSeatFrom(t.bbSeat, isActive); ok {
			t.currentSeat = seat
		} else {
			t.currentSeat = -1
		}
	}
}

func (t *Table) shuffleAndDeal() error {
	t.deck = poker.NewDeck()
	t.deck.Shuffle(t.source)

	playing := t.activePlayingSeats()
	pairs, err := t.deck.DealHoleCards(len(playing))
	if err != nil {
		return newErr(ErrInternalError, "dealing hole cards: %v", err)
	}

	holeCards := make(map[string]poker.HoleCardPair, len(playing))
	for i, seat := range playing {
		p := t.seats[seat]
		p.HoleCards = []poker.Card{pairs[i][0], pairs[i][1]}
		holeCards[p.ID] = pairs[i]
	}
	t.logAppend(tablelog.HandEvent{Type: tablelog.CardsDealt, CardsDealtPayload: &tablelog.CardsDealtPayload{HoleCards: holeCards}})
	return nil
}
