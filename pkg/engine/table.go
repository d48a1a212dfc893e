// Package engine implements the hold'em table's core state machine:
// betting validation and application (C5, C6), the round controller
// (C7), the pot engine (C8), the hand state machine (C9), and the
// public façade and error taxonomy (C11). All public methods are
// synchronous, mutex-guarded, and return independent snapshots — there
// are no goroutines, channels, or suspension points anywhere in this
// package.
package engine

import (
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/poker"
	"github.com/holdem/tableengine/pkg/rng"
	"github.com/holdem/tableengine/pkg/tablelog"
)

// Table is a single hold'em table: seats, the hand in progress (if any),
// and the event logs of the current and most recently completed hands.
type Table struct {
	mu sync.Mutex

	config TableConfig
	source rng.Source
	clock  quartz.Clock

	phase      TablePhase
	handID     int
	dealerSeat int // -1 before the first hand
	currentSeat int // -1 when no betting round is in progress

	seats          []*PlayerState // len == config.MaxPlayers; nil entries are vacant seats
	communityCards []poker.Card
	pots           []PotState
	deck           *poker.Deck

	lastRaiseIncrement   money.Amount
	actedSinceAggression map[int]bool // by seat
	reraiseLocked        map[int]bool // by seat: already acted before a short all-in that didn't reopen

	// Scratch state, valid only during StartHand's forced-bet posting.
	sbSeat, bbSeat, firstToActSeat int

	currentLog *tablelog.MemoryLog
	lastLog    *tablelog.MemoryLog
}

// NewTable constructs a Table. source drives every shuffle for every
// hand dealt at this table; clock stamps every logged event.
func NewTable(config TableConfig, source rng.Source, clock quartz.Clock) (*Table, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Table{
		config:      config,
		source:      source,
		clock:       clock,
		phase:       Idle,
		dealerSeat:  -1,
		currentSeat: -1,
		seats:       make([]*PlayerState, config.MaxPlayers),
	}, nil
}

// GetConfig returns the table's configuration.
func (t *Table) GetConfig() TableConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config
}

// GetState returns an independent snapshot of the table. Infallible.
func (t *Table) GetState() TableState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// GetCurrentHandHistory returns the event log of the hand in progress,
// if any.
func (t *Table) GetCurrentHandHistory() (tablelog.EventLog, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.currentLog == nil {
		return nil, false
	}
	return t.currentLog, true
}

// GetLastHandHistory returns the event log of the most recently
// completed hand, if any.
func (t *Table) GetLastHandHistory() (tablelog.EventLog, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastLog == nil {
		return nil, false
	}
	return t.lastLog, true
}

func (t *Table) snapshot() TableState {
	players := make([]PlayerState, 0, len(t.seats))
	for _, p := range t.seats {
		if p == nil {
			continue
		}
		cp := *p
		cp.HoleCards = append([]poker.Card{}, p.HoleCards...)
		players = append(players, cp)
	}

	var dealerSeat *int
	if t.dealerSeat >= 0 {
		d := t.dealerSeat
		dealerSeat = &d
	}
	var currentPlayerID *string
	if t.currentSeat >= 0 && t.seats[t.currentSeat] != nil {
		id := t.seats[t.currentSeat].ID
		currentPlayerID = &id
	}
	pots := make([]PotState, len(t.pots))
	for i, pot := range t.pots {
		pots[i] = PotState{Total: pot.Total, Participants: append([]string{}, pot.Participants...)}
	}

	return TableState{
		Phase:           t.phase,
		HandID:          t.handID,
		DealerSeat:      dealerSeat,
		Players:         players,
		CommunityCards:  append([]poker.Card{}, t.communityCards...),
		Pots:            pots,
		CurrentPlayerID: currentPlayerID,
	}
}

// --- Seating, removal, rebuy (C9) ---

// SeatPlayer places a new player in the lowest-indexed vacant seat.
func (t *Table) SeatPlayer(id string, buyIn money.Amount) (st TableState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.guardPanic(&st, &err)

	for _, p := range t.seats {
		if p != nil && p.ID == id {
			return t.snapshot(), newErr(ErrInvalidState, "player %q already seated", id)
		}
	}
	if buyIn < t.config.BigBlind {
		return t.snapshot(), newErr(ErrInsufficientStack, "buy-in %s below big blind %s", buyIn, t.config.BigBlind)
	}
	seat := -1
	for i, p := range t.seats {
		if p == nil {
			seat = i
			break
		}
	}
	if seat == -1 {
		return t.snapshot(), newErr(ErrTableFull, "table has no vacant seats")
	}
	t.seats[seat] = &PlayerState{ID: id, Seat: seat, Stack: buyIn, Status: Active}
	return t.snapshot(), nil
}

// RemovePlayer removes a player while the table is idle, or demotes them
// to SittingOut mid-hand if they have no chips committed this round.
func (t *Table) RemovePlayer(id string) (st TableState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.guardPanic(&st, &err)

	p, ferr := t.findPlayer(id)
	if ferr != nil {
		return t.snapshot(), ferr
	}
	if t.phase == Idle {
		t.seats[p.Seat] = nil
		return t.snapshot(), nil
	}
	if p.Committed > 0 {
		return t.snapshot(), newErr(ErrInvalidState, "player %q has chips committed this round", id)
	}
	p.Status = SittingOut
	return t.snapshot(), nil
}

// RebuyPlayer adds chips to a player's stack, governed by
// config.Rebuy.
func (t *Table) RebuyPlayer(id string, amount money.Amount) (st TableState, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.guardPanic(&st, &err)

	p, ferr := t.findPlayer(id)
	if ferr != nil {
		return t.snapshot(), ferr
	}
	if t.phase != Idle && !t.config.Rebuy.AllowDuringHand {
		return t.snapshot(), newErr(ErrInvalidState, "rebuys are not allowed while a hand is active")
	}
	if amount < t.config.Rebuy.MinRebuy {
		return t.snapshot(), newErr(ErrInsufficientStack, "rebuy %s below minimum %s", amount, t.config.Rebuy.MinRebuy)
	}
	if t.config.Rebuy.MaxRebuy != nil && amount > *t.config.Rebuy.MaxRebuy {
		return t.snapshot(), newErr(ErrInsufficientStack, "rebuy %s exceeds maximum %s", amount, *t.config.Rebuy.MaxRebuy)
	}
	p.Stack = money.Add(p.Stack, amount)
	if p.Status == SittingOut && p.Stack > 0 {
		p.Status = Active
	}
	return t.snapshot(), nil
}

func (t *Table) activeSeatCount() int {
	n := 0
	for _, p := range t.seats {
		if p != nil && (p.Status == Active || p.Status == AllIn) {
			n++
		}
	}
	return n
}

func (t *Table) timestamp() time.Time {
	return t.clock.Now()
}
