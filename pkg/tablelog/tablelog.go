// Package tablelog implements the append-only hand event log (C10): a
// closed HandEvent tagged union and an in-memory EventLog implementation.
// Events carry enough structured payload for exact replay without
// consulting the deck or random source (spec.md §4.10, §8 property 10).
package tablelog

import (
	"time"

	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/poker"
)

// EventType discriminates a HandEvent's payload.
type EventType int

const (
	HandStarted EventType = iota
	BlindsPosted
	CardsDealt
	ActionTaken
	StreetEnded
	Showdown
	PotDistributed
	HandEnded
)

var eventTypeNames = [...]string{
	"HandStarted", "BlindsPosted", "CardsDealt", "ActionTaken",
	"StreetEnded", "Showdown", "PotDistributed", "HandEnded",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return "Unknown"
	}
	return eventTypeNames[t]
}

// SeatSnapshot is a player's seat/stack at a point of interest.
type SeatSnapshot struct {
	PlayerID string       `json:"playerId"`
	Seat     int          `json:"seat"`
	Stack    money.Amount `json:"stack"`
}

// HandStartedPayload records the seats in play and the button at the
// start of a hand, before any chips move.
type HandStartedPayload struct {
	HandID     int            `json:"handId"`
	DealerSeat int            `json:"dealerSeat"`
	Seats      []SeatSnapshot `json:"seats"`
}

// BlindPostingKind distinguishes the forced-bet types posted pre-deal.
type BlindPostingKind string

const (
	PostingAnte     BlindPostingKind = "ante"
	PostingSmall    BlindPostingKind = "small_blind"
	PostingBig      BlindPostingKind = "big_blind"
	PostingStraddle BlindPostingKind = "straddle"
)

// BlindPosting is one forced-bet contribution.
type BlindPosting struct {
	PlayerID string           `json:"playerId"`
	Seat     int              `json:"seat"`
	Kind     BlindPostingKind `json:"kind"`
	Amount   money.Amount     `json:"amount"`
}

// BlindsPostedPayload records every forced bet collected before hole
// cards are dealt.
type BlindsPostedPayload struct {
	Postings []BlindPosting `json:"postings"`
}

// CardsDealtPayload records the hole cards dealt round-robin at the start
// of a hand, keyed by player id.
type CardsDealtPayload struct {
	HoleCards map[string]poker.HoleCardPair `json:"holeCards"`
}

// ActionTakenPayload records one validated, applied player action.
type ActionTakenPayload struct {
	PlayerID       string       `json:"playerId"`
	Seat           int          `json:"seat"`
	Action         string       `json:"action"`
	Amount         money.Amount `json:"amount"`
	StackAfter     money.Amount `json:"stackAfter"`
	CommittedAfter money.Amount `json:"committedAfter"`
}

// StreetEndedPayload records the street just entered (the phase the
// table transitioned into when the prior betting round closed), the
// community cards newly dealt for it (empty transitioning into
// Showdown), and the pots as consolidated at that point.
type StreetEndedPayload struct {
	NewPhase          string        `json:"newPhase"`
	NewCommunityCards []poker.Card  `json:"newCommunityCards"`
	Pots              []PotSnapshot `json:"pots"`
}

// PotSnapshot is a pot's total and eligible participants at the moment it
// was consolidated.
type PotSnapshot struct {
	Total        money.Amount `json:"total"`
	Participants []string     `json:"participants"`
}

// PlayerHandSnapshot is one player's revealed hole cards and evaluated
// hand at showdown.
type PlayerHandSnapshot struct {
	PlayerID     string   `json:"playerId"`
	HoleCards    []poker.Card `json:"holeCards"`
	Category     string   `json:"category"`
	PrimaryRanks []string `json:"primaryRanks"`
	Kickers      []string `json:"kickers"`
}

// ShowdownPayload records every remaining player's revealed hand against
// the final board.
type ShowdownPayload struct {
	Board []poker.Card         `json:"board"`
	Hands []PlayerHandSnapshot `json:"hands"`
}

// Payout is one player's share of one pot.
type Payout struct {
	PlayerID string       `json:"playerId"`
	Amount   money.Amount `json:"amount"`
}

// PotDistribution is one pot's rake and payouts.
type PotDistribution struct {
	Total   money.Amount `json:"total"`
	Rake    money.Amount `json:"rake"`
	Payouts []Payout     `json:"payouts"`
}

// PotDistributedPayload records every pot's distribution at the end of a
// hand, in pot order (main pot first).
type PotDistributedPayload struct {
	Distributions []PotDistribution `json:"distributions"`
}

// HandEndedPayload records every player's stack at the close of a hand.
type HandEndedPayload struct {
	HandID      int                  `json:"handId"`
	FinalStacks []SeatSnapshot       `json:"finalStacks"`
}

// HandEvent is one entry in the hand event log. Exactly one of the
// pointer fields matching Type is non-nil; callers switch on Type rather
// than probing fields.
type HandEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	HandStartedPayload     *HandStartedPayload     `json:"handStarted,omitempty"`
	BlindsPostedPayload     *BlindsPostedPayload    `json:"blindsPosted,omitempty"`
	CardsDealtPayload       *CardsDealtPayload      `json:"cardsDealt,omitempty"`
	ActionTakenPayload      *ActionTakenPayload     `json:"actionTaken,omitempty"`
	StreetEndedPayload      *StreetEndedPayload     `json:"streetEnded,omitempty"`
	ShowdownPayload         *ShowdownPayload        `json:"showdown,omitempty"`
	PotDistributedPayload   *PotDistributedPayload  `json:"potDistributed,omitempty"`
	HandEndedPayload        *HandEndedPayload       `json:"handEnded,omitempty"`
}

// EventLog is an append-only sink for HandEvents.
type EventLog interface {
	Append(e HandEvent)
	Events() []HandEvent
}

// MemoryLog is the default EventLog: an in-memory slice. Not safe for
// concurrent use; the engine serializes all access under its own mutex.
type MemoryLog struct {
	events []HandEvent
}

// NewMemoryLog returns an empty MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (m *MemoryLog) Append(e HandEvent) {
	m.events = append(m.events, e)
}

// Events returns an independent copy of the logged events.
func (m *MemoryLog) Events() []HandEvent {
	out := make([]HandEvent, len(m.events))
	copy(out, m.events)
	return out
}
