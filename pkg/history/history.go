// Package history implements the hand-history JSON codec and replay (C11):
// the external file format from spec.md §6 (`{handId, tableConfig, events,
// startTime, endTime}`, decimal-string chip amounts, two-character card
// text), and a pure re-derivation of the intermediate TableState sequence
// from a recorded event log, consulting neither the deck nor the random
// source (spec.md §5 ordering guarantees, §8 property 10).
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/holdem/tableengine/pkg/engine"
	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/poker"
	"github.com/holdem/tableengine/pkg/tablelog"
)

// Record is one hand's complete history, in the external wire format.
type Record struct {
	HandID      int                  `json:"handId"`
	TableConfig engine.TableConfig   `json:"tableConfig"`
	Events      []tablelog.HandEvent `json:"events"`
	StartTime   time.Time            `json:"startTime"`
	EndTime     *time.Time           `json:"endTime,omitempty"`
}

// FromLog builds a Record from a completed (or in-progress) hand's event
// log. endTime is nil for a hand still in progress.
func FromLog(handID int, config engine.TableConfig, log tablelog.EventLog, startTime time.Time, endTime *time.Time) Record {
	return Record{
		HandID:      handID,
		TableConfig: config,
		Events:      log.Events(),
		StartTime:   startTime,
		EndTime:     endTime,
	}
}

// Marshal renders a Record as indented JSON.
func Marshal(r Record) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Unmarshal parses a Record from JSON. fromJson(toJson(r)) is structurally
// equal to r (spec.md §6).
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("history: %w", err)
	}
	return r, nil
}

// seatState is one seat's replay-derived state.
type seatState struct {
	id        string
	seat      int
	stack     money.Amount
	committed money.Amount
	status    engine.PlayerStatus
	holeCards []poker.Card
}

// replayState holds everything Replay threads through the event switch. It
// mirrors the fields engine.Table itself carries, keyed the same way
// (fixed-size seat slots, not insertion order), so seat-order derivations
// below match nextSeatFrom/advanceTurn/setFirstToActPreflop exactly.
type replayState struct {
	slots          []*seatState // len == config.MaxPlayers; nil entries vacant
	phase          engine.TablePhase
	handID         int
	dealerSeat     int // -1 before any HandStarted
	currentSeat    int // -1 when no player is to act
	communityCards []poker.Card
	pots           []engine.PotState
}

func newReplayState(maxPlayers int) *replayState {
	return &replayState{
		slots:       make([]*seatState, maxPlayers),
		phase:       engine.Idle,
		dealerSeat:  -1,
		currentSeat: -1,
	}
}

// nextSeatFrom mirrors Table.nextSeatFrom: search forward from (from+1),
// wrapping once, for the first seat matching pred.
func (r *replayState) nextSeatFrom(from int, pred func(*seatState) bool) (int, bool) {
	n := len(r.slots)
	if n == 0 {
		return -1, false
	}
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if pred(r.slots[seat]) {
			return seat, true
		}
	}
	return -1, false
}

func isActiveSeat(s *seatState) bool { return s != nil && s.status == engine.Active }
func canActSeat(s *seatState) bool {
	return s != nil && s.status == engine.Active && s.stack > 0
}

func (r *replayState) snapshot() engine.TableState {
	players := make([]engine.PlayerState, 0, len(r.slots))
	for _, s := range r.slots {
		if s == nil {
			continue
		}
		players = append(players, engine.PlayerState{
			ID:        s.id,
			Seat:      s.seat,
			Stack:     s.stack,
			Committed: s.committed,
			Status:    s.status,
			HoleCards: append([]poker.Card{}, s.holeCards...),
		})
	}
	var dealerSeat *int
	if r.dealerSeat >= 0 {
		d := r.dealerSeat
		dealerSeat = &d
	}
	var currentPlayerID *string
	if r.currentSeat >= 0 && r.slots[r.currentSeat] != nil {
		id := r.slots[r.currentSeat].id
		currentPlayerID = &id
	}
	return engine.TableState{
		Phase:           r.phase,
		HandID:          r.handID,
		DealerSeat:      dealerSeat,
		Players:         players,
		CommunityCards:  append([]poker.Card{}, r.communityCards...),
		Pots:            append([]engine.PotState{}, r.pots...),
		CurrentPlayerID: currentPlayerID,
	}
}

// Replay applies every event in order and returns the TableState observed
// immediately after each one (spec.md §8 property 10). It never consults a
// deck or random source: every card that appears in the log is read back
// from the event that dealt it. currentPlayerID is re-derived from the same
// seat-order rules the live engine applies (nextSeatFrom, setFirstToAct,
// advanceTurn) rather than logged directly, since no event payload records
// it explicitly.
func Replay(config engine.TableConfig, events []tablelog.HandEvent) ([]engine.TableState, error) {
	r := newReplayState(config.MaxPlayers)
	states := make([]engine.TableState, 0, len(events))

	for _, e := range events {
		switch e.Type {
		case tablelog.HandStarted:
			p := e.HandStartedPayload
			if p == nil {
				return nil, fmt.Errorf("history: HandStarted event missing payload")
			}
			r.handID = p.HandID
			r.dealerSeat = p.DealerSeat
			r.slots = make([]*seatState, config.MaxPlayers)
			for _, s := range p.Seats {
				r.slots[s.Seat] = &seatState{id: s.PlayerID, seat: s.Seat, stack: s.Stack, status: engine.Active}
			}
			r.communityCards = nil
			r.pots = nil
			r.currentSeat = -1

		case tablelog.BlindsPosted:
			p := e.BlindsPostedPayload
			if p == nil {
				return nil, fmt.Errorf("history: BlindsPosted event missing payload")
			}
			sbSeat, bbSeat, straddleSeat := -1, -1, -1
			for _, posting := range p.Postings {
				s := r.slots[posting.Seat]
				if s == nil {
					return nil, fmt.Errorf("history: BlindsPosted posting for vacant seat %d", posting.Seat)
				}
				s.stack = money.Sub(s.stack, posting.Amount)
				s.committed = money.Add(s.committed, posting.Amount)
				if s.stack == 0 {
					s.status = engine.AllIn
				}
				switch posting.Kind {
				case tablelog.PostingSmall:
					sbSeat = posting.Seat
				case tablelog.PostingBig:
					bbSeat = posting.Seat
				case tablelog.PostingStraddle:
					straddleSeat = posting.Seat
				}
			}
			playingCount := 0
			for _, s := range r.slots {
				if s != nil && s.status == engine.Active {
					playingCount++
				}
			}
			switch {
			case straddleSeat >= 0:
				// Spec §4.9 step 9: first to act is the next Active seat
				// after the straddle poster, not the poster itself.
				if seat, ok := r.nextSeatFrom(straddleSeat, isActiveSeat); ok {
					r.currentSeat = seat
				} else {
					r.currentSeat = -1
				}
			case playingCount == 2:
				r.currentSeat = sbSeat
			default:
				if seat, ok := r.nextSeatFrom(bbSeat, isActiveSeat); ok {
					r.currentSeat = seat
				} else {
					r.currentSeat = -1
				}
			}

		case tablelog.CardsDealt:
			p := e.CardsDealtPayload
			if p == nil {
				return nil, fmt.Errorf("history: CardsDealt event missing payload")
			}
			for id, pair := range p.HoleCards {
				for _, s := range r.slots {
					if s != nil && s.id == id {
						s.holeCards = []poker.Card{pair[0], pair[1]}
					}
				}
			}
			r.phase = engine.Preflop

		case tablelog.ActionTaken:
			p := e.ActionTakenPayload
			if p == nil {
				return nil, fmt.Errorf("history: ActionTaken event missing payload")
			}
			s := r.slots[p.Seat]
			if s == nil {
				return nil, fmt.Errorf("history: ActionTaken for vacant seat %d", p.Seat)
			}
			s.stack = p.StackAfter
			s.committed = p.CommittedAfter
			if p.Action == "Fold" {
				s.status = engine.Folded
			} else if s.stack == 0 {
				s.status = engine.AllIn
			}
			if seat, ok := r.nextSeatFrom(p.Seat, canActSeat); ok {
				r.currentSeat = seat
			} else {
				r.currentSeat = -1
			}

		case tablelog.StreetEnded:
			p := e.StreetEndedPayload
			if p == nil {
				return nil, fmt.Errorf("history: StreetEnded event missing payload")
			}
			r.communityCards = append(r.communityCards, p.NewCommunityCards...)
			r.pots = make([]engine.PotState, len(p.Pots))
			for i, ps := range p.Pots {
				r.pots[i] = engine.PotState{Total: ps.Total, Participants: append([]string{}, ps.Participants...)}
			}
			r.phase = parsePhase(p.NewPhase)
			for _, s := range r.slots {
				if s != nil {
					s.committed = 0
				}
			}
			if r.phase == engine.Showdown {
				r.currentSeat = -1
				break
			}
			canStillAct := 0
			for _, s := range r.slots {
				if canActSeat(s) {
					canStillAct++
				}
			}
			if canStillAct >= 2 {
				if seat, ok := r.nextSeatFrom(r.dealerSeat, isActiveSeat); ok {
					r.currentSeat = seat
				} else {
					r.currentSeat = -1
				}
			} else {
				r.currentSeat = -1
			}

		case tablelog.Showdown:
			// Informational only: hole cards and ranks were already set by
			// CardsDealt; nothing in TableState changes here.

		case tablelog.PotDistributed:
			p := e.PotDistributedPayload
			if p == nil {
				return nil, fmt.Errorf("history: PotDistributed event missing payload")
			}
			for _, dist := range p.Distributions {
				for _, payout := range dist.Payouts {
					for _, s := range r.slots {
						if s != nil && s.id == payout.PlayerID {
							s.stack = money.Add(s.stack, payout.Amount)
						}
					}
				}
			}

		case tablelog.HandEnded:
			r.phase = engine.Idle
			r.communityCards = nil
			r.pots = nil
			r.currentSeat = -1
			for _, s := range r.slots {
				if s == nil {
					continue
				}
				s.committed = 0
				s.holeCards = nil
				if s.status != engine.SittingOut {
					s.status = engine.Folded
				}
			}

		default:
			return nil, fmt.Errorf("history: unrecognized event type %v", e.Type)
		}

		states = append(states, r.snapshot())
	}

	return states, nil
}

func parsePhase(s string) engine.TablePhase {
	switch s {
	case "Preflop":
		return engine.Preflop
	case "Flop":
		return engine.Flop
	case "Turn":
		return engine.Turn
	case "River":
		return engine.River
	case "Showdown":
		return engine.Showdown
	default:
		return engine.Idle
	}
}
