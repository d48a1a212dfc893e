package engine

import (
	"sort"

	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/tablelog"
)

// Contribution is one player's chips committed toward the pot this
// street, consolidated at street end or hand end.
type Contribution struct {
	PlayerID string
	Amount   money.Amount
}

// BuildPots layers contributions into main/side pots per spec.md §4.8:
// drop zeros, sort ascending, repeatedly peel off the smallest remaining
// amount across every remaining contributor as one pot layer. Index 0 is
// always the main pot (built from every surviving contributor); later
// indices are side pots in increasing stake order.
func BuildPots(contributions []Contribution) []PotState {
	type entry struct {
		id     string
		amount money.Amount
	}
	list := make([]entry, 0, len(contributions))
	for _, c := range contributions {
		if c.Amount > 0 {
			list = append(list, entry{c.PlayerID, c.Amount})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].amount < list[j].amount })

	var pots []PotState
	for len(list) > 0 {
		m := list[0].amount
		participants := make([]string, len(list))
		for i, e := range list {
			participants[i] = e.id
		}
		pots = append(pots, PotState{
			Total:        money.Mul(m, int64(len(list))),
			Participants: participants,
		})

		next := list[:0]
		for _, e := range list {
			e.amount = money.Sub(e.amount, m)
			if e.amount > 0 {
				next = append(next, e)
			}
		}
		list = next
	}
	return pots
}

// mergePots adds a newly-built layer of pots onto existing consolidated
// pots, merging by matching participant sets (so side pots accumulate
// across streets instead of resetting). Used at street-end consolidation.
func mergePots(existing []PotState, fresh []PotState) []PotState {
	if len(existing) == 0 {
		return fresh
	}
	out := make([]PotState, len(existing))
	copy(out, existing)
	for _, f := range fresh {
		merged := false
		for i := range out {
			if sameParticipants(out[i].Participants, f.Participants) {
				out[i].Total = money.Add(out[i].Total, f.Total)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, f)
		}
	}
	return out
}

func sameParticipants(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

// rakeFor computes the rake owed on the main pot only, per spec.md §4.8:
// floor(total * percentage) capped at Cap. Returns 0 if rake is unset.
func rakeFor(total money.Amount, rake *RakeConfig) money.Amount {
	if rake == nil {
		return 0
	}
	raw := money.Amount(float64(total) * rake.Percentage)
	return money.Min(raw, rake.Cap)
}

// distributePot pays out a single pot to its eligible winners (the given
// winners, treated as mutually tied, filtered to this pot's participants),
// applying rake (index 0 only) and giving the odd remainder to the
// lowest-seated eligible winner; the order of winnersBestFirst does not
// affect who receives it. seatOf resolves a player id to its seat for that
// choice. If no winner is eligible, the returned distribution carries the
// pot's total and rake but no payouts; distributeAndEnd then hands such a
// pot to forfeitedPotFallback.
func distributePot(pot PotState, winnersBestFirst []string, isMainPot bool, rakeCfg *RakeConfig, seatOf map[string]int) tablelog.PotDistribution {
	participants := make(map[string]bool, len(pot.Participants))
	for _, id := range pot.Participants {
		participants[id] = true
	}

	eligible := make([]string, 0, len(winnersBestFirst))
	for _, id := range winnersBestFirst {
		if participants[id] {
			eligible = append(eligible, id)
		}
	}

	rake := money.Zero
	if isMainPot {
		rake = rakeFor(pot.Total, rakeCfg)
	}

	if len(eligible) == 0 {
		return tablelog.PotDistribution{Total: pot.Total, Rake: rake}
	}

	sort.SliceStable(eligible, func(i, j int) bool { return seatOf[eligible[i]] < seatOf[eligible[j]] })

	payable := money.Sub(pot.Total, rake)
	per, remainder := money.DivMod(payable, int64(len(eligible)))

	payouts := make([]tablelog.Payout, len(eligible))
	for i, id := range eligible {
		amount := per
		if i == 0 {
			amount = money.Add(amount, remainder)
		}
		payouts[i] = tablelog.Payout{PlayerID: id, Amount: amount}
	}

	return tablelog.PotDistribution{Total: pot.Total, Rake: rake, Payouts: payouts}
}
