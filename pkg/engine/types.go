package engine

import (
	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/poker"
)

// TablePhase is one stage of a hand's lifecycle.
type TablePhase int

const (
	Idle TablePhase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

var tablePhaseNames = [...]string{"Idle", "Preflop", "Flop", "Turn", "River", "Showdown"}

func (p TablePhase) String() string {
	if p < 0 || int(p) >= len(tablePhaseNames) {
		return "Unknown"
	}
	return tablePhaseNames[p]
}

// PlayerStatus is a player's standing within the current hand.
type PlayerStatus int

const (
	Active PlayerStatus = iota
	Folded
	AllIn
	SittingOut
)

var playerStatusNames = [...]string{"Active", "Folded", "AllIn", "SittingOut"}

func (s PlayerStatus) String() string {
	if s < 0 || int(s) >= len(playerStatusNames) {
		return "Unknown"
	}
	return playerStatusNames[s]
}

// ActionType is one of the six player action kinds.
type ActionType int

const (
	ActionFold ActionType = iota
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionAllIn
)

var actionTypeNames = [...]string{"Fold", "Check", "Call", "Bet", "Raise", "AllIn"}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionTypeNames) {
		return "Unknown"
	}
	return actionTypeNames[a]
}

// Action is a player's proposed move. Amount's meaning depends on Type:
// for Call it is the (optional) expected call amount; for Bet it is the
// absolute bet; for Raise it is the raise increment above the call; for
// AllIn it is the (optional) expected stack. Fold and Check ignore Amount.
type Action struct {
	Type      ActionType
	Amount    money.Amount
	HasAmount bool
}

// PlayerState is one seated player's public state.
type PlayerState struct {
	ID        string
	Seat      int
	Stack     money.Amount
	Committed money.Amount
	Status    PlayerStatus
	HoleCards []poker.Card
}

// PotState is one pot (main or side) and the players eligible to win it.
type PotState struct {
	Total        money.Amount
	Participants []string
}

// RakeConfig is the rake taken from the main pot at distribution.
type RakeConfig struct {
	Percentage float64      `json:"percentage"`
	Cap        money.Amount `json:"cap"`
}

// RebuyOptions governs rebuyPlayer.
type RebuyOptions struct {
	MinRebuy        money.Amount  `json:"minRebuy"`
	MaxRebuy        *money.Amount `json:"maxRebuy,omitempty"`
	AllowDuringHand bool          `json:"allowDuringHand"`
}

// TableConfig is a table's fixed configuration, validated at construction.
type TableConfig struct {
	MinPlayers int           `json:"minPlayers"`
	MaxPlayers int           `json:"maxPlayers"`
	SmallBlind money.Amount  `json:"smallBlind"`
	BigBlind   money.Amount  `json:"bigBlind"`
	Ante       *money.Amount `json:"ante,omitempty"`
	Straddle   *money.Amount `json:"straddle,omitempty"`
	Rake       *RakeConfig   `json:"rake,omitempty"`
	RNGSeed    *uint32       `json:"rngSeed,omitempty"`
	Rebuy      RebuyOptions  `json:"rebuy"`
}

// Validate rejects a config that violates spec.md §3's constraints.
func (c TableConfig) Validate() error {
	if c.MinPlayers < 2 {
		return newErr(ErrInvalidState, "minPlayers must be >= 2, got %d", c.MinPlayers)
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > 23 {
		return newErr(ErrInvalidState, "maxPlayers must be in [2, 23], got %d", c.MaxPlayers)
	}
	if c.MinPlayers > c.MaxPlayers {
		return newErr(ErrInvalidState, "minPlayers (%d) exceeds maxPlayers (%d)", c.MinPlayers, c.MaxPlayers)
	}
	if c.SmallBlind <= 0 {
		return newErr(ErrInvalidState, "smallBlind must be > 0, got %s", c.SmallBlind)
	}
	if c.BigBlind <= c.SmallBlind {
		return newErr(ErrInvalidState, "bigBlind (%s) must exceed smallBlind (%s)", c.BigBlind, c.SmallBlind)
	}
	if c.Ante != nil && *c.Ante <= 0 {
		return newErr(ErrInvalidState, "ante must be > 0 if set, got %s", *c.Ante)
	}
	if c.Straddle != nil && *c.Straddle <= 0 {
		return newErr(ErrInvalidState, "straddle must be > 0 if set, got %s", *c.Straddle)
	}
	if c.Rake != nil {
		if c.Rake.Percentage < 0 || c.Rake.Percentage > 1 {
			return newErr(ErrInvalidState, "rake percentage must be in [0, 1], got %f", c.Rake.Percentage)
		}
		if c.Rake.Cap <= 0 {
			return newErr(ErrInvalidState, "rake cap must be > 0, got %s", c.Rake.Cap)
		}
	}
	if c.Rebuy.MinRebuy < 0 {
		return newErr(ErrInvalidState, "rebuy minRebuy must be >= 0, got %s", c.Rebuy.MinRebuy)
	}
	// Spec §4.9: rebuy is governed by RebuyOptions{minRebuy >= bigBlind, ...}.
	// A zero MinRebuy is the unset default and is not held to that floor.
	if c.Rebuy.MinRebuy != 0 && c.Rebuy.MinRebuy < c.BigBlind {
		return newErr(ErrInvalidState, "rebuy minRebuy (%s) must be >= bigBlind (%s)", c.Rebuy.MinRebuy, c.BigBlind)
	}
	if c.Rebuy.MaxRebuy != nil && *c.Rebuy.MaxRebuy < c.Rebuy.MinRebuy {
		return newErr(ErrInvalidState, "rebuy maxRebuy (%s) below minRebuy (%s)", *c.Rebuy.MaxRebuy, c.Rebuy.MinRebuy)
	}
	return nil
}

// TableState is an independent snapshot of the table, safe for the
// caller to retain or mutate without affecting engine-internal storage.
type TableState struct {
	Phase           TablePhase
	HandID          int
	DealerSeat      *int
	Players         []PlayerState
	CommunityCards  []poker.Card
	Pots            []PotState
	CurrentPlayerID *string
}
