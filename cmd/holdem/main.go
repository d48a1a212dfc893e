// Command holdem drives a single hand of the table engine from a scripted
// action list, for smoke-testing a table configuration or replaying a
// scripted scenario outside of a test binary. It seats players, plays a
// scripted JSON action list to completion, and writes the resulting hand
// history to HandHistoryDir.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/holdem/tableengine/pkg/engine"
	"github.com/holdem/tableengine/pkg/history"
	"github.com/holdem/tableengine/pkg/money"
	"github.com/holdem/tableengine/pkg/rng"
	"github.com/holdem/tableengine/pkg/tableconfig"
)

var CLI struct {
	Config         string `short:"c" help:"Path to the table's HCL configuration file" required:""`
	Script         string `short:"s" help:"Path to a scripted JSON action list" required:""`
	HandHistoryDir string `help:"Directory to write the completed hand's history JSON to" default:"handhistory"`
	LogLevel       string `help:"Set the log level" enum:"debug,info,warn,error" default:"info"`
}

// scriptedPlayer is one seat's starting stack in a scripted session.
type scriptedPlayer struct {
	ID     string       `json:"id"`
	BuyIn  money.Amount `json:"buyIn"`
}

// scriptedAction is one action to apply, in order.
type scriptedAction struct {
	PlayerID string            `json:"playerId"`
	Type     engine.ActionType `json:"-"`
	TypeName string            `json:"type"`
	Amount   money.Amount      `json:"amount,omitempty"`
}

type script struct {
	Players []scriptedPlayer `json:"players"`
	Actions []scriptedAction `json:"actions"`
}

var actionNames = map[string]engine.ActionType{
	"fold":  engine.ActionFold,
	"check": engine.ActionCheck,
	"call":  engine.ActionCall,
	"bet":   engine.ActionBet,
	"raise": engine.ActionRaise,
	"allin": engine.ActionAllIn,
}

func main() {
	kong.Parse(&CLI)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "holdem",
		Level:           parseLevel(CLI.LogLevel),
	})

	if err := run(logger); err != nil {
		logger.Fatal("hand failed", "error", err)
	}
}

func parseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

func run(logger *log.Logger) error {
	cfg, err := tableconfig.LoadFile(CLI.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sc, err := loadScript(CLI.Script)
	if err != nil {
		return fmt.Errorf("loading script: %w", err)
	}

	var source rng.Source
	if cfg.RNGSeed != nil {
		source = rng.NewSeeded(*cfg.RNGSeed)
	} else {
		source = rng.NewSeeded(uint32(time.Now().UnixNano()))
	}

	tb, err := engine.NewTable(cfg, source, quartz.NewReal())
	if err != nil {
		return fmt.Errorf("constructing table: %w", err)
	}

	for _, p := range sc.Players {
		if _, err := tb.SeatPlayer(p.ID, p.BuyIn); err != nil {
			return fmt.Errorf("seating %s: %w", p.ID, err)
		}
	}

	startTime := time.Now()
	st, err := tb.StartHand()
	if err != nil {
		return fmt.Errorf("starting hand: %w", err)
	}
	logger.Info("hand started", "handId", st.HandID, "dealerSeat", *st.DealerSeat)

	for _, a := range sc.Actions {
		if st.Phase == engine.Idle {
			break
		}
		st, err = tb.ApplyAction(a.PlayerID, engine.Action{Type: a.Type, Amount: a.Amount, HasAmount: a.Amount != 0})
		if err != nil {
			return fmt.Errorf("applying %s's %s: %w", a.PlayerID, a.Type, err)
		}
		logger.Debug("action applied", "player", a.PlayerID, "type", a.Type, "phase", st.Phase)
	}

	if st.Phase != engine.Idle {
		return fmt.Errorf("script ended with the hand still in phase %s", st.Phase)
	}

	logEvents, _ := tb.GetLastHandHistory()
	endTime := time.Now()
	rec := history.FromLog(st.HandID, cfg, logEvents, startTime, &endTime)

	if err := os.MkdirAll(CLI.HandHistoryDir, 0o755); err != nil {
		return fmt.Errorf("creating hand history dir: %w", err)
	}
	data, err := history.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling hand history: %w", err)
	}
	path := fmt.Sprintf("%s/hand-%d.json", CLI.HandHistoryDir, st.HandID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing hand history: %w", err)
	}

	logger.Info("hand complete", "handId", st.HandID, "historyFile", path)
	for _, p := range st.Players {
		logger.Info("final stack", "player", p.ID, "stack", p.Stack)
	}
	return nil
}

func loadScript(path string) (script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return script{}, err
	}
	var raw struct {
		Players []scriptedPlayer `json:"players"`
		Actions []struct {
			PlayerID string       `json:"playerId"`
			Type     string       `json:"type"`
			Amount   money.Amount `json:"amount,omitempty"`
		} `json:"actions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return script{}, err
	}

	sc := script{Players: raw.Players}
	for _, a := range raw.Actions {
		actionType, ok := actionNames[a.Type]
		if !ok {
			return script{}, fmt.Errorf("unrecognized action type %q for player %q", a.Type, a.PlayerID)
		}
		sc.Actions = append(sc.Actions, scriptedAction{PlayerID: a.PlayerID, Type: actionType, TypeName: a.Type, Amount: a.Amount})
	}
	return sc, nil
}
