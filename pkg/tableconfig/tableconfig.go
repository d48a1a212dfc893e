// Package tableconfig loads an engine.TableConfig from an HCL file, in the
// block-tagged-struct style lox-pokerforbots' server config uses.
package tableconfig

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/holdem/tableengine/pkg/engine"
	"github.com/holdem/tableengine/pkg/money"
)

// File is the root of a table's HCL configuration file.
type File struct {
	Table tableBlock `hcl:"table,block"`
}

type tableBlock struct {
	Name       string  `hcl:"name,label"`
	MinPlayers int     `hcl:"min_players,optional"`
	MaxPlayers int     `hcl:"max_players"`
	SmallBlind int64   `hcl:"small_blind"`
	BigBlind   int64   `hcl:"big_blind"`
	Ante       *int64  `hcl:"ante,optional"`
	Straddle   *int64  `hcl:"straddle,optional"`
	RNGSeed    *int64  `hcl:"rng_seed,optional"`
	Rake       *rake   `hcl:"rake,block"`
	Rebuy      *rebuy  `hcl:"rebuy,block"`
}

type rake struct {
	Percentage float64 `hcl:"percentage"`
	Cap        int64   `hcl:"cap"`
}

type rebuy struct {
	MinRebuy        int64  `hcl:"min_rebuy,optional"`
	MaxRebuy        *int64 `hcl:"max_rebuy,optional"`
	AllowDuringHand bool   `hcl:"allow_during_hand,optional"`
}

// LoadFile parses path as HCL and returns the engine.TableConfig it
// describes. min_players defaults to 2 when omitted; every other required
// field must be set explicitly.
func LoadFile(path string) (engine.TableConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.TableConfig{}, fmt.Errorf("tableconfig: reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes HCL source (filename is used only for diagnostics).
func Parse(data []byte, filename string) (engine.TableConfig, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return engine.TableConfig{}, fmt.Errorf("tableconfig: parsing %s: %s", filename, diags.Error())
	}

	var file File
	diags = gohcl.DecodeBody(f.Body, nil, &file)
	if diags.HasErrors() {
		return engine.TableConfig{}, fmt.Errorf("tableconfig: decoding %s: %s", filename, diags.Error())
	}

	tb := file.Table
	cfg := engine.TableConfig{
		MinPlayers: tb.MinPlayers,
		MaxPlayers: tb.MaxPlayers,
		SmallBlind: money.Amount(tb.SmallBlind),
		BigBlind:   money.Amount(tb.BigBlind),
	}
	if cfg.MinPlayers == 0 {
		cfg.MinPlayers = 2
	}
	// Validate requires minRebuy >= bigBlind (spec.md §4.9); default to
	// exactly the floor rather than an arbitrary constant that would reject
	// any table whose big blind exceeds it.
	cfg.Rebuy.MinRebuy = cfg.BigBlind
	if tb.Ante != nil {
		a := money.Amount(*tb.Ante)
		cfg.Ante = &a
	}
	if tb.Straddle != nil {
		s := money.Amount(*tb.Straddle)
		cfg.Straddle = &s
	}
	if tb.RNGSeed != nil {
		s := uint32(*tb.RNGSeed)
		cfg.RNGSeed = &s
	}
	if tb.Rake != nil {
		cfg.Rake = &engine.RakeConfig{
			Percentage: tb.Rake.Percentage,
			Cap:        money.Amount(tb.Rake.Cap),
		}
	}
	if tb.Rebuy != nil {
		cfg.Rebuy.AllowDuringHand = tb.Rebuy.AllowDuringHand
		if tb.Rebuy.MinRebuy != 0 {
			cfg.Rebuy.MinRebuy = money.Amount(tb.Rebuy.MinRebuy)
		}
		if tb.Rebuy.MaxRebuy != nil {
			m := money.Amount(*tb.Rebuy.MaxRebuy)
			cfg.Rebuy.MaxRebuy = &m
		}
	}

	if err := cfg.Validate(); err != nil {
		return engine.TableConfig{}, fmt.Errorf("tableconfig: %s: %w", filename, err)
	}
	return cfg, nil
}
