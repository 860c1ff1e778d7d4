// =======================
// generator/generator.go
// =======================

// Package generator produces the synthetic inputs that are fed through a
// hash strategy.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"hashviz/hashmod"
)

// ErrResourceUnavailable is returned when the backing word list cannot be
// opened or read.
var ErrResourceUnavailable = errors.New("resource unavailable")

// ErrNoMechanism is returned when no generation mechanism was selected.
var ErrNoMechanism = errors.New("no generation mechanism selected")

// Generator yields a finite sequence of inputs. Next returns io.EOF once the
// sequence is exhausted. Generators are not safe for concurrent use.
type Generator interface {
	Next() (hashmod.Components, error)
	Close() error
}

// Mechanism selects how inputs are produced.
type Mechanism int

const (
	MechanismNone Mechanism = iota
	MechanismLottery
	MechanismDictionary
)

func (m Mechanism) String() string {
	switch m {
	case MechanismLottery:
		return "lottery"
	case MechanismDictionary:
		return "dictionary"
	default:
		return "none"
	}
}

// ParseMechanism converts a configured name into a Mechanism. An empty name
// is MechanismNone.
func ParseMechanism(name string) (Mechanism, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lottery":
		return MechanismLottery, nil
	case "dictionary":
		return MechanismDictionary, nil
	case "", "none":
		return MechanismNone, nil
	default:
		return MechanismNone, fmt.Errorf("unknown generation mechanism %q", name)
	}
}

// Config holds the values needed to build a Generator for one run.
type Config struct {
	Mechanism Mechanism

	// NumberOfInputs is the number of tickets to draw. For dictionaries it
	// caps the number of words read; zero reads the whole list.
	NumberOfInputs uint64

	// BatchSize is the number of tickets drawn at a time.
	BatchSize uint64

	// TicketCellMax is the exclusive upper bound of a ticket.
	TicketCellMax uint64

	// Seed drives the ticket sampler. Zero picks a fresh random seed.
	Seed uint64

	DictionaryPath   string
	CustomDictionary bool
}

// New builds a fresh generator for cfg.
func New(cfg Config) (Generator, error) {
	switch cfg.Mechanism {
	case MechanismLottery:
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		return NewLottery(cfg.TicketCellMax, cfg.NumberOfInputs, cfg.BatchSize, seed)
	case MechanismDictionary:
		if cfg.CustomDictionary {
			return OpenDictionary(cfg.DictionaryPath, cfg.NumberOfInputs)
		}
		return BuiltinDictionary(cfg.NumberOfInputs), nil
	default:
		return nil, ErrNoMechanism
	}
}
