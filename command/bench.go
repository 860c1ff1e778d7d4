// =======================
// command/bench.go
// =======================

package command

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/cli"

	"hashviz/generator"
	"hashviz/hashmod"
)

type BenchCommand struct {
	Ui cli.Ui
}

func (c *BenchCommand) Help() string {
	helpText := `
Usage: hashviz bench [options]

  Hashes the built-in dictionary and a set of lottery tickets with every
  algorithm and reports throughput and bucket spread.

Options:

  -iterations=<n>
    How many times each input set is hashed. The default is 5.

  -tickets=<n>
    Number of lottery tickets added to the dictionary words. The default
    is 10000.

  -table-length=<n>
    Hash table length used for the bucket spread. The default is 1000.

  -seed=<n>
    Seed of the ticket sampler. The default is 0.
`
	return strings.TrimSpace(helpText)
}

func (c *BenchCommand) Synopsis() string {
	return "Benchmarks the hash algorithms"
}

func (c *BenchCommand) Run(args []string) int {
	var (
		iterations  int
		tickets     uint64
		tableLength uint64
		seed        uint64
	)

	flags := flag.NewFlagSet("bench", flag.ContinueOnError)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.IntVar(&iterations, "iterations", 5, "")
	flags.Uint64Var(&tickets, "tickets", 10000, "")
	flags.Uint64Var(&tableLength, "table-length", 1000, "")
	flags.Uint64Var(&seed, "seed", 0, "")

	if err := flags.Parse(args); err != nil {
		return 1
	}

	inputs, err := benchInputs(tickets, seed)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to build inputs: %v", err))
		return 1
	}

	strategies := make([]hashmod.Strategy, 0, len(hashmod.Algorithms()))
	for _, a := range hashmod.Algorithms() {
		s, err := hashmod.New(a, tableLength)
		if err != nil {
			c.Ui.Error(fmt.Sprintf("Failed to build %s: %v", a, err))
			return 1
		}
		strategies = append(strategies, s)
	}

	results, err := hashmod.BenchmarkStrategies(strategies, inputs, iterations)
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Benchmark failed: %v", err))
		return 1
	}

	var buf bytes.Buffer
	hashmod.PrintBenchmarkResults(&buf, results)
	c.Ui.Output(strings.TrimRight(buf.String(), "\n"))
	return 0
}

func benchInputs(tickets, seed uint64) ([]hashmod.Components, error) {
	var inputs []hashmod.Components

	sources := []generator.Generator{generator.BuiltinDictionary(0)}
	if tickets > 0 {
		lottery, err := generator.NewLottery(1000000, tickets, 1000, seed)
		if err != nil {
			return nil, err
		}
		sources = append(sources, lottery)
	}

	for _, g := range sources {
		for {
			c, err := g.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				g.Close()
				return nil, err
			}
			inputs = append(inputs, c)
		}
		if err := g.Close(); err != nil {
			return nil, err
		}
	}
	return inputs, nil
}
