// =======================
// command/algorithms.go
// =======================

package command

import (
	"fmt"
	"strings"

	"github.com/mitchellh/cli"

	"hashviz/hashmod"
)

type AlgorithmsCommand struct {
	Ui cli.Ui
}

func (c *AlgorithmsCommand) Help() string {
	helpText := `
Usage: hashviz algorithms

  Lists the hash algorithms that can be passed to "hashviz run -algorithm".
`
	return strings.TrimSpace(helpText)
}

func (c *AlgorithmsCommand) Synopsis() string {
	return "Lists the available hash algorithms"
}

func (c *AlgorithmsCommand) Run(_ []string) int {
	for _, a := range hashmod.Algorithms() {
		s, err := hashmod.New(a, 1)
		if err != nil {
			c.Ui.Error(err.Error())
			return 1
		}
		c.Ui.Output(fmt.Sprintf("%-12s %s", a, s.Title()))
	}
	return 0
}
