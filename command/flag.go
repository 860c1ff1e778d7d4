// =======================
// command/flag.go
// =======================

package command

import "strings"

// stringFlag implements the flag.Value interface and allows multiple calls to
// the same variable to append a list.
type stringFlag []string

func (s *stringFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}
