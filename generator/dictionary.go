// =======================
// generator/dictionary.go
// =======================

package generator

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"

	"hashviz/hashmod"
)

//go:embed words.txt
var builtinWords string

// BuiltinPath is the name reported for the embedded word list.
const BuiltinPath = "<built-in>"

// MaxWordLength is the longest line a dictionary may contain, in bytes.
const MaxWordLength = 1 << 20

// Dictionary streams newline separated words. Blank lines are skipped. A
// line longer than MaxWordLength fails with ErrResourceUnavailable.
type Dictionary struct {
	path    string
	scanner *bufio.Scanner
	closer  io.Closer
	limit   uint64
	read    uint64
}

// OpenDictionary opens the word list at path. A leading ~ is expanded to
// the home directory. limit caps the number of words returned; zero means
// no cap.
func OpenDictionary(path string, limit uint64) (*Dictionary, error) {
	if path == "" {
		return nil, fmt.Errorf("no dictionary path configured: %w", ErrResourceUnavailable)
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand dictionary path %s: %v: %w", path, err, ErrResourceUnavailable)
	}

	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary %s: %v: %w", expanded, err, ErrResourceUnavailable)
	}

	return newDictionary(expanded, f, f, limit), nil
}

// BuiltinDictionary returns a Dictionary over the embedded word list.
func BuiltinDictionary(limit uint64) *Dictionary {
	return newDictionary(BuiltinPath, strings.NewReader(builtinWords), nil, limit)
}

func newDictionary(path string, r io.Reader, c io.Closer, limit uint64) *Dictionary {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), MaxWordLength)

	return &Dictionary{
		path:    path,
		scanner: scanner,
		closer:  c,
		limit:   limit,
	}
}

// Path is the location the words are read from.
func (d *Dictionary) Path() string { return d.path }

func (d *Dictionary) Next() (hashmod.Components, error) {
	if d.limit > 0 && d.read >= d.limit {
		return hashmod.Components{}, io.EOF
	}

	for d.scanner.Scan() {
		word := strings.TrimSpace(d.scanner.Text())
		if word == "" {
			continue
		}
		d.read++
		return hashmod.ComponentsFromString(word), nil
	}

	if err := d.scanner.Err(); err != nil {
		return hashmod.Components{}, fmt.Errorf("failed to read dictionary %s: %v: %w", d.path, err, ErrResourceUnavailable)
	}
	return hashmod.Components{}, io.EOF
}

func (d *Dictionary) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
