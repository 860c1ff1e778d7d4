// =======================
// hashmod/strategy.go
// =======================

package hashmod

import (
	"fmt"
	"strings"
)

// Strategy is one concrete hash function together with the policy that
// reduces its output into a bucket of a fixed-length table.
type Strategy interface {
	// Title is the display name of the algorithm.
	Title() string

	// HashForComponents hashes c. Empty components are rejected with
	// ErrInvalidArgument.
	HashForComponents(c Components) (uint64, error)

	// BucketIndexForHash maps any hash value into [0, TableLength()).
	BucketIndexForHash(hash uint64) uint64

	// TableLength is the number of buckets.
	TableLength() uint64
}

// Algorithm enumerates the built-in strategies.
type Algorithm int

const (
	AlgorithmPolynomial Algorithm = iota
	AlgorithmIncreasing
)

var algorithmNames = map[Algorithm]string{
	AlgorithmPolynomial: "polynomial",
	AlgorithmIncreasing: "increasing",
}

// Algorithms returns every built-in algorithm in display order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmPolynomial, AlgorithmIncreasing}
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// ParseAlgorithm looks up an algorithm by its name.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range algorithmNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q: %w", name, ErrInvalidArgument)
}

// New builds the strategy for a with the given table length.
func New(a Algorithm, tableLength uint64) (Strategy, error) {
	if tableLength == 0 {
		return nil, fmt.Errorf("hash table length must be positive: %w", ErrInvalidArgument)
	}

	switch a {
	case AlgorithmPolynomial:
		return NewPolynomial(tableLength), nil
	case AlgorithmIncreasing:
		return NewIncreasing(tableLength), nil
	default:
		return nil, fmt.Errorf("unsupported %s: %w", a, ErrInvalidArgument)
	}
}

func checkComponents(c Components) error {
	if c.Len() == 0 {
		return fmt.Errorf("empty hash components: %w", ErrInvalidArgument)
	}
	return nil
}
