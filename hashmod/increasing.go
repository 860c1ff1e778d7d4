// =======================
// hashmod/increasing.go
// =======================

package hashmod

// Increasing is the proposed replacement for Polynomial. The exponent
// applied to each digit grows triangularly with its position,
//
//	hash = Σ d_i * base^(i(i+1)/2)
//
// so later characters are spread much further apart than in Polynomial.
// The multiplication wraps at 64 bits.
//
// Buckets use Fibonacci hashing: the hash is multiplied by 2^64/φ and the
// upper half of the product is reduced mod table length. This keeps runs of
// neighbouring hashes from landing in neighbouring buckets.
type Increasing struct {
	base        uint64
	tableLength uint64
}

// NewIncreasing returns the increasing-exponent strategy with base 31.
func NewIncreasing(tableLength uint64) *Increasing {
	return &Increasing{base: DefaultBase, tableLength: tableLength}
}

func (s *Increasing) Title() string { return "Increasing Polynomial Hash" }

func (s *Increasing) TableLength() uint64 { return s.tableLength }

func (s *Increasing) HashForComponents(c Components) (uint64, error) {
	if err := checkComponents(c); err != nil {
		return 0, err
	}

	var hash uint64
	pow, step := uint64(1), uint64(1)
	for i := 0; i < c.Len(); i++ {
		if i > 0 {
			step *= s.base
			pow *= step
		}
		hash += c.Digit(i) * pow
	}
	return hash, nil
}

func (s *Increasing) BucketIndexForHash(hash uint64) uint64 {
	return ((hash * fibonacciMultiplier) >> 32) % s.tableLength
}
