// =======================
// hashmod/polynomial.go
// =======================

package hashmod

// Polynomial is the original homework algorithm: a plain polynomial
// accumulation of the digits, hash = Σ d_i * base^i, in wrapping 64-bit
// arithmetic. Buckets are assigned by hash mod table length.
type Polynomial struct {
	base        uint64
	tableLength uint64
}

// NewPolynomial returns the baseline strategy with base 31.
func NewPolynomial(tableLength uint64) *Polynomial {
	return &Polynomial{base: DefaultBase, tableLength: tableLength}
}

func (p *Polynomial) Title() string { return "Original Polynomial Hash" }

func (p *Polynomial) TableLength() uint64 { return p.tableLength }

func (p *Polynomial) HashForComponents(c Components) (uint64, error) {
	if err := checkComponents(c); err != nil {
		return 0, err
	}

	var hash uint64
	pow := uint64(1)
	for i := 0; i < c.Len(); i++ {
		hash += c.Digit(i) * pow
		pow *= p.base
	}
	return hash, nil
}

func (p *Polynomial) BucketIndexForHash(hash uint64) uint64 {
	return hash % p.tableLength
}
