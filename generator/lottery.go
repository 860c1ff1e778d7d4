// =======================
// generator/lottery.go
// =======================

package generator

import (
	"fmt"
	"io"
	"math/rand/v2"

	"hashviz/hashmod"
)

// Lottery draws tickets uniformly from [0, max) and hands them out as their
// decimal digits.
type Lottery struct {
	rng       *rand.Rand
	max       uint64
	remaining uint64
	batchSize uint64
	batch     []uint64
}

// NewLottery returns a sampler for total tickets, drawn batchSize at a time.
// The same seed always yields the same tickets.
func NewLottery(max, total, batchSize, seed uint64) (*Lottery, error) {
	if max == 0 {
		return nil, fmt.Errorf("ticket cell max must be positive: %w", hashmod.ErrInvalidArgument)
	}
	if batchSize == 0 {
		batchSize = 1
	}

	return &Lottery{
		rng:       rand.New(rand.NewPCG(seed, seed^0x5851F42D4C957F2D)),
		max:       max,
		remaining: total,
		batchSize: batchSize,
		batch:     make([]uint64, 0, batchSize),
	}, nil
}

func (l *Lottery) Next() (hashmod.Components, error) {
	if len(l.batch) == 0 {
		if l.remaining == 0 {
			return hashmod.Components{}, io.EOF
		}
		l.fill()
	}

	ticket := l.batch[0]
	l.batch = l.batch[1:]
	return hashmod.ComponentsFromNumber(ticket), nil
}

func (l *Lottery) fill() {
	n := min(l.batchSize, l.remaining)
	l.batch = l.batch[:0]
	for i := uint64(0); i < n; i++ {
		l.batch = append(l.batch, l.rng.Uint64N(l.max))
	}
	l.remaining -= n
}

func (l *Lottery) Close() error { return nil }
