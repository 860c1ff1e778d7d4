// =======================
// engine/table.go
// =======================

package engine

import (
	"fmt"
	"sync"

	"hashviz/hashmod"
)

// BucketTable accumulates hash results for one run. It is safe for
// concurrent use; each Add holds the lock only for the bookkeeping.
type BucketTable struct {
	mu      sync.Mutex
	counts  []uint64
	results []hashmod.Result
	hashes  map[uint64]struct{}
	total   uint64
}

// NewBucketTable returns an empty table with length buckets.
func NewBucketTable(length uint64) *BucketTable {
	return &BucketTable{
		counts: make([]uint64, length),
		hashes: make(map[uint64]struct{}),
	}
}

// Add records r and returns the number of results recorded so far.
func (t *BucketTable) Add(r hashmod.Result) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r.Bucket >= uint64(len(t.counts)) {
		return t.total, fmt.Errorf("bucket %d outside table of length %d: %w",
			r.Bucket, len(t.counts), hashmod.ErrInvalidArgument)
	}

	t.counts[r.Bucket]++
	t.results = append(t.results, r)
	t.hashes[r.Hash] = struct{}{}
	t.total++
	return t.total, nil
}

// Len is the number of buckets.
func (t *BucketTable) Len() uint64 { return uint64(len(t.counts)) }

// Total is the number of results recorded.
func (t *BucketTable) Total() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Counts returns a copy of the per-bucket counts.
func (t *BucketTable) Counts() []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]uint64, len(t.counts))
	copy(out, t.counts)
	return out
}

// Results returns a copy of the recorded results in insertion order.
func (t *BucketTable) Results() []hashmod.Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]hashmod.Result, len(t.results))
	copy(out, t.results)
	return out
}

// Stats describes the distribution recorded so far.
func (t *BucketTable) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Inputs:         t.total,
		TableLength:    uint64(len(t.counts)),
		DistinctHashes: uint64(len(t.hashes)),
	}
	s.HashCollisions = s.Inputs - s.DistinctHashes

	for _, n := range t.counts {
		if n == 0 {
			s.EmptyBuckets++
			continue
		}
		s.BucketCollisions += n - 1
		s.MaxLoad = max(s.MaxLoad, n)
	}
	return s
}
