// =======================
// engine/summary.go
// =======================

package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats are the counters reported at the end of a run.
type Stats struct {
	Inputs         uint64
	TableLength    uint64
	DistinctHashes uint64

	// HashCollisions counts inputs whose hash was already seen.
	HashCollisions uint64

	// BucketCollisions counts inputs that landed in an occupied bucket.
	BucketCollisions uint64

	EmptyBuckets uint64
	MaxLoad      uint64
}

// LoadFactor is inputs per bucket.
func (s Stats) LoadFactor() float64 {
	if s.TableLength == 0 {
		return 0
	}
	return float64(s.Inputs) / float64(s.TableLength)
}

// Summary is the human readable report of a finished run.
type Summary struct {
	Stats
	Algorithm string
	Mechanism string
	Elapsed   time.Duration
	Err       error
}

func (s Summary) String() string {
	var b strings.Builder

	if s.Err != nil {
		fmt.Fprintf(&b, "%s run failed after %s inputs: %v",
			s.Algorithm, humanize.Comma(int64(s.Inputs)), s.Err)
		return b.String()
	}

	fmt.Fprintf(&b, "%s over %s %s inputs in %s\n",
		s.Algorithm, humanize.Comma(int64(s.Inputs)), s.Mechanism, s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "Buckets: %s (%s empty, load factor %.2f, max load %s)\n",
		humanize.Comma(int64(s.TableLength)), humanize.Comma(int64(s.EmptyBuckets)),
		s.LoadFactor(), humanize.Comma(int64(s.MaxLoad)))
	fmt.Fprintf(&b, "Distinct hashes: %s\n", humanize.Comma(int64(s.DistinctHashes)))
	fmt.Fprintf(&b, "Hash collisions: %s\n", humanize.Comma(int64(s.HashCollisions)))
	fmt.Fprintf(&b, "Bucket collisions: %s", humanize.Comma(int64(s.BucketCollisions)))
	return b.String()
}
