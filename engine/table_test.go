package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hashviz/hashmod"
)

func TestBucketTable(t *testing.T) {
	table := NewBucketTable(4)

	adds := []hashmod.Result{
		{Hash: 10, Bucket: 2},
		{Hash: 10, Bucket: 2},
		{Hash: 11, Bucket: 3},
		{Hash: 12, Bucket: 2},
	}
	for i, r := range adds {
		n, err := table.Add(r)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), n)
	}

	_, err := table.Add(hashmod.Result{Bucket: 4})
	assert.ErrorIs(t, err, hashmod.ErrInvalidArgument)

	assert.Equal(t, uint64(4), table.Len())
	assert.Equal(t, uint64(4), table.Total())
	assert.Equal(t, []uint64{0, 0, 3, 1}, table.Counts())
	assert.Equal(t, adds, table.Results())

	stats := table.Stats()
	assert.Equal(t, Stats{
		Inputs:           4,
		TableLength:      4,
		DistinctHashes:   3,
		HashCollisions:   1,
		BucketCollisions: 2,
		EmptyBuckets:     2,
		MaxLoad:          3,
	}, stats)
	assert.Equal(t, 1.0, stats.LoadFactor())
}

func TestBucketTable_Concurrent(t *testing.T) {
	table := NewBucketTable(10)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_, err := table.Add(hashmod.Result{Hash: uint64(w*1000 + i), Bucket: uint64(i % 10)})
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	var sum uint64
	for _, n := range table.Counts() {
		sum += n
	}
	assert.Equal(t, table.Total(), sum)
	assert.Equal(t, uint64(8000), sum)
	assert.Equal(t, uint64(8000), table.Stats().DistinctHashes)
}

func TestSummary_String(t *testing.T) {
	s := Summary{
		Stats: Stats{
			Inputs:           12346,
			TableLength:      1000,
			DistinctHashes:   12000,
			HashCollisions:   345,
			BucketCollisions: 11345,
			EmptyBuckets:     0,
			MaxLoad:          31,
		},
		Algorithm: "Original Polynomial Hash",
		Mechanism: "dictionary",
		Elapsed:   1500 * time.Millisecond,
	}

	expected := "Original Polynomial Hash over 12,346 dictionary inputs in 1.5s\n" +
		"Buckets: 1,000 (0 empty, load factor 12.35, max load 31)\n" +
		"Distinct hashes: 12,000\n" +
		"Hash collisions: 345\n" +
		"Bucket collisions: 11,345"
	assert.Equal(t, expected, s.String())

	assert.Equal(t, 0.0, Stats{}.LoadFactor())
}
