package hashmod

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchmarkStrategies(t *testing.T) {
	inputs := []Components{
		NewComponents(1, 2, 3),
		ComponentsFromString("apple"),
		ComponentsFromString("banana"),
		ComponentsFromNumber(42),
	}
	strategies := []Strategy{NewPolynomial(16), NewIncreasing(16)}

	results, err := BenchmarkStrategies(strategies, inputs, 3)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, r := range results {
		assert.Equal(t, strategies[i].Title(), r.Title)
		assert.Equal(t, 4, r.Inputs)
		assert.Equal(t, uint64(16), r.Buckets)
		assert.LessOrEqual(t, r.Used, uint64(4))
		assert.GreaterOrEqual(t, r.MaxLoad, uint64(1))
	}

	var buf bytes.Buffer
	PrintBenchmarkResults(&buf, results)
	assert.Contains(t, buf.String(), "Original Polynomial Hash")
	assert.Contains(t, buf.String(), "Increasing Polynomial Hash")
}

func TestBenchmarkStrategies_Errors(t *testing.T) {
	_, err := BenchmarkStrategies([]Strategy{NewPolynomial(4)}, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = BenchmarkStrategies([]Strategy{NewPolynomial(4)}, []Components{{}}, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
