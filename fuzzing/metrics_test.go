package fuzzing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestGenerationMetricsRatios will test that the dictionary ratios reflect the recorded draws exactly.
func TestGenerationMetricsRatios(t *testing.T) {
	metrics := NewGenerationMetrics()

	// Verify fresh metrics report zero ratios rather than dividing by zero.
	assert.True(t, metrics.DictionarySenderRatio().IsZero())
	assert.True(t, metrics.DictionaryCalldataRatio().IsZero())
	assert.Zero(t, metrics.CallsGenerated())

	// Record a 3/1 split of dictionary to random sender draws and a 1/3 split of calldata strategies.
	for i := 0; i < 3; i++ {
		metrics.senderDrawn(true)
		metrics.calldataSynthesized(false)
	}
	metrics.senderDrawn(false)
	metrics.calldataSynthesized(true)
	metrics.callGenerated()

	// Verify the ratios are exact decimals.
	assert.True(t, metrics.DictionarySenderRatio().Equal(decimal.NewFromFloat(0.75)))
	assert.True(t, metrics.DictionaryCalldataRatio().Equal(decimal.NewFromFloat(0.25)))
	assert.Equal(t, uint64(1), metrics.CallsGenerated())
}
