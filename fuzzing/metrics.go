package fuzzing

import (
	"sync"

	"github.com/shopspring/decimal"
)

// GenerationMetrics tracks counters describing how generated values were sourced over the course of a run. The
// dictionary ratios make the effect of the configured dictionary weight observable without inspecting individual
// calls.
type GenerationMetrics struct {
	// callsGenerated describes the total number of calls generated.
	callsGenerated uint64

	// randomSenderDraws and dictionarySenderDraws describe how many sender draws were sourced uniformly at random
	// versus from the value dictionary.
	randomSenderDraws     uint64
	dictionarySenderDraws uint64

	// dictionaryCalldataDraws and valueSetCalldataDraws describe how many calldata syntheses used the calldata
	// dictionary strategy versus the value set strategy.
	dictionaryCalldataDraws uint64
	valueSetCalldataDraws   uint64

	// lock guards all counters for concurrent access.
	lock sync.Mutex
}

// NewGenerationMetrics creates a zeroed GenerationMetrics.
func NewGenerationMetrics() *GenerationMetrics {
	return &GenerationMetrics{}
}

// callGenerated records a successfully generated call.
func (m *GenerationMetrics) callGenerated() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.callsGenerated++
}

// senderDrawn records a sender draw, sourced from the dictionary or uniformly at random.
func (m *GenerationMetrics) senderDrawn(fromDictionary bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if fromDictionary {
		m.dictionarySenderDraws++
	} else {
		m.randomSenderDraws++
	}
}

// calldataSynthesized records a calldata synthesis, sourced from the calldata dictionary strategy or the value set
// strategy.
func (m *GenerationMetrics) calldataSynthesized(fromDictionary bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if fromDictionary {
		m.dictionaryCalldataDraws++
	} else {
		m.valueSetCalldataDraws++
	}
}

// CallsGenerated returns the total number of calls generated.
func (m *GenerationMetrics) CallsGenerated() uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.callsGenerated
}

// DictionarySenderRatio returns the fraction of sender draws sourced from the value dictionary, as an exact decimal.
// Returns zero if no senders were drawn from the weighted mix yet.
func (m *GenerationMetrics) DictionarySenderRatio() decimal.Decimal {
	m.lock.Lock()
	defer m.lock.Unlock()
	total := m.randomSenderDraws + m.dictionarySenderDraws
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m.dictionarySenderDraws)).Div(decimal.NewFromInt(int64(total)))
}

// DictionaryCalldataRatio returns the fraction of calldata syntheses which used the calldata dictionary strategy,
// as an exact decimal. Returns zero if no calldata was synthesized yet.
func (m *GenerationMetrics) DictionaryCalldataRatio() decimal.Decimal {
	m.lock.Lock()
	defer m.lock.Unlock()
	total := m.dictionaryCalldataDraws + m.valueSetCalldataDraws
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(m.dictionaryCalldataDraws)).Div(decimal.NewFromInt(int64(total)))
}
