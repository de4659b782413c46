package valuegeneration

import (
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ValueSetValueGenerator generates function inputs and call arguments by drawing from a shared ValueSet of
// previously observed values, falling back to another ValueGenerator when the set holds nothing suitable for the
// requested type. The ValueSet is re-read on every draw, so values recorded by the execution harness become
// selectable immediately.
type ValueSetValueGenerator struct {
	// valueSet describes the set of observed values to draw from.
	valueSet *ValueSet

	// fallback describes the generator to use when the value set holds no suitable value.
	fallback ValueGenerator

	// randomProvider offers a source of random data for value set draws.
	randomProvider *rand.Rand
	// randomProviderLock is a lock to offer thread safety to the random number generator.
	randomProviderLock sync.Mutex
}

// NewValueSetValueGenerator creates a ValueSetValueGenerator which draws from the provided value set and defers to
// the provided fallback generator when the set cannot satisfy a request.
func NewValueSetValueGenerator(valueSet *ValueSet, fallback ValueGenerator) *ValueSetValueGenerator {
	return NewValueSetValueGeneratorWithRand(valueSet, fallback, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewValueSetValueGeneratorWithRand creates a ValueSetValueGenerator with the provided random provider.
func NewValueSetValueGeneratorWithRand(valueSet *ValueSet, fallback ValueGenerator, randomProvider *rand.Rand) *ValueSetValueGenerator {
	return &ValueSetValueGenerator{
		valueSet:       valueSet,
		fallback:       fallback,
		randomProvider: randomProvider,
	}
}

// GenerateAddress selects an address from the value set, or falls back to the underlying generator if the set holds
// no addresses.
func (g *ValueSetValueGenerator) GenerateAddress() common.Address {
	g.randomProviderLock.Lock()
	address, ok := g.valueSet.RandomAddress(g.randomProvider)
	g.randomProviderLock.Unlock()
	if !ok {
		return g.fallback.GenerateAddress()
	}
	return address
}

// GenerateArrayLength generates an array length using the fallback generator. The value set does not track array
// lengths.
func (g *ValueSetValueGenerator) GenerateArrayLength() int {
	return g.fallback.GenerateArrayLength()
}

// GenerateBool generates a bool using the fallback generator. The value set does not track booleans.
func (g *ValueSetValueGenerator) GenerateBool() bool {
	return g.fallback.GenerateBool()
}

// GenerateBytes selects a byte sequence from the value set, or falls back to the underlying generator if the set
// holds no byte sequences.
func (g *ValueSetValueGenerator) GenerateBytes() []byte {
	g.randomProviderLock.Lock()
	b, ok := g.valueSet.RandomBytes(g.randomProvider)
	g.randomProviderLock.Unlock()
	if !ok {
		return g.fallback.GenerateBytes()
	}
	return b
}

// GenerateFixedBytes selects a byte sequence from the value set and fits it to the requested length, or falls back
// to the underlying generator if the set holds no byte sequences.
func (g *ValueSetValueGenerator) GenerateFixedBytes(length int) []byte {
	g.randomProviderLock.Lock()
	b, ok := g.valueSet.RandomBytes(g.randomProvider)
	g.randomProviderLock.Unlock()
	if !ok {
		return g.fallback.GenerateFixedBytes(length)
	}

	// Truncate or zero-pad the observed sequence to the requested fixed length.
	fitted := make([]byte, length)
	copy(fitted, b)
	return fitted
}

// GenerateString selects a string from the value set, or falls back to the underlying generator if the set holds no
// strings.
func (g *ValueSetValueGenerator) GenerateString() string {
	g.randomProviderLock.Lock()
	s, ok := g.valueSet.RandomString(g.randomProvider)
	g.randomProviderLock.Unlock()
	if !ok {
		return g.fallback.GenerateString()
	}
	return s
}

// GenerateInteger selects an integer from the value set and fits it into the representable range of the requested
// type, or falls back to the underlying generator if the set holds no integers.
func (g *ValueSetValueGenerator) GenerateInteger(signed bool, bitLength int) *big.Int {
	g.randomProviderLock.Lock()
	value, ok := g.valueSet.RandomInteger(g.randomProvider)
	g.randomProviderLock.Unlock()
	if !ok {
		return g.fallback.GenerateInteger(signed, bitLength)
	}

	// Observed integers may originate from wider types, so reduce modulo 2^bitLength before interpreting the result
	// for the requested type.
	modulus := new(big.Int).Lsh(big.NewInt(1), uint(bitLength))
	fitted := new(big.Int).Mod(value, modulus)
	if signed {
		return wrapSignedInteger(fitted, bitLength)
	}
	return fitted
}
