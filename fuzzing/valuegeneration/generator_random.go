package valuegeneration

import (
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RandomValueGenerator generates transaction fields and call arguments using a purely random provider. As such it
// may not be effective at satisfying tightly-bound pre-conditions on its own; it serves as the uniform half of the
// dictionary/uniform generation mix, and as the fallback for dictionary-biased generators.
type RandomValueGenerator struct {
	// randomProvider offers a source of random data.
	randomProvider *rand.Rand
	// randomProviderLock is a lock to offer thread safety to the random number generator.
	randomProviderLock sync.Mutex
}

// maxRandomArrayLength describes the upper bound for dynamic array lengths produced by the random generator.
// TODO: Make this configurable through a generator config.
const maxRandomArrayLength = 100

// maxRandomBytesLength describes the upper bound for dynamic byte array lengths produced by the random generator.
const maxRandomBytesLength = 100

// integerBoundaryBias describes the denominator for the chance of an integer draw returning a type boundary value
// instead of a uniformly random one.
const integerBoundaryBias = 8

// NewRandomValueGenerator creates a new RandomValueGenerator with a new random provider.
func NewRandomValueGenerator() *RandomValueGenerator {
	return NewRandomValueGeneratorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewRandomValueGeneratorWithRand creates a new RandomValueGenerator with the provided random provider.
func NewRandomValueGeneratorWithRand(randomProvider *rand.Rand) *RandomValueGenerator {
	return &RandomValueGenerator{
		randomProvider: randomProvider,
	}
}

// GenerateAddress generates a random address to use when populating inputs.
func (g *RandomValueGenerator) GenerateAddress() common.Address {
	// Generate random bytes of the address length, then convert it to an address.
	addressBytes := make([]byte, common.AddressLength)
	g.randomProviderLock.Lock()
	g.randomProvider.Read(addressBytes)
	g.randomProviderLock.Unlock()
	return common.BytesToAddress(addressBytes)
}

// GenerateArrayLength generates a random array length to use when populating inputs.
func (g *RandomValueGenerator) GenerateArrayLength() int {
	g.randomProviderLock.Lock()
	defer g.randomProviderLock.Unlock()
	return g.randomProvider.Intn(maxRandomArrayLength)
}

// GenerateBool generates a random bool to use when populating inputs.
func (g *RandomValueGenerator) GenerateBool() bool {
	g.randomProviderLock.Lock()
	defer g.randomProviderLock.Unlock()
	return g.randomProvider.Uint32()%2 == 0
}

// GenerateBytes generates a random dynamic-sized byte array to use when populating inputs.
func (g *RandomValueGenerator) GenerateBytes() []byte {
	g.randomProviderLock.Lock()
	defer g.randomProviderLock.Unlock()
	b := make([]byte, g.randomProvider.Intn(maxRandomBytesLength))
	g.randomProvider.Read(b)
	return b
}

// GenerateFixedBytes generates a random fixed-sized byte array to use when populating inputs.
func (g *RandomValueGenerator) GenerateFixedBytes(length int) []byte {
	g.randomProviderLock.Lock()
	defer g.randomProviderLock.Unlock()
	b := make([]byte, length)
	g.randomProvider.Read(b)
	return b
}

// GenerateString generates a random dynamic-sized string to use when populating inputs.
func (g *RandomValueGenerator) GenerateString() string {
	return string(g.GenerateBytes())
}

// GenerateInteger generates a random integer of the given signedness and bit length to use when populating inputs.
// The result is always within the representable range of the requested type. Draws occasionally land on the type's
// boundary values, as behavior around type bounds is a common source of faults.
func (g *RandomValueGenerator) GenerateInteger(signed bool, bitLength int) *big.Int {
	g.randomProviderLock.Lock()
	defer g.randomProviderLock.Unlock()

	// Occasionally return a boundary value for the requested type.
	if g.randomProvider.Intn(integerBoundaryBias) == 0 {
		return integerBoundary(signed, bitLength, g.randomProvider.Uint32()%2 == 0)
	}

	// Fill a byte array of the appropriate size with random bytes and interpret it as an unsigned integer.
	b := make([]byte, bitLength/8)
	g.randomProvider.Read(b)
	value := new(big.Int).SetBytes(b)

	// For signed types, reinterpret the raw bits as two's complement to cover the negative half of the range.
	if signed {
		return wrapSignedInteger(value, bitLength)
	}
	return value
}

// integerBoundary returns the minimum or maximum representable value for an integer of the given signedness and bit
// length.
func integerBoundary(signed bool, bitLength int, minimum bool) *big.Int {
	if signed {
		// Signed bounds are -(2^(bitLength-1)) and 2^(bitLength-1)-1.
		bound := new(big.Int).Lsh(big.NewInt(1), uint(bitLength-1))
		if minimum {
			return bound.Neg(bound)
		}
		return bound.Sub(bound, big.NewInt(1))
	}
	if minimum {
		return big.NewInt(0)
	}

	// The unsigned maximum is 2^bitLength-1. The shift wraps modulo 2^256, so a 256-bit request underflows to the
	// full 256-bit maximum as intended.
	maxValue := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitLength))
	maxValue.Sub(maxValue, uint256.NewInt(1))
	return maxValue.ToBig()
}

// wrapSignedInteger reinterprets the raw bits of a non-negative integer of the given bit length as a two's
// complement signed value, mapping it into [-(2^(bitLength-1)), 2^(bitLength-1)-1].
func wrapSignedInteger(value *big.Int, bitLength int) *big.Int {
	if value.Bit(bitLength-1) == 1 {
		modulus := new(big.Int).Lsh(big.NewInt(1), uint(bitLength))
		return value.Sub(value, modulus)
	}
	return value
}
