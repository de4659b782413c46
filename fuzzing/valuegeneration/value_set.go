package valuegeneration

import (
	"encoding/hex"
	"hash"
	"math/big"
	"math/rand"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/maps"
)

// ValueSet represents potential values of significance observed over the course of a run, to be used to bias value
// generation in fuzz tests. It grows monotonically as the execution harness records newly observed values, and is
// shared across concurrent fuzzing workers, so all access is guarded by a reader-writer lock. The harness is the
// sole writer; generation only reads.
type ValueSet struct {
	// addresses represents a set of common.Address to use in fuzz tests. A mapping is used to avoid duplicates.
	addresses map[common.Address]any
	// integers represents a set of integers to use in fuzz tests. A mapping is used to avoid duplicates.
	integers map[string]*big.Int
	// strings represents a set of strings to use in fuzz tests. A mapping is used to avoid duplicates.
	strings map[string]any
	// bytes represents a set of bytes to use in fuzz tests. A mapping is used to avoid duplicates.
	bytes map[string][]byte
	// hashProvider represents a hash provider used to create keys for some data.
	hashProvider hash.Hash

	// lock guards all of the above for concurrent access.
	lock sync.RWMutex
}

// NewValueSet initializes a new ValueSet object for use with call generation.
func NewValueSet() *ValueSet {
	return &ValueSet{
		addresses:    make(map[common.Address]any),
		integers:     make(map[string]*big.Int),
		strings:      make(map[string]any),
		bytes:        make(map[string][]byte),
		hashProvider: sha3.NewLegacyKeccak256(),
	}
}

// Clone creates a copy of the current ValueSet.
func (vs *ValueSet) Clone() *ValueSet {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	return &ValueSet{
		addresses:    maps.Clone(vs.addresses),
		integers:     maps.Clone(vs.integers),
		strings:      maps.Clone(vs.strings),
		bytes:        maps.Clone(vs.bytes),
		hashProvider: sha3.NewLegacyKeccak256(),
	}
}

// Addresses returns a list of addresses contained within the set.
func (vs *ValueSet) Addresses() []common.Address {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	return maps.Keys(vs.addresses)
}

// AddAddress adds an address item to the ValueSet.
func (vs *ValueSet) AddAddress(a common.Address) {
	vs.lock.Lock()
	defer vs.lock.Unlock()
	vs.addresses[a] = nil
}

// RandomAddress returns a random address from the set using the provided random provider. Returns the address and
// true if the set holds at least one address, or a zero address and false otherwise.
func (vs *ValueSet) RandomAddress(randomProvider *rand.Rand) (common.Address, bool) {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	if len(vs.addresses) == 0 {
		return common.Address{}, false
	}
	keys := maps.Keys(vs.addresses)
	return keys[randomProvider.Intn(len(keys))], true
}

// Integers returns a list of integers contained within the set.
func (vs *ValueSet) Integers() []*big.Int {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	return maps.Values(vs.integers)
}

// AddInteger adds an integer item to the ValueSet.
func (vs *ValueSet) AddInteger(b *big.Int) {
	vs.lock.Lock()
	defer vs.lock.Unlock()
	vs.integers[b.String()] = b
}

// RandomInteger returns a random integer from the set using the provided random provider. Returns the integer and
// true if the set holds at least one integer, or nil and false otherwise.
func (vs *ValueSet) RandomInteger(randomProvider *rand.Rand) (*big.Int, bool) {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	if len(vs.integers) == 0 {
		return nil, false
	}
	values := maps.Values(vs.integers)
	return values[randomProvider.Intn(len(values))], true
}

// Strings returns a list of strings contained within the set.
func (vs *ValueSet) Strings() []string {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	return maps.Keys(vs.strings)
}

// AddString adds a string item to the ValueSet.
func (vs *ValueSet) AddString(s string) {
	vs.lock.Lock()
	defer vs.lock.Unlock()
	vs.strings[s] = nil
}

// RandomString returns a random string from the set using the provided random provider. Returns the string and true
// if the set holds at least one string, or an empty string and false otherwise.
func (vs *ValueSet) RandomString(randomProvider *rand.Rand) (string, bool) {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	if len(vs.strings) == 0 {
		return "", false
	}
	keys := maps.Keys(vs.strings)
	return keys[randomProvider.Intn(len(keys))], true
}

// Bytes returns a list of byte sequences contained within the set.
func (vs *ValueSet) Bytes() [][]byte {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	return maps.Values(vs.bytes)
}

// AddBytes adds a byte sequence to the ValueSet.
func (vs *ValueSet) AddBytes(b []byte) {
	vs.lock.Lock()
	defer vs.lock.Unlock()

	// Calculate hash and reset our hash provider
	vs.hashProvider.Write(b)
	hashStr := hex.EncodeToString(vs.hashProvider.Sum(nil))
	vs.hashProvider.Reset()

	// Add our hash to our "set" (map)
	vs.bytes[hashStr] = b
}

// RandomBytes returns a random byte sequence from the set using the provided random provider. Returns the sequence
// and true if the set holds at least one sequence, or nil and false otherwise.
func (vs *ValueSet) RandomBytes(randomProvider *rand.Rand) ([]byte, bool) {
	vs.lock.RLock()
	defer vs.lock.RUnlock()
	if len(vs.bytes) == 0 {
		return nil, false
	}
	values := maps.Values(vs.bytes)
	return values[randomProvider.Intn(len(values))], true
}
