package valuegeneration

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

// TestValueSetAddAndDraw will test that added items become drawable and duplicates are collapsed.
func TestValueSetAddAndDraw(t *testing.T) {
	valueSet := NewValueSet()
	randomProvider := rand.New(rand.NewSource(1))

	// Verify draws from an empty set report no value.
	_, ok := valueSet.RandomAddress(randomProvider)
	assert.False(t, ok)
	_, ok = valueSet.RandomInteger(randomProvider)
	assert.False(t, ok)
	_, ok = valueSet.RandomString(randomProvider)
	assert.False(t, ok)
	_, ok = valueSet.RandomBytes(randomProvider)
	assert.False(t, ok)

	// Add one item of each kind, twice, and verify duplicates collapse.
	address := common.HexToAddress("0xdeadbeef")
	valueSet.AddAddress(address)
	valueSet.AddAddress(address)
	valueSet.AddInteger(big.NewInt(1337))
	valueSet.AddInteger(big.NewInt(1337))
	valueSet.AddString("gorgon")
	valueSet.AddString("gorgon")
	valueSet.AddBytes([]byte{1, 2, 3})
	valueSet.AddBytes([]byte{1, 2, 3})

	assert.Len(t, valueSet.Addresses(), 1)
	assert.Len(t, valueSet.Integers(), 1)
	assert.Len(t, valueSet.Strings(), 1)
	assert.Len(t, valueSet.Bytes(), 1)

	// Verify draws return the items we added.
	drawnAddress, ok := valueSet.RandomAddress(randomProvider)
	assert.True(t, ok)
	assert.Equal(t, address, drawnAddress)
	drawnInteger, ok := valueSet.RandomInteger(randomProvider)
	assert.True(t, ok)
	assert.Zero(t, drawnInteger.Cmp(big.NewInt(1337)))
	drawnString, ok := valueSet.RandomString(randomProvider)
	assert.True(t, ok)
	assert.Equal(t, "gorgon", drawnString)
	drawnBytes, ok := valueSet.RandomBytes(randomProvider)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, drawnBytes)
}

// TestValueSetClone will test that a cloned set holds the original's items but does not observe later additions.
func TestValueSetClone(t *testing.T) {
	// Populate a set and clone it.
	valueSet := NewValueSet()
	valueSet.AddAddress(common.HexToAddress("0x01"))
	valueSet.AddInteger(big.NewInt(7))
	cloned := valueSet.Clone()

	assert.Len(t, cloned.Addresses(), 1)
	assert.Len(t, cloned.Integers(), 1)

	// Verify additions to the original are not visible in the clone.
	valueSet.AddAddress(common.HexToAddress("0x02"))
	assert.Len(t, valueSet.Addresses(), 2)
	assert.Len(t, cloned.Addresses(), 1)
}

// TestValueSetAddAbiValuesFromOutput will test that call output values are harvested into the set per their ABI
// types.
func TestValueSetAddAbiValuesFromOutput(t *testing.T) {
	valueSet := NewValueSet()

	// Create output argument definitions for an address, an integer, and a string.
	addressType, err := abi.NewType("address", "", nil)
	assert.NoError(t, err)
	uintType, err := abi.NewType("uint256", "", nil)
	assert.NoError(t, err)
	stringType, err := abi.NewType("string", "", nil)
	assert.NoError(t, err)
	outputTypes := abi.Arguments{
		{Type: addressType},
		{Type: uintType},
		{Type: stringType},
	}

	// Harvest a matching set of output values.
	address := common.HexToAddress("0xc0ffee")
	valueSet.AddAbiValuesFromOutput(outputTypes, []any{address, big.NewInt(42), "observed"})

	// Verify each output landed in the set. Addresses are additionally recorded as byte sequences, and integers are
	// additionally recorded as addresses.
	assert.Contains(t, valueSet.Addresses(), address)
	assert.Contains(t, valueSet.Strings(), "observed")
	assert.Len(t, valueSet.Integers(), 1)
	assert.NotEmpty(t, valueSet.Bytes())

	// Verify mismatched lengths are ignored rather than harvested partially.
	before := len(valueSet.Integers())
	valueSet.AddAbiValuesFromOutput(outputTypes, []any{big.NewInt(1)})
	assert.Equal(t, before, len(valueSet.Integers()))
}
