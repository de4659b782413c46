package fuzzing

import (
	"testing"

	"github.com/crytic/gorgon/fuzzing/contracts"
	"github.com/crytic/gorgon/fuzzing/valuegeneration"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

// createTestOverrideGenerator creates an OverrideCallGenerator over a registry holding two counter contracts,
// returning the generator, its override target handle, and both contract addresses.
func createTestOverrideGenerator(t *testing.T) (*OverrideCallGenerator, *OverrideTarget, common.Address, common.Address) {
	registry := contracts.NewDeployedContractRegistry()
	firstAddress := common.HexToAddress("0x1000")
	secondAddress := common.HexToAddress("0x2000")
	registry.Register(contracts.NewContract(firstAddress, parseTestAbi(t, testCounterContractDefinition)))
	registry.Register(contracts.NewContract(secondAddress, parseTestAbi(t, testCounterContractDefinition)))

	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)
	target := NewOverrideTarget()
	return NewOverrideCallGenerator(generator, target), target, firstAddress, secondAddress
}

// TestOverrideTargetHandle will test the override target handle's unset and set states.
func TestOverrideTargetHandle(t *testing.T) {
	target := NewOverrideTarget()

	// Verify the handle starts unset.
	_, ok := target.Address()
	assert.False(t, ok)

	// Verify assignment is observable.
	address := common.HexToAddress("0x1234")
	target.Set(address)
	resolved, ok := target.Address()
	assert.True(t, ok)
	assert.Equal(t, address, resolved)
}

// TestOverrideGeneratorConcentratesOnTarget will test that most generated calls target the designated contract,
// while the rest fall back to uniform selection among registered contracts.
func TestOverrideGeneratorConcentratesOnTarget(t *testing.T) {
	generator, target, firstAddress, secondAddress := createTestOverrideGenerator(t)
	target.Set(firstAddress)

	// Generate many calls and count how often each contract is targeted.
	const draws = 10_000
	targetCount := 0
	otherCount := 0
	for i := 0; i < draws; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		switch call.Target {
		case firstAddress:
			targetCount++
		case secondAddress:
			otherCount++
		default:
			t.Fatalf("generated call targets unregistered contract %v", call.Target)
		}
	}

	// The designated contract is selected for 80% of draws directly, plus half of the 20% uniform fallback.
	observed := float64(targetCount) / float64(draws)
	assert.InDelta(t, 0.90, observed, 0.03)
	assert.Greater(t, otherCount, 0, "expected some calls to fall back to uniform selection")
}

// TestOverrideGeneratorUnsetTarget will test that generation reports an unknown override target while the handle is
// unset, and recovers once it is assigned.
func TestOverrideGeneratorUnsetTarget(t *testing.T) {
	generator, target, firstAddress, _ := createTestOverrideGenerator(t)

	// Generate until the override branch is drawn and verify it reports the unknown target error. The fallback
	// branch is drawn for a fifth of attempts, so a handful of tries is plenty.
	sawUnknownTargetError := false
	for i := 0; i < 100 && !sawUnknownTargetError; i++ {
		_, err := generator.GenerateCall()
		if err != nil {
			assert.ErrorIs(t, err, ErrUnknownOverrideTarget)
			sawUnknownTargetError = true
		}
	}
	assert.True(t, sawUnknownTargetError, "expected an unknown override target error while the handle is unset")

	// Assign the target and verify generation succeeds consistently afterwards.
	target.Set(firstAddress)
	for i := 0; i < 100; i++ {
		_, err := generator.GenerateCall()
		assert.NoError(t, err)
	}
}

// TestOverrideGeneratorUnregisteredTarget will test that an override target address which does not resolve to a
// registered contract is reported as unknown.
func TestOverrideGeneratorUnregisteredTarget(t *testing.T) {
	generator, target, _, _ := createTestOverrideGenerator(t)
	target.Set(common.HexToAddress("0xdead"))

	// Generate until the override branch is drawn and verify it reports the unknown target error.
	sawUnknownTargetError := false
	for i := 0; i < 100 && !sawUnknownTargetError; i++ {
		_, err := generator.GenerateCall()
		if err != nil {
			assert.ErrorIs(t, err, ErrUnknownOverrideTarget)
			sawUnknownTargetError = true
		}
	}
	assert.True(t, sawUnknownTargetError, "expected an unknown override target error for an unregistered address")
}

// TestOverrideGeneratorObservesLateRegistration will test that an override target registered after assignment
// resolves on the next draw, without rebuilding the generator.
func TestOverrideGeneratorObservesLateRegistration(t *testing.T) {
	// Create an override generator over a registry with one contract, targeting an address not yet registered.
	registry := contracts.NewDeployedContractRegistry()
	registry.Register(contracts.NewContract(common.HexToAddress("0x1000"), parseTestAbi(t, testCounterContractDefinition)))
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)
	target := NewOverrideTarget()
	lateAddress := common.HexToAddress("0x3000")
	target.Set(lateAddress)
	overrideGenerator := NewOverrideCallGenerator(generator, target)

	// Register the targeted contract and verify it becomes the dominant call target.
	registry.Register(contracts.NewContract(lateAddress, parseTestAbi(t, testCounterContractDefinition)))
	lateCount := 0
	const draws = 1000
	for i := 0; i < draws; i++ {
		call, err := overrideGenerator.GenerateCall()
		assert.NoError(t, err)
		if call.Target == lateAddress {
			lateCount++
		}
	}
	assert.Greater(t, lateCount, draws/2)
}
