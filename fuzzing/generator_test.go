package fuzzing

import (
	"math/big"
	"strings"
	"testing"

	"github.com/crytic/gorgon/fuzzing/calls"
	"github.com/crytic/gorgon/fuzzing/config"
	"github.com/crytic/gorgon/fuzzing/contracts"
	"github.com/crytic/gorgon/fuzzing/valuegeneration"
	"github.com/crytic/gorgon/logging"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// testCounterContractDefinition describes a JSON ABI resembling a simple counter contract, with state-changing,
// payable, and read-only methods.
const testCounterContractDefinition = `[
	{"type": "function", "name": "increment", "stateMutability": "nonpayable", "inputs": [], "outputs": []},
	{"type": "function", "name": "setValue", "stateMutability": "nonpayable", "inputs": [{"name": "value", "type": "uint256"}], "outputs": []},
	{"type": "function", "name": "deposit", "stateMutability": "payable", "inputs": [], "outputs": []},
	{"type": "function", "name": "getValue", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "uint256"}]}
]`

// testViewOnlyContractDefinition describes a JSON ABI exposing only read-only methods.
const testViewOnlyContractDefinition = `[
	{"type": "function", "name": "peek", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "uint256"}]}
]`

// parseTestAbi parses the provided JSON ABI definition.
func parseTestAbi(t *testing.T, definition string) abi.ABI {
	contractAbi, err := abi.JSON(strings.NewReader(definition))
	assert.NoError(t, err)
	return contractAbi
}

// createTestRegistry creates a registry holding a single counter contract at the returned address.
func createTestRegistry(t *testing.T) (*contracts.DeployedContractRegistry, common.Address) {
	registry := contracts.NewDeployedContractRegistry()
	address := common.HexToAddress("0x1000")
	registry.Register(contracts.NewContract(address, parseTestAbi(t, testCounterContractDefinition)))
	return registry, address
}

// createTestGenerator creates a CallGenerator over the provided shared state with default generation settings,
// modified by the provided function if one is given.
func createTestGenerator(registry *contracts.DeployedContractRegistry, senders *SenderFilterSet, valueSet *valuegeneration.ValueSet, calldataDictionary *valuegeneration.CalldataDictionary, modify func(*config.GenerationConfig)) *CallGenerator {
	generationConfig := config.GetDefaultProjectConfig().Generation
	if modify != nil {
		modify(&generationConfig)
	}
	return NewCallGenerator(registry, senders, valueSet, calldataDictionary, &generationConfig, logging.GlobalLogger)
}

// TestGenerateCallWellFormed will test that every generated call targets a registered contract and carries the
// selector of one of its candidate methods.
func TestGenerateCallWellFormed(t *testing.T) {
	registry, address := createTestRegistry(t)
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)

	// Collect the selectors of the contract's candidate methods.
	candidateSelectors := make(map[[calls.SelectorLength]byte]abi.Method)
	for _, method := range registry.Contract(address).CandidateMethods() {
		var selector [calls.SelectorLength]byte
		copy(selector[:], method.ID)
		candidateSelectors[selector] = method
	}

	// Generate many calls and verify each is well-formed.
	for i := 0; i < 1000; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		assert.Equal(t, address, call.Target)
		assert.NotNil(t, call.Value)

		// Verify the selector belongs to a candidate method and the encoded arguments decode against it.
		method, ok := candidateSelectors[call.Selector()]
		assert.True(t, ok, "generated call carries a selector of a non-candidate method")
		_, err = method.Inputs.Unpack(call.Data[calls.SelectorLength:])
		assert.NoError(t, err)

		// Verify only payable methods carry value.
		if !method.IsPayable() {
			assert.Zero(t, call.Value.Sign())
		}
	}
}

// TestGenerateCallPayableValue will test that payable methods are eventually generated with a non-zero value
// attached.
func TestGenerateCallPayableValue(t *testing.T) {
	// Create a registry whose only candidate method is payable.
	registry := contracts.NewDeployedContractRegistry()
	address := common.HexToAddress("0x1000")
	registry.Register(contracts.NewContract(address, parseTestAbi(t, testCounterContractDefinition)).WithTargetedMethods([]string{"deposit()"}))
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)

	// Generate calls until a non-zero value appears.
	sawNonZeroValue := false
	for i := 0; i < 1000 && !sawNonZeroValue; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		sawNonZeroValue = call.Value.Sign() > 0
	}
	assert.True(t, sawNonZeroValue, "expected a payable call with non-zero value")
}

// TestGenerateCallTargetedSendersOnly will test that, with explicit sender targets configured, every generated call
// uses one of the targeted senders.
func TestGenerateCallTargetedSendersOnly(t *testing.T) {
	registry, _ := createTestRegistry(t)
	targeted := []common.Address{
		common.HexToAddress("0xaaaa"),
		common.HexToAddress("0xbbbb"),
	}
	generator := createTestGenerator(registry, NewSenderFilterSet(targeted, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)

	// Generate many calls and verify every sender comes from the targeted list.
	seen := make(map[common.Address]bool)
	for i := 0; i < 1000; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		assert.Contains(t, targeted, call.Sender)
		seen[call.Sender] = true
	}

	// Verify both targeted senders were exercised.
	assert.Len(t, seen, len(targeted))
}

// TestGenerateCallTargetingOverridesExclusion will test that a sender which is both targeted and excluded is still
// generated, as targeting takes precedence over exclusion.
func TestGenerateCallTargetingOverridesExclusion(t *testing.T) {
	registry, _ := createTestRegistry(t)
	sender := common.HexToAddress("0xaaaa")
	generator := createTestGenerator(registry, NewSenderFilterSet([]common.Address{sender}, []common.Address{sender}), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)

	// Verify every call uses the targeted sender despite its exclusion.
	for i := 0; i < 100; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		assert.Equal(t, sender, call.Sender)
	}
}

// TestGenerateCallExcludedSendersNeverUsed will test that excluded senders are never generated, even when the
// dictionary the senders are drawn from contains them.
func TestGenerateCallExcludedSendersNeverUsed(t *testing.T) {
	registry, _ := createTestRegistry(t)

	// Seed the value set with an excluded address and an allowed one, and force all draws through the dictionary.
	excluded := common.HexToAddress("0xbad")
	allowed := common.HexToAddress("0x600d")
	valueSet := valuegeneration.NewValueSet()
	valueSet.AddAddress(excluded)
	valueSet.AddAddress(allowed)
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, []common.Address{excluded}), valueSet, valuegeneration.NewCalldataDictionary(), func(c *config.GenerationConfig) {
		c.DictionaryWeight = 100
	})

	// Generate many calls and verify the excluded sender never appears.
	for i := 0; i < 10_000; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		assert.NotEqual(t, excluded, call.Sender)
		assert.Equal(t, allowed, call.Sender)
	}
}

// TestGenerateCallSenderRetryExhaustion will test that sender selection reports failure when every drawable sender
// is excluded.
func TestGenerateCallSenderRetryExhaustion(t *testing.T) {
	registry, _ := createTestRegistry(t)

	// Seed the value set with only an excluded address and force all draws through the dictionary, so every draw is
	// rejected.
	excluded := common.HexToAddress("0xbad")
	valueSet := valuegeneration.NewValueSet()
	valueSet.AddAddress(excluded)
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, []common.Address{excluded}), valueSet, valuegeneration.NewCalldataDictionary(), func(c *config.GenerationConfig) {
		c.DictionaryWeight = 100
	})

	// Verify generation fails with the sender selection error.
	call, err := generator.GenerateCall()
	assert.Nil(t, call)
	assert.ErrorIs(t, err, ErrNoEligibleSender)
}

// TestGenerateCallNoEligibleContract will test that generation against an empty registry reports failure.
func TestGenerateCallNoEligibleContract(t *testing.T) {
	generator := createTestGenerator(contracts.NewDeployedContractRegistry(), NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)

	call, err := generator.GenerateCall()
	assert.Nil(t, call)
	assert.ErrorIs(t, err, ErrNoEligibleContract)
}

// TestGenerateCallNoEligibleMethod will test that generation against a contract exposing only read-only methods
// reports failure.
func TestGenerateCallNoEligibleMethod(t *testing.T) {
	// Register a contract whose ABI has methods, but none that can mutate state.
	registry := contracts.NewDeployedContractRegistry()
	registry.Register(contracts.NewContract(common.HexToAddress("0x1000"), parseTestAbi(t, testViewOnlyContractDefinition)))
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)

	call, err := generator.GenerateCall()
	assert.Nil(t, call)
	assert.ErrorIs(t, err, ErrNoEligibleMethod)
}

// TestGenerateCallDictionaryWeightExtremes will test that the configured dictionary weight fully determines the
// sender sourcing strategy at its extremes.
func TestGenerateCallDictionaryWeightExtremes(t *testing.T) {
	// With a weight of zero, no sender draw should be sourced from the dictionary.
	registry, _ := createTestRegistry(t)
	valueSet := valuegeneration.NewValueSet()
	valueSet.AddAddress(common.HexToAddress("0x01"))
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valueSet, valuegeneration.NewCalldataDictionary(), func(c *config.GenerationConfig) {
		c.DictionaryWeight = 0
	})
	for i := 0; i < 1000; i++ {
		_, err := generator.GenerateCall()
		assert.NoError(t, err)
	}
	assert.True(t, generator.Metrics().DictionarySenderRatio().IsZero())

	// With a weight of 100, every sender draw should be sourced from the dictionary.
	generator = createTestGenerator(registry, NewSenderFilterSet(nil, nil), valueSet, valuegeneration.NewCalldataDictionary(), func(c *config.GenerationConfig) {
		c.DictionaryWeight = 100
	})
	for i := 0; i < 1000; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0x01"), call.Sender)
	}
	assert.True(t, generator.Metrics().DictionarySenderRatio().Equal(decimal.NewFromInt(1)))
}

// TestGenerateCallDictionaryWeightRatio will test that the fraction of dictionary-sourced sender draws approaches
// the configured weight over many calls.
func TestGenerateCallDictionaryWeightRatio(t *testing.T) {
	registry, _ := createTestRegistry(t)
	valueSet := valuegeneration.NewValueSet()
	valueSet.AddAddress(common.HexToAddress("0x01"))
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valueSet, valuegeneration.NewCalldataDictionary(), func(c *config.GenerationConfig) {
		c.DictionaryWeight = 40
	})

	// Generate many calls and verify the observed ratio is near the configured weight.
	for i := 0; i < 10_000; i++ {
		_, err := generator.GenerateCall()
		assert.NoError(t, err)
	}
	ratio, _ := generator.Metrics().DictionarySenderRatio().Float64()
	assert.InDelta(t, 0.40, ratio, 0.03)
}

// TestGenerateCallCalldataStrategyRatio will test that the split between the calldata dictionary strategy and the
// value set strategy approaches its fixed weighting over many calls.
func TestGenerateCallCalldataStrategyRatio(t *testing.T) {
	registry, _ := createTestRegistry(t)
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)

	// Generate many calls and verify the observed strategy split is near 60/40.
	for i := 0; i < 10_000; i++ {
		_, err := generator.GenerateCall()
		assert.NoError(t, err)
	}
	ratio, _ := generator.Metrics().DictionaryCalldataRatio().Float64()
	assert.InDelta(t, 0.60, ratio, 0.03)
}

// TestGenerateCallCalldataDictionaryBias will test that calldata dictionary candidates recorded for a method
// parameter appear in generated calls at the dictionary strategy's rate.
func TestGenerateCallCalldataDictionaryBias(t *testing.T) {
	// Register a contract whose only candidate method takes one uint256 parameter.
	registry := contracts.NewDeployedContractRegistry()
	address := common.HexToAddress("0x1000")
	contract := contracts.NewContract(address, parseTestAbi(t, testCounterContractDefinition)).WithTargetedMethods([]string{"setValue(uint256)"})
	registry.Register(contract)

	// Record a single candidate for the parameter.
	candidate := big.NewInt(123456789)
	calldataDictionary := valuegeneration.NewCalldataDictionary()
	calldataDictionary.AddCandidate("setValue(uint256)", 0, candidate)

	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), calldataDictionary, nil)
	method := contract.CandidateMethods()[0]

	// Generate many calls and count how often the candidate value was encoded.
	const draws = 10_000
	candidateCount := 0
	for i := 0; i < draws; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		unpacked, err := method.Inputs.Unpack(call.Data[calls.SelectorLength:])
		assert.NoError(t, err)
		if unpacked[0].(*big.Int).Cmp(candidate) == 0 {
			candidateCount++
		}
	}

	// The dictionary strategy is drawn for roughly 60% of calls, and it always uses the sole recorded candidate.
	observed := float64(candidateCount) / float64(draws)
	assert.InDelta(t, 0.60, observed, 0.03)
}

// TestGenerateCallCounterScenario will test generation against a two-method counter contract with unrestricted
// senders and no dictionary bias: every call must target the counter with one of its two selectors.
func TestGenerateCallCounterScenario(t *testing.T) {
	// Register a counter contract restricted to its two state-changing methods.
	registry := contracts.NewDeployedContractRegistry()
	address := common.HexToAddress("0xAAA0000000000000000000000000000000000000")
	contract := contracts.NewContract(address, parseTestAbi(t, testCounterContractDefinition)).
		WithTargetedMethods([]string{"increment()", "setValue(uint256)"})
	registry.Register(contract)
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), func(c *config.GenerationConfig) {
		c.DictionaryWeight = 0
	})

	// Collect the two permitted selectors.
	permitted := make(map[[calls.SelectorLength]byte]bool)
	for _, method := range contract.CandidateMethods() {
		var selector [calls.SelectorLength]byte
		copy(selector[:], method.ID)
		permitted[selector] = true
	}
	assert.Len(t, permitted, 2)

	// Verify every generated call is against the counter with a permitted selector and a well-formed sender.
	for i := 0; i < 1000; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		assert.Equal(t, address, call.Target)
		assert.True(t, permitted[call.Selector()])
		assert.Len(t, call.Sender.Bytes(), common.AddressLength)
	}
}

// TestGenerateCallObservesLateRegistrations will test that contracts registered after the generator was created
// become selectable targets.
func TestGenerateCallObservesLateRegistrations(t *testing.T) {
	registry, firstAddress := createTestRegistry(t)
	generator := createTestGenerator(registry, NewSenderFilterSet(nil, nil), valuegeneration.NewValueSet(), valuegeneration.NewCalldataDictionary(), nil)

	// Generate a call to confirm the generator works, then register a second contract.
	_, err := generator.GenerateCall()
	assert.NoError(t, err)
	secondAddress := common.HexToAddress("0x2000")
	registry.Register(contracts.NewContract(secondAddress, parseTestAbi(t, testCounterContractDefinition)))

	// Verify the new contract is selected without rebuilding the generator.
	seen := make(map[common.Address]bool)
	for i := 0; i < 1000; i++ {
		call, err := generator.GenerateCall()
		assert.NoError(t, err)
		seen[call.Target] = true
	}
	assert.True(t, seen[firstAddress])
	assert.True(t, seen[secondAddress])
}
