package fuzzing

import (
	"fmt"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/crytic/gorgon/fuzzing/calls"
	"github.com/crytic/gorgon/fuzzing/config"
	"github.com/crytic/gorgon/fuzzing/contracts"
	"github.com/crytic/gorgon/fuzzing/valuegeneration"
	"github.com/crytic/gorgon/logging"
	"github.com/crytic/gorgon/utils/randomutils"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Relative weights for the per-call choice between calldata synthesis strategies.
const (
	calldataDictionaryWeight = 60
	calldataValueSetWeight   = 40
)

// CallGenerator produces one well-typed call at a time for use in invariant fuzzing campaigns. Each invocation
// selects a contract from the deployed contract registry, a candidate method on it, a sender per the sender filter
// rules, and synthesizes ABI-conformant calldata for the method's parameters. Every draw re-reads the shared
// registry and value dictionary, so contracts and values recorded by the execution harness become selectable on the
// next request. Nothing is memoized across calls.
type CallGenerator struct {
	// registry describes the deployed contracts available as call targets.
	registry *contracts.DeployedContractRegistry

	// senders describes the per-run sender targeting and exclusion rules.
	senders *SenderFilterSet

	// valueSet describes the shared dictionary of previously observed values used to bias generation.
	valueSet *valuegeneration.ValueSet

	// calldataDictionary describes per-signature, per-parameter candidate values used to bias calldata synthesis.
	calldataDictionary *valuegeneration.CalldataDictionary

	// senderRetryLimit bounds the number of sender draws attempted before reporting ErrNoEligibleSender.
	senderRetryLimit int

	// randomProvider offers a source of random data for uniform selections.
	randomProvider *rand.Rand
	// randomProviderLock is a lock to offer thread safety to the random number generator.
	randomProviderLock *sync.Mutex

	// randomValueGenerator generates uniformly random values for any requested type.
	randomValueGenerator *valuegeneration.RandomValueGenerator

	// valueSetValueGenerator generates values biased toward the value dictionary, falling back to
	// randomValueGenerator when the dictionary holds nothing suitable.
	valueSetValueGenerator *valuegeneration.ValueSetValueGenerator

	// senderChooser draws the sender sourcing strategy per the configured dictionary weight. Only consulted when no
	// explicit sender targets are configured.
	senderChooser *randomutils.WeightedRandomChooser[func() common.Address]

	// calldataChooser draws the calldata synthesis strategy for each generated call.
	calldataChooser *randomutils.WeightedRandomChooser[func(method *abi.Method) []any]

	// metrics tracks how generated values were sourced.
	metrics *GenerationMetrics

	// runID uniquely identifies this generator instance in logs.
	runID uuid.UUID

	// logger describes the CallGenerator's log object that can be used to log important events
	logger *logging.Logger
}

// NewCallGenerator creates a CallGenerator which reads the provided shared registry, value set, and calldata
// dictionary on every draw. The generation configuration supplies the dictionary weight and the sender retry limit;
// it is expected to have been validated before the run started.
func NewCallGenerator(registry *contracts.DeployedContractRegistry, senders *SenderFilterSet, valueSet *valuegeneration.ValueSet, calldataDictionary *valuegeneration.CalldataDictionary, generationConfig *config.GenerationConfig, logger *logging.Logger) *CallGenerator {
	// Create a random provider for this generator's selections. The value generators guard their own random
	// providers internally, so each receives a separate source rather than sharing this one.
	randomProvider := rand.New(rand.NewSource(time.Now().UnixNano()))
	randomProviderLock := &sync.Mutex{}

	// Create our value generators. The value set generator falls back to the uniform one when the dictionary holds
	// no suitable value for a requested type.
	randomValueGenerator := valuegeneration.NewRandomValueGenerator()
	valueSetValueGenerator := valuegeneration.NewValueSetValueGenerator(valueSet, randomValueGenerator)

	runID := uuid.New()
	generator := &CallGenerator{
		registry:               registry,
		senders:                senders,
		valueSet:               valueSet,
		calldataDictionary:     calldataDictionary,
		senderRetryLimit:       generationConfig.SenderRetryLimit,
		randomProvider:         randomProvider,
		randomProviderLock:     randomProviderLock,
		randomValueGenerator:   randomValueGenerator,
		valueSetValueGenerator: valueSetValueGenerator,
		metrics:                NewGenerationMetrics(),
		runID:                  runID,
		logger:                 logger.NewSubLogger("run", runID.String()),
	}

	// Create our sender sourcing chooser. The configured dictionary weight splits draws between a uniformly random
	// address and one drawn from the value dictionary. Choices wrap draw functions so shared state is re-read on
	// every draw.
	generator.senderChooser = randomutils.NewWeightedRandomChooserWithRand[func() common.Address](randomProvider, randomProviderLock)
	generator.senderChooser.AddChoices(
		randomutils.NewWeightedRandomChoice(generator.generateRandomSender, 100-generationConfig.DictionaryWeight),
		randomutils.NewWeightedRandomChoice(generator.generateDictionarySender, generationConfig.DictionaryWeight),
	)

	// Create our calldata strategy chooser, splitting calldata synthesis between the calldata dictionary strategy
	// and the value set strategy.
	generator.calldataChooser = randomutils.NewWeightedRandomChooserWithRand[func(method *abi.Method) []any](randomProvider, randomProviderLock)
	generator.calldataChooser.AddChoices(
		randomutils.NewWeightedRandomChoice(generator.generateArgsFromCalldataDictionary, uint64(calldataDictionaryWeight)),
		randomutils.NewWeightedRandomChoice(generator.generateArgsFromValueSet, uint64(calldataValueSetWeight)),
	)

	return generator
}

// Metrics returns the metrics tracking how this generator sourced its values.
func (g *CallGenerator) Metrics() *GenerationMetrics {
	return g.metrics
}

// RunID returns the unique identifier of this generator instance.
func (g *CallGenerator) RunID() uuid.UUID {
	return g.runID
}

// GenerateCall produces one call against a registered contract. Target/method selection and sender selection are
// independent draws. Returns the generated call, or an error if no eligible contract, method, or sender could be
// selected. Failures are surfaced immediately and never retried internally, as an empty eligible set indicates a
// misconfigured run.
func (g *CallGenerator) GenerateCall() (*calls.Call, error) {
	// Select a contract to target.
	contract, err := g.selectContract()
	if err != nil {
		return nil, err
	}

	// Generate the rest of the call against the selected contract.
	return g.generateCallForContract(contract)
}

// generateCallForContract produces one call against the provided contract: it selects a candidate method, selects a
// sender, synthesizes calldata for the method's parameters, and assembles the call. Returns the generated call, or
// an error if one occurs.
func (g *CallGenerator) generateCallForContract(contract *contracts.Contract) (*calls.Call, error) {
	// Select a method on the contract.
	method, err := g.selectMethod(contract)
	if err != nil {
		return nil, err
	}

	// Select a sender. This draw is independent of the contract/method selected above.
	sender, err := g.selectSender()
	if err != nil {
		return nil, err
	}

	// Synthesize arguments for the method's parameters.
	args, err := g.generateAbiArguments(method)
	if err != nil {
		return nil, err
	}

	// If this is a payable method, generate value to send along with the call.
	value := big.NewInt(0)
	if method.IsPayable() {
		value = g.randomValueGenerator.GenerateInteger(false, 64)
	}

	// Assemble the call, packing the generated arguments per the method's ABI definition.
	call, err := calls.NewCallFromAbiValues(sender, contract.Address(), value, method, args...)
	if err != nil {
		return nil, fmt.Errorf("could not pack generated arguments for method '%s': %v", method.Sig, err)
	}

	g.metrics.callGenerated()
	g.logger.Trace("generated call", logging.StructuredLogInfo{"target": call.Target.String(), "method": method.Sig, "sender": call.Sender.String()})
	return call, nil
}

// selectContract selects a contract uniformly among all registered contracts whose ABI exposes at least one method.
// The eligible set is snapshotted under the registry's read lock and the lock is released before any further
// selection work. Returns the selected contract, or ErrNoEligibleContract if the eligible set is empty.
func (g *CallGenerator) selectContract() (*contracts.Contract, error) {
	eligible := g.registry.EligibleContracts()
	if len(eligible) == 0 {
		return nil, ErrNoEligibleContract
	}

	g.randomProviderLock.Lock()
	defer g.randomProviderLock.Unlock()
	return eligible[g.randomProvider.Intn(len(eligible))], nil
}

// selectMethod selects a method uniformly among the contract's candidate methods: its explicitly targeted methods
// if any were configured, otherwise its state-changing (non-pure, non-view) methods. Returns the selected method,
// or ErrNoEligibleMethod if no candidate remains.
func (g *CallGenerator) selectMethod(contract *contracts.Contract) (*abi.Method, error) {
	candidates := contract.CandidateMethods()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: contract %s", ErrNoEligibleMethod, contract.Address().String())
	}

	g.randomProviderLock.Lock()
	defer g.randomProviderLock.Unlock()
	return &candidates[g.randomProvider.Intn(len(candidates))], nil
}

// selectSender produces a sender address. If explicit sender targets are configured, one is chosen uniformly among
// them and the exclusion set is not consulted. Otherwise a sender is drawn from the weighted dictionary/uniform mix
// and rejected while it appears in the exclusion set, up to the configured retry limit. Exclusion membership checks
// are constant-time, so the retry bound keeps rejection sampling cost independent of the exclusion set size.
// Returns the selected sender, or ErrNoEligibleSender if the retry limit is exhausted.
func (g *CallGenerator) selectSender() (common.Address, error) {
	// Explicit targets take precedence over the weighted mix and the exclusion set.
	if g.senders.HasTargets() {
		targeted := g.senders.Targeted()
		g.randomProviderLock.Lock()
		defer g.randomProviderLock.Unlock()
		return targeted[g.randomProvider.Intn(len(targeted))], nil
	}

	// Draw from the weighted mix, redrawing while we hit excluded senders.
	for attempt := 0; attempt < g.senderRetryLimit; attempt++ {
		drawSender, err := g.senderChooser.Choose()
		if err != nil {
			return common.Address{}, err
		}
		sender := (*drawSender)()
		if !g.senders.IsExcluded(sender) {
			return sender, nil
		}
	}
	return common.Address{}, fmt.Errorf("%w (%d attempts)", ErrNoEligibleSender, g.senderRetryLimit)
}

// generateRandomSender produces a uniformly random sender address.
func (g *CallGenerator) generateRandomSender() common.Address {
	g.metrics.senderDrawn(false)
	return g.randomValueGenerator.GenerateAddress()
}

// generateDictionarySender produces a sender address drawn from the value dictionary, falling back to a uniformly
// random address if the dictionary holds no addresses.
func (g *CallGenerator) generateDictionarySender() common.Address {
	g.metrics.senderDrawn(true)
	return g.valueSetValueGenerator.GenerateAddress()
}

// generateAbiArguments synthesizes input argument values for the provided method by drawing a synthesis strategy
// from the weighted calldata strategy mix and applying it to each parameter independently. Returns the argument
// values, or an error if one occurs.
func (g *CallGenerator) generateAbiArguments(method *abi.Method) ([]any, error) {
	strategy, err := g.calldataChooser.Choose()
	if err != nil {
		return nil, err
	}
	return (*strategy)(method), nil
}

// generateArgsFromCalldataDictionary synthesizes argument values using the calldata dictionary: for each parameter,
// a candidate recorded for the method's signature and that parameter position is used if one exists, falling back
// to uniformly random generation for the parameter's type otherwise.
func (g *CallGenerator) generateArgsFromCalldataDictionary(method *abi.Method) []any {
	g.metrics.calldataSynthesized(true)
	args := make([]any, len(method.Inputs))
	for i := 0; i < len(args); i++ {
		g.randomProviderLock.Lock()
		candidate, ok := g.calldataDictionary.RandomCandidate(method.Sig, i, g.randomProvider)
		g.randomProviderLock.Unlock()
		if ok {
			args[i] = candidate
			continue
		}
		input := method.Inputs[i]
		args[i] = valuegeneration.GenerateAbiValue(g.randomValueGenerator, &input.Type)
	}
	return args
}

// generateArgsFromValueSet synthesizes argument values using the value dictionary: each parameter is generated from
// previously observed values matching the parameter's declared type, falling back to uniformly random generation
// when the dictionary holds nothing suitable.
func (g *CallGenerator) generateArgsFromValueSet(method *abi.Method) []any {
	g.metrics.calldataSynthesized(false)
	args := make([]any, len(method.Inputs))
	for i := 0; i < len(args); i++ {
		input := method.Inputs[i]
		args[i] = valuegeneration.GenerateAbiValue(g.valueSetValueGenerator, &input.Type)
	}
	return args
}
