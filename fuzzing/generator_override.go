package fuzzing

import (
	"sync"

	"github.com/crytic/gorgon/fuzzing/calls"
	"github.com/crytic/gorgon/fuzzing/contracts"
	"github.com/crytic/gorgon/utils/randomutils"
	"github.com/ethereum/go-ethereum/common"
)

// Relative weights for the per-call choice between the override target and a randomly selected contract.
const (
	overrideTargetWeight   = 80
	overrideFallbackWeight = 20
)

// OverrideTarget is a mutable handle to a contract address which an OverrideCallGenerator should concentrate its
// calls on. The execution harness updates it as the campaign's focus shifts, without rebuilding the generator.
type OverrideTarget struct {
	// address describes the current override target address.
	address common.Address

	// set indicates whether an override target address has been assigned yet.
	set bool

	// lock guards the address for concurrent access.
	lock sync.RWMutex
}

// NewOverrideTarget creates an unset OverrideTarget.
func NewOverrideTarget() *OverrideTarget {
	return &OverrideTarget{}
}

// Set assigns the override target address.
func (t *OverrideTarget) Set(address common.Address) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.address = address
	t.set = true
}

// Address returns the current override target address, and whether one has been assigned yet.
func (t *OverrideTarget) Address() (common.Address, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.address, t.set
}

// OverrideCallGenerator produces calls like a CallGenerator, but concentrates most of its draws on a single
// designated target contract rather than selecting targets uniformly. The override target is resolved against the
// registry on every draw, so handle updates and late registrations take effect on the next generated call. All
// method, sender, and calldata selection behavior is shared with the underlying CallGenerator.
type OverrideCallGenerator struct {
	// generator describes the underlying call generator used for everything but target selection.
	generator *CallGenerator

	// target describes the designated contract address to concentrate calls on.
	target *OverrideTarget

	// targetChooser draws the target selection strategy for each generated call.
	targetChooser *randomutils.WeightedRandomChooser[func() (*contracts.Contract, error)]
}

// NewOverrideCallGenerator creates an OverrideCallGenerator which concentrates calls on the provided override
// target, deferring to the provided generator for all other selection behavior.
func NewOverrideCallGenerator(generator *CallGenerator, target *OverrideTarget) *OverrideCallGenerator {
	overrideGenerator := &OverrideCallGenerator{
		generator: generator,
		target:    target,
	}

	// Create our target selection chooser, splitting draws between the designated target and the underlying
	// generator's uniform contract selection.
	overrideGenerator.targetChooser = randomutils.NewWeightedRandomChooserWithRand[func() (*contracts.Contract, error)](generator.randomProvider, generator.randomProviderLock)
	overrideGenerator.targetChooser.AddChoices(
		randomutils.NewWeightedRandomChoice(overrideGenerator.selectOverrideTarget, uint64(overrideTargetWeight)),
		randomutils.NewWeightedRandomChoice(generator.selectContract, uint64(overrideFallbackWeight)),
	)

	return overrideGenerator
}

// GenerateCall produces one call, targeting the designated override contract for most draws and a uniformly
// selected registered contract for the remainder. Returns the generated call, or an error if one occurs.
func (g *OverrideCallGenerator) GenerateCall() (*calls.Call, error) {
	// Select a contract to target per the weighted override/uniform mix.
	selectTarget, err := g.targetChooser.Choose()
	if err != nil {
		return nil, err
	}
	contract, err := (*selectTarget)()
	if err != nil {
		return nil, err
	}

	// Generate the rest of the call against the selected contract.
	return g.generator.generateCallForContract(contract)
}

// selectOverrideTarget resolves the designated override target address against the registry. Returns the resolved
// contract, or ErrUnknownOverrideTarget if no target has been assigned or the address is not registered.
func (g *OverrideCallGenerator) selectOverrideTarget() (*contracts.Contract, error) {
	address, ok := g.target.Address()
	if !ok {
		return nil, ErrUnknownOverrideTarget
	}
	contract := g.generator.registry.Contract(address)
	if contract == nil {
		return nil, ErrUnknownOverrideTarget
	}
	return contract, nil
}
