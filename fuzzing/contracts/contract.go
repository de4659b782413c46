package contracts

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract describes a contract deployed on-chain which call generation may target. It carries the contract's
// deployment address, its ABI, and an optional explicit list of methods targeted for fuzzing. A Contract is
// immutable after registration, so it can be shared across concurrent readers without additional locking.
type Contract struct {
	// address represents the address the contract is deployed at.
	address common.Address

	// contractAbi describes the ABI of the deployed contract.
	contractAbi abi.ABI

	// targetedMethods are the methods explicitly targeted for call generation. If empty, any state-changing
	// (non-pure, non-view) method in the ABI is considered a candidate instead.
	targetedMethods []abi.Method
}

// NewContract returns a new Contract instance with the provided deployment address and ABI.
func NewContract(address common.Address, contractAbi abi.ABI) *Contract {
	return &Contract{
		address:     address,
		contractAbi: contractAbi,
	}
}

// WithTargetedMethods restricts call generation for this contract to methods whose canonical signature appears in
// the provided list. Signatures not present in the ABI are ignored. Returns the contract for chaining.
func (c *Contract) WithTargetedMethods(signatures []string) *Contract {
	var targeted []abi.Method
	for _, method := range c.contractAbi.Methods {
		for _, signature := range signatures {
			if method.Sig == signature {
				targeted = append(targeted, method)
				break
			}
		}
	}
	c.targetedMethods = targeted
	return c
}

// Address returns the address the contract is deployed at.
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the ABI of the deployed contract.
func (c *Contract) ABI() *abi.ABI {
	return &c.contractAbi
}

// MethodCount returns the count of methods the contract's ABI exposes, regardless of mutability or targeting.
func (c *Contract) MethodCount() int {
	return len(c.contractAbi.Methods)
}

// CandidateMethods returns the methods eligible for call generation. If explicit method targeting was applied, the
// targeted methods are returned as-is, overriding any mutability filtering. Otherwise, all state-changing (non-pure,
// non-view) methods of the ABI are returned. The returned slice is freshly allocated on each invocation.
func (c *Contract) CandidateMethods() []abi.Method {
	// Explicit targets override the mutability filter.
	if len(c.targetedMethods) > 0 {
		candidates := make([]abi.Method, len(c.targetedMethods))
		copy(candidates, c.targetedMethods)
		return candidates
	}

	// Otherwise, collect every method which can mutate contract state.
	var candidates []abi.Method
	for _, method := range c.contractAbi.Methods {
		if !method.IsConstant() {
			candidates = append(candidates, method)
		}
	}
	return candidates
}
