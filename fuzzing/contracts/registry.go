package contracts

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// DeployedContractRegistry tracks contracts deployed on-chain over the course of a run. The execution harness is the
// sole writer: it registers each newly deployed contract, making it immediately selectable by any generation request
// issued after the registration completes. Registrations are insert-only; contracts are never removed mid-run.
type DeployedContractRegistry struct {
	// contracts describes the registered contracts, keyed by deployment address.
	contracts map[common.Address]*Contract

	// lock guards contracts for concurrent access between the registering harness and generation readers.
	lock sync.RWMutex
}

// NewDeployedContractRegistry creates an empty DeployedContractRegistry.
func NewDeployedContractRegistry() *DeployedContractRegistry {
	return &DeployedContractRegistry{
		contracts: make(map[common.Address]*Contract),
	}
}

// Register adds a deployed contract to the registry. The contract becomes selectable by generation requests issued
// strictly after this method returns.
func (r *DeployedContractRegistry) Register(contract *Contract) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.contracts[contract.Address()] = contract
}

// Count returns the number of contracts currently registered.
func (r *DeployedContractRegistry) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.contracts)
}

// Contract returns the registered contract deployed at the provided address, or nil if no such contract exists.
func (r *DeployedContractRegistry) Contract(address common.Address) *Contract {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.contracts[address]
}

// EligibleContracts returns a snapshot of all registered contracts whose ABI exposes at least one method. The
// snapshot is taken under the read lock and returned as a freshly allocated slice, so callers can perform further
// selection work without holding the registry lock. Registered Contract objects are immutable, so sharing their
// pointers across the lock boundary is safe.
func (r *DeployedContractRegistry) EligibleContracts() []*Contract {
	r.lock.RLock()
	defer r.lock.RUnlock()

	eligible := make([]*Contract, 0, len(r.contracts))
	for _, contract := range r.contracts {
		if contract.MethodCount() > 0 {
			eligible = append(eligible, contract)
		}
	}
	return eligible
}
