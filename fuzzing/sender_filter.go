package fuzzing

import (
	"github.com/ethereum/go-ethereum/common"
)

// SenderFilterSet describes per-run targeting and exclusion rules for sender selection. It is immutable for the
// lifetime of a run. If the targeted list is non-empty, senders are drawn exclusively from it and the exclusion set
// is never consulted (targeting takes precedence).
type SenderFilterSet struct {
	// targeted describes an explicit allow-list of sender addresses.
	targeted []common.Address

	// excluded describes sender addresses which must never be generated. Stored as a set for constant-time
	// membership checks during rejection sampling.
	excluded map[common.Address]struct{}
}

// NewSenderFilterSet creates a SenderFilterSet from the provided targeted and excluded address lists.
func NewSenderFilterSet(targeted []common.Address, excluded []common.Address) *SenderFilterSet {
	excludedSet := make(map[common.Address]struct{}, len(excluded))
	for _, address := range excluded {
		excludedSet[address] = struct{}{}
	}
	targetedCopy := make([]common.Address, len(targeted))
	copy(targetedCopy, targeted)
	return &SenderFilterSet{
		targeted: targetedCopy,
		excluded: excludedSet,
	}
}

// HasTargets indicates whether an explicit sender allow-list was configured.
func (s *SenderFilterSet) HasTargets() bool {
	return len(s.targeted) > 0
}

// Targeted returns the explicit sender allow-list. The returned slice must not be mutated.
func (s *SenderFilterSet) Targeted() []common.Address {
	return s.targeted
}

// IsExcluded indicates whether the provided address appears in the exclusion set.
func (s *SenderFilterSet) IsExcluded(address common.Address) bool {
	_, excluded := s.excluded[address]
	return excluded
}

// ExcludedCount returns the count of addresses in the exclusion set.
func (s *SenderFilterSet) ExcludedCount() int {
	return len(s.excluded)
}
