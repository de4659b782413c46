package valuegeneration

import (
	"math/rand"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CalldataDictionary stores candidate argument values keyed by canonical function signature and parameter position.
// It is constructed once per run from a sampled chain state snapshot and used to bias calldata synthesis toward
// values specific to a given function parameter. The execution harness may append newly observed candidates mid-run;
// the backing data is never re-scanned during generation.
type CalldataDictionary struct {
	// entries describes candidate values, keyed by function signature, then by zero-based parameter position.
	// Stored candidates must use the Go representation the ABI provider expects for the parameter's type.
	entries map[string]map[int][]any

	// lock guards entries for concurrent access between the appending harness and generation readers.
	lock sync.RWMutex
}

// NewCalldataDictionary creates an empty CalldataDictionary.
func NewCalldataDictionary() *CalldataDictionary {
	return &CalldataDictionary{
		entries: make(map[string]map[int][]any),
	}
}

// AddCandidate records a candidate value for the given function signature and parameter position.
func (d *CalldataDictionary) AddCandidate(signature string, position int, value any) {
	d.lock.Lock()
	defer d.lock.Unlock()
	positions, ok := d.entries[signature]
	if !ok {
		positions = make(map[int][]any)
		d.entries[signature] = positions
	}
	positions[position] = append(positions[position], value)
}

// CandidateCount returns the count of candidates recorded for the given function signature and parameter position.
func (d *CalldataDictionary) CandidateCount(signature string, position int) int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.entries[signature][position])
}

// RandomCandidate returns a random candidate value recorded for the given function signature and parameter
// position, using the provided random provider. Returns the candidate and true if at least one candidate exists,
// or nil and false otherwise.
func (d *CalldataDictionary) RandomCandidate(signature string, position int, randomProvider *rand.Rand) (any, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	candidates := d.entries[signature][position]
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[randomProvider.Intn(len(candidates))], true
}

// Clone creates a cheap copy of the dictionary. The candidate slices are copied, but the candidate values themselves
// are shared, as they are treated as immutable once recorded.
func (d *CalldataDictionary) Clone() *CalldataDictionary {
	d.lock.RLock()
	defer d.lock.RUnlock()

	cloned := make(map[string]map[int][]any, len(d.entries))
	for signature, positions := range d.entries {
		clonedPositions := make(map[int][]any, len(positions))
		for position, candidates := range positions {
			clonedPositions[position] = slices.Clone(candidates)
		}
		cloned[signature] = clonedPositions
	}
	return &CalldataDictionary{entries: cloned}
}

// Signatures returns the function signatures for which the dictionary holds candidates.
func (d *CalldataDictionary) Signatures() []string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return maps.Keys(d.entries)
}
