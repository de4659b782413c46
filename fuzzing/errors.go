package fuzzing

import "errors"

// Generation-time failures are local to a single draw and are surfaced synchronously to the caller. An empty
// eligible set cannot be fixed by redrawing, so generation never retries internally on these errors; they indicate
// a misconfigured run.
var (
	// ErrNoEligibleContract indicates the deployed contract registry holds no contract exposing any function.
	ErrNoEligibleContract = errors.New("no registered contract exposes any function eligible for call generation")

	// ErrNoEligibleMethod indicates a selected contract has no method remaining after targeting/mutability filtering.
	ErrNoEligibleMethod = errors.New("contract has no method eligible for call generation")

	// ErrNoEligibleSender indicates sender selection could not produce a non-excluded sender within its bounded
	// number of attempts.
	ErrNoEligibleSender = errors.New("could not select a sender which is not excluded")

	// ErrUnknownOverrideTarget indicates an override call generator's target address does not resolve to a
	// registered contract.
	ErrUnknownOverrideTarget = errors.New("override target address is not a registered contract")
)
