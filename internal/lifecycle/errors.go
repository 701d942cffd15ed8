package lifecycle

import "fmt"

// ValidationError wraps a user-facing message about a structurally
// incomplete request (missing required field). Never partially applied.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// InvalidTransitionError reports a business-rule violation: an illegal stage
// edge, a failed precondition, a sub-status/stage mismatch or a mock-gating
// failure. Cause carries the human-readable explanation.
type InvalidTransitionError struct {
	From  Stage
	To    Stage
	Cause string
}

func (e *InvalidTransitionError) Error() string {
	if e.From == "" && e.To == "" {
		return e.Cause
	}
	if e.Cause == "" {
		return fmt.Sprintf("transition %s → %s is not allowed", e.From, e.To)
	}
	return fmt.Sprintf("transition %s → %s is not allowed: %s", e.From, e.To, e.Cause)
}

// invalidTransition is shorthand used by the engine and rule chain.
func invalidTransition(from, to Stage, cause string) error {
	return &InvalidTransitionError{From: from, To: to, Cause: cause}
}
