package engine

import "fmt"

// ValidationError rejects bad input before any engine state is touched.
// The caller can always recover by resubmitting corrected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

// NotFoundError is a normal negative result, not an exception path.
type NotFoundError struct {
	Resource string // "market" or "order"
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found: " + e.ID
}

// InvariantViolationError indicates a bug inside the engine, e.g. a price
// level still indexed after becoming empty. It aborts the operation with
// full context and must never be silently swallowed. Trades already emitted
// before the violation stay committed.
type InvariantViolationError struct {
	MarketID string
	Outcome  Outcome
	Detail   string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in market %s/%s: %s", e.MarketID, e.Outcome, e.Detail)
}
