package services

import "fmt"

// ValidationError reports a request that failed a precondition before
// any mutation happened: malformed question, empty required field, or
// an operation attempted in the wrong game state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError reports a lookup by an unknown PIN or player id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// IndexError reports an out-of-range question index.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range (%d questions)", e.Index, e.Length)
}

// ResourceExhaustedError reports that a bounded generator ran out of
// attempts, e.g. the PIN namespace was too contended to find a free
// pin within the configured attempt budget.
type ResourceExhaustedError struct {
	Resource string
	Attempts int
}

func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("could not allocate %s after %d attempts", e.Resource, e.Attempts)
}
