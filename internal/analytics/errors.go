package analytics

import "fmt"

// StoreUnavailableError indicates the event store could not be queried.
// Aggregations never return partial or zero-filled data disguised as real
// results; the underlying failure is surfaced instead.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("event store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// NewStoreUnavailableError wraps a store failure.
func NewStoreUnavailableError(err error) *StoreUnavailableError {
	return &StoreUnavailableError{Err: err}
}
