package services

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned when a batch has no usable records after normalization
var ErrEmptyBatch = errors.New("no valid inventory records in batch")

// ErrMissingName is returned when a record has no display name to resolve
var ErrMissingName = errors.New("card name is required")

// ResolutionError is a storage failure while resolving a catalog entry
type ResolutionError struct {
	Name    string
	SetName string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q (%s): %v", e.Name, e.SetName, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ReconciliationError is a failure applying records to a user's holdings.
// Record is empty for whole-batch failures such as a failed replace-all clear.
type ReconciliationError struct {
	Record string
	Err    error
}

func (e *ReconciliationError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("reconcile holdings: %v", e.Err)
	}
	return fmt.Sprintf("reconcile %q: %v", e.Record, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// LedgerError is a failure writing or reading snapshots and change records
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error { return e.Err }
