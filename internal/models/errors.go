package models

import (
	"fmt"
	"strings"
)

// FailureKind classifies why a submission attempt did not reach success.
type FailureKind string

const (
	FailureValidation FailureKind = "VALIDATION"
	FailureStorage    FailureKind = "STORAGE"
	// FailureInternal marks an identifier collision detected on persist.
	// It must never happen under correct operation and is not retryable.
	FailureInternal FailureKind = "INTERNAL_CONSISTENCY"
)

// FieldError describes a single offending field of a rejected payload.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every offending field of a payload, not just the
// first one found.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.FieldNames(), ", "))
}

// FieldNames returns the offending field names in declaration order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

// StorageError wraps a failed attachment or record write, including
// timeouts. The caller receives it as a generic failure; full detail goes to
// the audit log.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ConsistencyError reports a request id collision on persist.
type ConsistencyError struct {
	RequestID string
	Err       error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency violation for %s: %v", e.RequestID, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return e.Err }
