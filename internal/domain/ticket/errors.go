package ticket

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError lists the draft fields that block an action.
type ValidationError struct {
	Fields  []string
	Message string
}

func NewValidationError(msg string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Message: msg}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s (%s)", e.Message, strings.Join(e.Fields, ", "))
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionSettle  Action = "settle"
	ActionEdit    Action = "edit"
)

// StateError is returned for an illegal lifecycle transition.
type StateError struct {
	Action Action
	State  State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s ticket in state %s", e.Action, e.State)
}

type StoreErrorKind string

const (
	StoreNotFound         StoreErrorKind = "not_found"
	StorePermissionDenied StoreErrorKind = "permission_denied"
	StoreUnavailable      StoreErrorKind = "unavailable"
	StoreConflict         StoreErrorKind = "conflict"
	StoreUnknown          StoreErrorKind = "unknown"
)

type StoreError struct {
	Op   string
	Kind StoreErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("store %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreKind reports whether err is a StoreError of the given kind.
func IsStoreKind(err error, kind StoreErrorKind) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == kind
}

type WarningKind string

const (
	WarningNearDuplicate   WarningKind = "near_duplicate"
	WarningUnmatchedAuto   WarningKind = "unmatched_auto"
	WarningUnmatchedManual WarningKind = "unmatched_manual"
	WarningStaleRead       WarningKind = "stale_read"
	WarningTruncated       WarningKind = "truncated_read"
)

// ReconciliationWarning is informational and never blocks a write.
type ReconciliationWarning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
	Refs    []string    `json:"refs,omitempty"`
}

func (w ReconciliationWarning) Error() string {
	return string(w.Kind) + ": " + w.Message
}
