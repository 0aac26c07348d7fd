// Package kinerr classifies the failures of mechanism loading, solution
// building and sensitivity estimation.
//
// Every classified failure is an [*Error] carrying a [Kind]. Callers match
// either with [IsKind] or with errors.Is against the per-kind sentinels:
//
//	if errors.Is(err, kinerr.ErrIndex) {
//	    // bad reaction index
//	}
package kinerr

import (
	"errors"
	"fmt"
)

// Kind is a coarse-grained categorization for errors.
type Kind string

const (
	KindType           Kind = "type"
	KindMechanismLoad  Kind = "mechanism_load"
	KindIndex          Kind = "index"
	KindValue          Kind = "value"
	KindObservable     Kind = "observable"
	KindDivisionByZero Kind = "division_by_zero"
)

// Sentinel errors, one per kind.
var (
	ErrType           = errors.New("kinsens: bad input type")
	ErrMechanismLoad  = errors.New("kinsens: mechanism could not be loaded")
	ErrIndex          = errors.New("kinsens: index out of range")
	ErrValue          = errors.New("kinsens: invalid value")
	ErrObservable     = errors.New("kinsens: observable evaluation failed")
	ErrDivisionByZero = errors.New("kinsens: division by zero")
)

var sentinels = map[Kind]error{
	KindType:           ErrType,
	KindMechanismLoad:  ErrMechanismLoad,
	KindIndex:          ErrIndex,
	KindValue:          ErrValue,
	KindObservable:     ErrObservable,
	KindDivisionByZero: ErrDivisionByZero,
}

// Phase names the evaluation an observable failure happened in.
type Phase string

const (
	PhaseBaseline  Phase = "baseline"
	PhasePerturbed Phase = "perturbed"
)

// Error wraps an underlying error with operation context and a kind.
type Error struct {
	Op     string
	Kind   Kind
	Path   string // mechanism path, when relevant
	Index  *int   // reaction index, when relevant
	Phase  Phase
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Index != nil {
		base += fmt.Sprintf(" (reaction=%d)", *e.Index)
	}
	if e.Phase != "" {
		base += fmt.Sprintf(" (phase=%s)", e.Phase)
	}
	if e.Detail != "" {
		base += ": " + e.Detail
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New builds an *Error without an underlying cause.
func New(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around err.
func Wrap(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// AtIndex records the offending reaction index and returns e.
func (e *Error) AtIndex(i int) *Error {
	e.Index = &i
	return e
}

// IsKind helps callers classify errors without unpacking them.
func IsKind(err error, kind Kind) bool {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return ""
}
