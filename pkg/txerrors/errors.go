// Package txerrors implements the builder's error taxonomy: a closed set
// of Kinds (spec §7), each optionally wrapping an inner error from the
// sub-builder or proof backend that raised it.
package txerrors

import (
	"fmt"

	"github.com/ccoin/txbuilder/pkg/amount"
)

// Kind enumerates the builder's error taxonomy.
type Kind string

const (
	ChangeIsNegative Kind = "ChangeIsNegative"
	InvalidAmount    Kind = "InvalidAmount"
	NoChangeAddress  Kind = "NoChangeAddress"
	TransparentBuild Kind = "TransparentBuild"
	SaplingBuild     Kind = "SaplingBuild"
	OrchardBuild     Kind = "OrchardBuild"
	OrchardComponent Kind = "OrchardComponent"
	NU5Inactive      Kind = "NU5Inactive"
	TzeBuild         Kind = "TzeBuild"
)

// Error is the builder's error type: a Kind plus an optional wrapped
// inner error and, for ChangeIsNegative, the offending amount.
type Error struct {
	Kind    Kind
	Inner   error
	Amount  amount.Amount // only meaningful for ChangeIsNegative
	Message string        // OrchardComponent's detail, or NU5Inactive's configured-upgrade diagnostic
}

func (e *Error) Error() string {
	switch e.Kind {
	case ChangeIsNegative:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Amount)
	case OrchardComponent:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Message)
	default:
		if e.Message != "" {
			return fmt.Sprintf("%s(%s)", e.Kind, e.Message)
		}
		if e.Inner != nil {
			return fmt.Sprintf("%s(%v)", e.Kind, e.Inner)
		}
		return string(e.Kind)
	}
}

// Unwrap exposes the wrapped inner error to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Equal compares two builder errors for testing. Kinds must match; inner
// errors are compared structurally when possible (errors.Is-style via
// ==), falling back to comparing their canonical string form when the
// inner error type has no structural equality of its own (e.g. the
// Orchard/PLONK prover's error type) — see DESIGN.md for why this
// fallback is still needed for OrchardBuild specifically.
func (e *Error) Equal(other error) bool {
	o, ok := other.(*Error)
	if !ok {
		return false
	}
	if e.Kind != o.Kind {
		return false
	}
	switch e.Kind {
	case ChangeIsNegative:
		return e.Amount == o.Amount
	case OrchardComponent:
		return e.Message == o.Message
	}
	if e.Message != o.Message {
		return false
	}
	if e.Inner == nil || o.Inner == nil {
		return e.Inner == o.Inner
	}
	if e.Inner == o.Inner {
		return true
	}
	return e.Inner.Error() == o.Inner.Error()
}

// New constructs an Error of the given Kind with no inner error or amount.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Wrap constructs an Error of the given Kind wrapping inner.
func Wrap(kind Kind, inner error) *Error {
	return &Error{Kind: kind, Inner: inner}
}

// NegativeChange constructs a ChangeIsNegative error for the given
// (negative) change amount.
func NegativeChange(change amount.Amount) *Error {
	return &Error{Kind: ChangeIsNegative, Amount: change}
}

// Component constructs an OrchardComponent error with a free-form message.
func Component(message string) *Error {
	return &Error{Kind: OrchardComponent, Message: message}
}

// NewNU5Inactive constructs a NU5Inactive error naming the upgrades
// actually configured on the builder's Params, so a caller can see why
// NU5 (and therefore Orchard/TZE) was not considered active at the
// target height.
func NewNU5Inactive(configured []string) *Error {
	return &Error{Kind: NU5Inactive, Message: fmt.Sprintf("configured upgrades: %v", configured)}
}
