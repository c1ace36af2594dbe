// Package matcher error kinds. Construction-time violations surface
// immediately as wrapped sentinel errors; solver-time contradictions
// are never errors, they prune a branch.
package matcher

import "errors"

var (
	// ErrInvalidConstraint reports a constraint whose expression side
	// contains a metavariable, or whose pattern binds a metavariable.
	ErrInvalidConstraint = errors.New("invalid constraint")

	// ErrInvalidSubstitution reports a substitution whose first
	// argument is not a metavariable.
	ErrInvalidSubstitution = errors.New("invalid substitution")

	// ErrMalformedExpression reports a structurally invalid expression
	// (binder without body, dangling de Bruijn marker, ...).
	ErrMalformedExpression = errors.New("malformed expression")

	// ErrBudgetExceeded reports that a search ran out of its step
	// budget before the stream was exhausted.
	ErrBudgetExceeded = errors.New("step budget exceeded")
)
