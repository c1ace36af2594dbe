// Expression Function Applications. An EFA is an application
// (@ F a1 ... an) whose function slot F is a metavariable; the solver
// instantiates F with λ-abstractions built here (constant, projection,
// imitation).
package matcher

import (
	"fmt"
	"sync/atomic"
)

// Counter behind freshMetavariable.
var freshCounter int64

// IsEFA reports whether e is an Expression Function Application:
// an application headed by the reserved @ symbol whose second child is
// a metavariable.
func IsEFA(e Expression) bool {
	_, _, ok := EFAParts(e)
	return ok
}

// EFAParts decomposes an EFA into its function metavariable and its
// argument list. ok is false when e is not an EFA.
func EFAParts(e Expression) (f *Symbol, args []Expression, ok bool) {
	app, isApp := e.(*Application)
	if !isApp || app.Arity() < 2 {
		return nil, nil, false
	}
	head, isSym := app.Head().(*Symbol)
	if !isSym || head.Name() != EFAHeadName || head.IsMetavariable() {
		return nil, nil, false
	}
	if _, _, isMarker := head.DeBruijnIndices(); isMarker {
		return nil, nil, false
	}
	fn, isSym := app.Children()[1].(*Symbol)
	if !isSym || !fn.IsMetavariable() {
		return nil, nil, false
	}
	return fn, app.Children()[2:], true
}

// NewEFA builds (@ f a1 ... an). It returns ErrMalformedExpression
// when f is not a metavariable.
func NewEFA(f *Symbol, args ...Expression) (*Application, error) {
	if f == nil || !f.IsMetavariable() {
		return nil, fmt.Errorf("EFA: function slot must be a metavariable: %w", ErrMalformedExpression)
	}
	children := make([]Expression, 0, 2+len(args))
	children = append(children, NewSymbol(EFAHeadName), f.copySymbol())
	children = append(children, args...)
	return newApplicationFromSlice(children), nil
}

// EFA is NewEFA for statically well-formed applications; it panics on
// a non-metavariable function slot. Intended for tests and examples.
func EFA(f *Symbol, args ...Expression) *Application {
	e, err := NewEFA(f, args...)
	if err != nil {
		panic(err)
	}
	return e
}

// freshMetavariable mints a metavariable named "_H" plus a process-wide
// counter, so minted names never repeat across concurrent searches.
// User symbol names are not checked. Used by the imitation branch for
// the fresh argument EFAs.
func freshMetavariable() *Symbol {
	id := atomic.AddInt64(&freshCounter, 1)
	return NewMetavariable(fmt.Sprintf("_H%d", id))
}

// newAbstraction builds the head-less encoded λ form (λ_n body) used
// for EFA instantiations.
func newAbstraction(count int, body Expression) *Application {
	return NewApplication(newLambdaSymbol(count, nil), body)
}

// boundMarkers returns the markers (0,0) ... (0,count-1) referring to
// an abstraction's own bound variables.
func boundMarkers(count int) []Expression {
	markers := make([]Expression, count)
	for k := 0; k < count; k++ {
		markers[k] = newDeBruijnMarker(0, k, "")
	}
	return markers
}
