// Package matcher provides the expression model consumed by the
// higher-order pattern matcher. This file defines the three-variant
// expression tree (Symbol, Application, Binder) together with the
// attribute machinery that marks metavariables and de Bruijn index
// markers.
//
// # Expression Model
//
// Expressions form a strict tree (no back-edges) with three variants:
//
//   - Symbol: a named atom carrying a small attribute map
//   - Application: an ordered, non-empty sequence of child expressions
//   - Binder: a head symbol, one or more bound variable symbols, and a body
//
// Expressions are treated as immutable values by the matcher. Every
// operation that needs to modify a tree works on a fresh copy, so a
// single expression may be shared freely between constraints, problems,
// and solutions.
//
// # Structural Equality
//
// Equal implements structural equality. Of the attributes only the
// metavariable flag, the de Bruijn indices, and the encoded-binder
// arity participate; bookkeeping attributes such as the preserved
// original name of a marker are ignored. After de Bruijn encoding this
// makes α-equivalence coincide with Equal (see debruijn.go).
package matcher

import (
	"fmt"
	"strings"
)

// Reserved symbol names recognized by the matcher.
const (
	// EFAHeadName is the reserved head of an Expression Function
	// Application: (@ F a1 ... an) with F a metavariable.
	EFAHeadName = "@"

	// LambdaName is the reserved head introduced by the de Bruijn
	// encoder when it rewrites binders as applications.
	LambdaName = "λ"
)

// Attribute keys. Only attrMetavariable, attrDeBruijn and
// attrBoundCount are visible to structural equality.
const (
	attrMetavariable = "metavariable"
	attrDeBruijn     = "de bruijn"
	attrOriginalName = "original name"
	attrBoundCount   = "bound count"
	attrBoundNames   = "bound names"
)

// Attributes is the small side-map carried by symbols.
type Attributes map[string]any

// copyAttributes returns a fresh attribute map. Slices stored under
// attrBoundNames are duplicated so copies never alias.
func copyAttributes(attrs Attributes) Attributes {
	if len(attrs) == 0 {
		return nil
	}
	out := make(Attributes, len(attrs))
	for k, v := range attrs {
		if names, ok := v.([]string); ok {
			dup := make([]string, len(names))
			copy(dup, names)
			out[k] = dup
			continue
		}
		out[k] = v
	}
	return out
}

// Expression is the interface implemented by all tree variants.
// Implementations must be safe to share between goroutines once
// constructed; none of the methods mutate the receiver.
type Expression interface {
	// String renders the stable debug notation: metavariables carry a
	// trailing "__", the EFA head prints as "@" and binders print as
	// "(head v1 ... vn , body)".
	String() string

	// Equal reports structural equality as described in the package
	// comment.
	Equal(other Expression) bool

	// Copy returns a deep copy of the expression.
	Copy() Expression

	// ContainsMetavariable reports whether any symbol in the tree
	// carries the metavariable flag.
	ContainsMetavariable() bool
}

// Symbol is a named atom. Symbols may carry the metavariable flag or a
// de Bruijn marker; see NewMetavariable and newDeBruijnMarker.
type Symbol struct {
	name  string
	attrs Attributes
}

// NewSymbol creates a plain symbol with the given name.
func NewSymbol(name string) *Symbol {
	return &Symbol{name: name}
}

// NewMetavariable creates a symbol flagged as a metavariable.
// Metavariables are the substitution targets of the matcher.
func NewMetavariable(name string) *Symbol {
	return &Symbol{name: name, attrs: Attributes{attrMetavariable: true}}
}

// newDeBruijnMarker creates the marker symbol (DB, binder, position)
// standing for the position-th variable bound binder levels up. The
// original name is preserved solely for printing and decoding.
func newDeBruijnMarker(binder, position int, originalName string) *Symbol {
	attrs := Attributes{attrDeBruijn: [2]int{binder, position}}
	if originalName != "" {
		attrs[attrOriginalName] = originalName
	}
	return &Symbol{name: originalName, attrs: attrs}
}

// newLambdaSymbol creates the reserved λ head for an encoded binder
// that binds count variables. boundNames is kept for decoding and
// printing only and never participates in equality.
func newLambdaSymbol(count int, boundNames []string) *Symbol {
	attrs := Attributes{attrBoundCount: count}
	if len(boundNames) > 0 {
		dup := make([]string, len(boundNames))
		copy(dup, boundNames)
		attrs[attrBoundNames] = dup
	}
	return &Symbol{name: LambdaName, attrs: attrs}
}

// Name returns the symbol's name. For de Bruijn markers this is the
// preserved original name, possibly empty.
func (s *Symbol) Name() string { return s.name }

// IsMetavariable reports whether the symbol carries the metavariable flag.
func (s *Symbol) IsMetavariable() bool {
	v, ok := s.attrs[attrMetavariable]
	return ok && v == true
}

// DeBruijnIndices returns the marker indices (binder, position) and
// true when the symbol is a de Bruijn marker.
func (s *Symbol) DeBruijnIndices() (int, int, bool) {
	v, ok := s.attrs[attrDeBruijn]
	if !ok {
		return 0, 0, false
	}
	idx := v.([2]int)
	return idx[0], idx[1], true
}

// boundCount returns the encoded-binder arity carried by a λ symbol,
// or (0, false) for every other symbol.
func (s *Symbol) boundCount() (int, bool) {
	v, ok := s.attrs[attrBoundCount]
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// boundNames returns the preserved bound-variable names of a λ symbol.
func (s *Symbol) boundNames() []string {
	v, ok := s.attrs[attrBoundNames]
	if !ok {
		return nil
	}
	return v.([]string)
}

// isLambda reports whether the symbol is the reserved λ head.
func (s *Symbol) isLambda() bool {
	_, ok := s.boundCount()
	return s.name == LambdaName && ok
}

// String renders the symbol in debug notation.
func (s *Symbol) String() string {
	if i, j, ok := s.DeBruijnIndices(); ok {
		if name, ok := s.attrs[attrOriginalName].(string); ok && name != "" {
			return name
		}
		return fmt.Sprintf("db(%d,%d)", i, j)
	}
	if s.IsMetavariable() {
		return s.name + "__"
	}
	return s.name
}

// Equal reports structural equality between symbols. De Bruijn markers
// compare by indices alone; all other symbols compare by name,
// metavariable flag and (for λ heads) bound count.
func (s *Symbol) Equal(other Expression) bool {
	o, ok := other.(*Symbol)
	if !ok {
		return false
	}
	si, sj, sMarker := s.DeBruijnIndices()
	oi, oj, oMarker := o.DeBruijnIndices()
	if sMarker || oMarker {
		return sMarker && oMarker && si == oi && sj == oj
	}
	if s.name != o.name || s.IsMetavariable() != o.IsMetavariable() {
		return false
	}
	sc, sHas := s.boundCount()
	oc, oHas := o.boundCount()
	return sHas == oHas && sc == oc
}

// Copy returns a deep copy of the symbol.
func (s *Symbol) Copy() Expression {
	return &Symbol{name: s.name, attrs: copyAttributes(s.attrs)}
}

// copySymbol is Copy with a concrete return type.
func (s *Symbol) copySymbol() *Symbol {
	return &Symbol{name: s.name, attrs: copyAttributes(s.attrs)}
}

// ContainsMetavariable reports whether the symbol is a metavariable.
func (s *Symbol) ContainsMetavariable() bool { return s.IsMetavariable() }

// Application is an ordered, non-empty sequence of child expressions.
// The first child is conventionally the head.
type Application struct {
	children []Expression
}

// NewApplication creates an application. The signature enforces the
// structural invariant that applications are non-empty.
func NewApplication(first Expression, rest ...Expression) *Application {
	children := make([]Expression, 0, 1+len(rest))
	children = append(children, first)
	children = append(children, rest...)
	return &Application{children: children}
}

// newApplicationFromSlice wraps an already-built child slice. The
// caller must guarantee the slice is non-empty and unshared.
func newApplicationFromSlice(children []Expression) *Application {
	return &Application{children: children}
}

// Children returns the child slice. Callers must not mutate it.
func (a *Application) Children() []Expression { return a.children }

// Arity returns the number of children.
func (a *Application) Arity() int { return len(a.children) }

// Head returns the first child.
func (a *Application) Head() Expression { return a.children[0] }

// String renders the application as a parenthesized child list.
func (a *Application) String() string {
	if n, headful, ok := lambdaForm(a); ok {
		return lambdaString(a, n, headful)
	}
	parts := make([]string, len(a.children))
	for i, c := range a.children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Equal reports element-wise structural equality.
func (a *Application) Equal(other Expression) bool {
	o, ok := other.(*Application)
	if !ok || len(a.children) != len(o.children) {
		return false
	}
	for i, c := range a.children {
		if !c.Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the application.
func (a *Application) Copy() Expression {
	children := make([]Expression, len(a.children))
	for i, c := range a.children {
		children[i] = c.Copy()
	}
	return &Application{children: children}
}

// ContainsMetavariable reports whether any child contains a metavariable.
func (a *Application) ContainsMetavariable() bool {
	for _, c := range a.children {
		if c.ContainsMetavariable() {
			return true
		}
	}
	return false
}

// Binder is a head symbol together with one or more bound variable
// symbols and a body, e.g. (∀ x , P(x)). The de Bruijn encoder
// rewrites binders into λ-headed applications; the matcher itself only
// ever sees the encoded form.
type Binder struct {
	head  *Symbol
	bound []*Symbol
	body  Expression
}

// NewBinder creates a binder. It returns ErrMalformedExpression when
// the head or body is missing, no variables are bound, or a bound
// variable is nil. Bound variables are otherwise not inspected: a
// metavariable may be bound here, and NewConstraint rejects it later.
func NewBinder(head *Symbol, bound []*Symbol, body Expression) (*Binder, error) {
	if head == nil {
		return nil, fmt.Errorf("Binder: missing head: %w", ErrMalformedExpression)
	}
	if body == nil {
		return nil, fmt.Errorf("Binder: missing body: %w", ErrMalformedExpression)
	}
	if len(bound) == 0 {
		return nil, fmt.Errorf("Binder: no bound variables: %w", ErrMalformedExpression)
	}
	for i, v := range bound {
		if v == nil {
			return nil, fmt.Errorf("Binder: nil bound variable at index %d: %w", i, ErrMalformedExpression)
		}
	}
	vars := make([]*Symbol, len(bound))
	copy(vars, bound)
	return &Binder{head: head, bound: vars, body: body}, nil
}

// MustBinder is NewBinder for statically well-formed binders; it
// panics on a malformed one. Intended for tests and examples.
func MustBinder(head *Symbol, bound []*Symbol, body Expression) *Binder {
	b, err := NewBinder(head, bound, body)
	if err != nil {
		panic(err)
	}
	return b
}

// Head returns the binder head symbol.
func (b *Binder) Head() *Symbol { return b.head }

// BoundVariables returns the bound variable symbols in order.
func (b *Binder) BoundVariables() []*Symbol { return b.bound }

// Body returns the binder body.
func (b *Binder) Body() Expression { return b.body }

// String renders the binder as "(head v1 ... vn , body)".
func (b *Binder) String() string {
	parts := make([]string, 0, len(b.bound)+1)
	parts = append(parts, b.head.String())
	for _, v := range b.bound {
		parts = append(parts, v.String())
	}
	return "(" + strings.Join(parts, " ") + " , " + b.body.String() + ")"
}

// Equal reports raw structural equality, including bound-variable
// names. α-equivalence is decided on encoded forms, not here.
func (b *Binder) Equal(other Expression) bool {
	o, ok := other.(*Binder)
	if !ok || !b.head.Equal(o.head) || len(b.bound) != len(o.bound) {
		return false
	}
	for i, v := range b.bound {
		if !v.Equal(o.bound[i]) {
			return false
		}
	}
	return b.body.Equal(o.body)
}

// Copy returns a deep copy of the binder.
func (b *Binder) Copy() Expression {
	bound := make([]*Symbol, len(b.bound))
	for i, v := range b.bound {
		bound[i] = v.copySymbol()
	}
	return &Binder{head: b.head.copySymbol(), bound: bound, body: b.body.Copy()}
}

// ContainsMetavariable reports whether the head, a bound variable or
// the body contains a metavariable.
func (b *Binder) ContainsMetavariable() bool {
	if b.head.IsMetavariable() {
		return true
	}
	for _, v := range b.bound {
		if v.IsMetavariable() {
			return true
		}
	}
	return b.body.ContainsMetavariable()
}

// ContainsMetavariable reports whether e contains a symbol flagged as
// a metavariable. Exposed as a package function for callers that hold
// the interface type.
func ContainsMetavariable(e Expression) bool {
	return e.ContainsMetavariable()
}

// lambdaForm recognizes encoded binders. It returns the bound count, a
// flag telling whether the application carries an explicit binder head
// (three children) or is a pure abstraction (two children), and
// whether e is a λ form at all.
func lambdaForm(e Expression) (count int, headful bool, ok bool) {
	app, isApp := e.(*Application)
	if !isApp || len(app.children) < 2 || len(app.children) > 3 {
		return 0, false, false
	}
	head, isSym := app.children[0].(*Symbol)
	if !isSym || !head.isLambda() {
		return 0, false, false
	}
	n, _ := head.boundCount()
	return n, len(app.children) == 3, true
}

// lambdaBody returns the body child of a λ form.
func lambdaBody(app *Application) Expression {
	return app.children[len(app.children)-1]
}

// lambdaString renders an encoded binder with its preserved names.
func lambdaString(app *Application, count int, headful bool) string {
	head := app.children[0].(*Symbol)
	names := head.boundNames()
	parts := make([]string, 0, count+1)
	if headful {
		parts = append(parts, app.children[1].String())
	} else {
		parts = append(parts, LambdaName)
	}
	for k := 0; k < count; k++ {
		if k < len(names) && names[k] != "" {
			parts = append(parts, names[k])
		} else {
			parts = append(parts, fmt.Sprintf("x%d", k+1))
		}
	}
	return "(" + strings.Join(parts, " ") + " , " + lambdaBody(app).String() + ")"
}

// Terse constructors used throughout the tests and examples.

// Sym is shorthand for NewSymbol.
func Sym(name string) *Symbol { return NewSymbol(name) }

// Meta is shorthand for NewMetavariable.
func Meta(name string) *Symbol { return NewMetavariable(name) }

// App is shorthand for NewApplication.
func App(first Expression, rest ...Expression) *Application {
	return NewApplication(first, rest...)
}

// Bind is shorthand for MustBinder with a symbolic head.
func Bind(head string, vars []string, body Expression) *Binder {
	bound := make([]*Symbol, len(vars))
	for i, v := range vars {
		bound[i] = NewSymbol(v)
	}
	return MustBinder(NewSymbol(head), bound, body)
}
