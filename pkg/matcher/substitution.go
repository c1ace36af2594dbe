// Substitutions map one metavariable to a replacement expression.
// They are born immutable apart from Substitute, which rewrites the
// replacement in place and refreshes the cached metavariable-name set.
package matcher

import (
	"fmt"

	set "github.com/hashicorp/go-set/v3"
)

// Substitution is a (metavariable, expression) pair. The replacement
// is held de Bruijn encoded; the set of metavariable names occurring
// inside it is cached so the solver can test resolution cheaply.
type Substitution struct {
	meta        *Symbol
	replacement Expression
	metaNames   *set.Set[string]
}

// NewSubstitution creates a substitution replacing m by e. It returns
// ErrInvalidSubstitution unless m is a metavariable. The replacement
// is encoded on the way in, so callers may pass raw binder syntax.
func NewSubstitution(m *Symbol, e Expression) (*Substitution, error) {
	if m == nil || !m.IsMetavariable() {
		return nil, fmt.Errorf("Substitution: first argument must be a metavariable: %w", ErrInvalidSubstitution)
	}
	if e == nil {
		return nil, fmt.Errorf("Substitution: missing replacement: %w", ErrInvalidSubstitution)
	}
	return newEncodedSubstitution(m.copySymbol(), Encode(e)), nil
}

// newEncodedSubstitution wires up an already-encoded replacement.
func newEncodedSubstitution(m *Symbol, replacement Expression) *Substitution {
	return &Substitution{
		meta:        m,
		replacement: replacement,
		metaNames:   metavariableNames(replacement),
	}
}

// Metavariable returns the symbol this substitution replaces.
func (s *Substitution) Metavariable() *Symbol { return s.meta }

// Replacement returns the encoded replacement expression. Callers
// must treat it as immutable.
func (s *Substitution) Replacement() Expression { return s.replacement }

// MetavariableNames returns the cached set of metavariable names
// occurring in the replacement. Callers must not mutate the set.
func (s *Substitution) MetavariableNames() *set.Set[string] { return s.metaNames }

// IsResolved reports whether the replacement is metavariable-free.
func (s *Substitution) IsResolved() bool { return s.metaNames.Empty() }

// AppliedTo returns a copy of target with every subexpression equal to
// the metavariable replaced by a fresh copy of the replacement.
// Replacement is simultaneous: metavariables inside inserted copies
// are not re-substituted. Redexes created by instantiating an EFA
// function slot are β-reduced eagerly.
func (s *Substitution) AppliedTo(target Expression) Expression {
	return betaReduceAll(replaceMetavariable(target, s.meta, s.replacement))
}

// Substitute rewrites the replacement in place by applying each given
// substitution in sequence, then refreshes the cached name set.
func (s *Substitution) Substitute(others ...*Substitution) {
	for _, o := range others {
		s.replacement = o.AppliedTo(s.replacement)
	}
	s.metaNames = metavariableNames(s.replacement)
}

// Compose returns a new substitution whose replacement has other
// applied to it; the receiver is unchanged.
func (s *Substitution) Compose(other *Substitution) *Substitution {
	c := s.Copy()
	c.Substitute(other)
	return c
}

// Copy returns an independent substitution sharing the immutable
// replacement value.
func (s *Substitution) Copy() *Substitution {
	return &Substitution{meta: s.meta, replacement: s.replacement, metaNames: s.metaNames}
}

// Equal reports whether two substitutions replace the same
// metavariable by structurally equal expressions.
func (s *Substitution) Equal(other *Substitution) bool {
	return other != nil && s.meta.Equal(other.meta) && s.replacement.Equal(other.replacement)
}

// String renders the substitution as "(M__,expr)".
func (s *Substitution) String() string {
	return fmt.Sprintf("(%s,%s)", s.meta.String(), s.replacement.String())
}

// replaceMetavariable performs the simultaneous replacement walk.
// Inserted copies are returned without being re-walked.
func replaceMetavariable(e Expression, meta *Symbol, repl Expression) Expression {
	switch t := e.(type) {
	case *Symbol:
		if meta.Equal(t) {
			return repl.Copy()
		}
		return t.Copy()
	case *Application:
		children := t.Children()
		out := make([]Expression, len(children))
		for i, c := range children {
			out[i] = replaceMetavariable(c, meta, repl)
		}
		return newApplicationFromSlice(out)
	case *Binder:
		body := replaceMetavariable(t.Body(), meta, repl)
		bound := make([]*Symbol, len(t.BoundVariables()))
		for i, v := range t.BoundVariables() {
			bound[i] = v.copySymbol()
		}
		return &Binder{head: t.Head().copySymbol(), bound: bound, body: body}
	}
	return e.Copy()
}

// metavariableNames collects the names of all metavariables in e.
func metavariableNames(e Expression) *set.Set[string] {
	names := set.New[string](0)
	collectMetavariableNames(e, names)
	return names
}

func collectMetavariableNames(e Expression, into *set.Set[string]) {
	switch t := e.(type) {
	case *Symbol:
		if t.IsMetavariable() {
			into.Insert(t.Name())
		}
	case *Application:
		for _, c := range t.Children() {
			collectMetavariableNames(c, into)
		}
	case *Binder:
		collectMetavariableNames(t.Head(), into)
		for _, v := range t.BoundVariables() {
			collectMetavariableNames(v, into)
		}
		collectMetavariableNames(t.Body(), into)
	}
}
