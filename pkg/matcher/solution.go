// Solutions: sets of substitutions with pairwise disjoint domains.
// A solution accumulates during search and is yielded as a fresh value
// once every constraint of the originating problem is satisfied.
package matcher

import (
	"strings"

	set "github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
)

// Solution is an unordered set of substitutions whose domains (the
// metavariables they replace) are pairwise disjoint. Insertion order
// is preserved so that rendering and iteration are deterministic.
type Solution struct {
	subs   []*Substitution
	domain *set.Set[string]
}

// NewSolution creates an empty solution.
func NewSolution() *Solution {
	return &Solution{domain: set.New[string](0)}
}

// Copy returns an independent solution. Substitution entries are
// copied because Add rewrites them in place as the search composes new
// assignments.
func (s *Solution) Copy() *Solution {
	subs := make([]*Substitution, len(s.subs))
	for i, sub := range s.subs {
		subs[i] = sub.Copy()
	}
	return &Solution{subs: subs, domain: s.domain.Copy()}
}

// Add composes sub into the solution: existing replacements are
// rewritten with sub first, then sub joins the set. Adding an
// assignment for an already-bound metavariable succeeds only when the
// replacement agrees with the existing one; a disagreement returns
// false and leaves the solution unchanged.
func (s *Solution) Add(sub *Substitution) bool {
	name := sub.Metavariable().Name()
	if s.domain.Contains(name) {
		existing := s.Lookup(sub.Metavariable())
		return existing != nil && existing.Replacement().Equal(sub.Replacement())
	}
	for _, prev := range s.subs {
		prev.Substitute(sub)
	}
	s.subs = append(s.subs, sub)
	s.domain.Insert(name)
	return true
}

// Lookup returns the substitution bound to the given metavariable, or
// nil when the solution does not assign it.
func (s *Solution) Lookup(meta *Symbol) *Substitution {
	for _, sub := range s.subs {
		if sub.Metavariable().Equal(meta) {
			return sub
		}
	}
	return nil
}

// Size returns the number of assignments.
func (s *Solution) Size() int { return len(s.subs) }

// Domain returns the set of assigned metavariable names. Callers must
// not mutate the set.
func (s *Solution) Domain() *set.Set[string] { return s.domain }

// Substitutions returns the assignments in insertion order.
func (s *Solution) Substitutions() []*Substitution {
	out := make([]*Substitution, len(s.subs))
	copy(out, s.subs)
	return out
}

// Assignments returns a map from metavariable name to the decoded
// (named-variable) replacement expression.
func (s *Solution) Assignments() map[string]Expression {
	out := make(map[string]Expression, len(s.subs))
	for _, sub := range s.subs {
		decoded, err := Decode(sub.Replacement())
		if err != nil {
			decoded = sub.Replacement().Copy()
		}
		out[sub.Metavariable().Name()] = decoded
	}
	return out
}

// Apply rewrites pattern with every assignment and returns the result
// in named-variable form.
func (s *Solution) Apply(pattern Expression) Expression {
	applied := s.applyEncoded(Encode(pattern))
	decoded, err := Decode(applied)
	if err != nil {
		return applied
	}
	return decoded
}

// applyEncoded rewrites an already-encoded pattern with every
// assignment, leaving the result encoded.
func (s *Solution) applyEncoded(pattern Expression) Expression {
	for _, sub := range s.subs {
		pattern = sub.AppliedTo(pattern)
	}
	return pattern
}

// restrictedTo returns a solution containing only the assignments for
// the given metavariable names, in the original insertion order. The
// search uses it to strip the fresh metavariables minted by imitation
// before a solution is yielded.
func (s *Solution) restrictedTo(names *set.Set[string]) *Solution {
	kept := lo.Filter(s.subs, func(sub *Substitution, _ int) bool {
		return names.Contains(sub.Metavariable().Name())
	})
	out := NewSolution()
	for _, sub := range kept {
		out.subs = append(out.subs, sub.Copy())
		out.domain.Insert(sub.Metavariable().Name())
	}
	return out
}

// Equal reports whether two solutions assign the same metavariables
// structurally equal replacements, regardless of insertion order.
func (s *Solution) Equal(other *Solution) bool {
	if other == nil || len(s.subs) != len(other.subs) {
		return false
	}
	for _, sub := range s.subs {
		match := other.Lookup(sub.Metavariable())
		if match == nil || !match.Replacement().Equal(sub.Replacement()) {
			return false
		}
	}
	return true
}

// String renders the solution as "{(A__,x),(B__,y)}" in insertion
// order.
func (s *Solution) String() string {
	parts := lo.Map(s.subs, func(sub *Substitution, _ int) string {
		return sub.String()
	})
	return "{" + strings.Join(parts, ",") + "}"
}
