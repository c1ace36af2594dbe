// Problems: the solver's mutable working state. A problem owns a
// deduplicated multiset of constraints plus the partial solution
// accumulated so far; the search copies it at every branch point and
// discards the copy on backtrack.
package matcher

import (
	"strings"

	"github.com/google/uuid"
)

// Problem is exclusively owned by one search at a time. It is created
// from an initial constraint list, mutated only through Add and
// Substitute during its own search, and then discarded.
type Problem struct {
	id          string
	constraints []*Constraint
	solution    *Solution
}

// NewProblem creates a problem over the given constraints. The
// constraints are defensively copied so concurrent searches over the
// same inputs never share memoisation state.
func NewProblem(constraints ...*Constraint) *Problem {
	p := &Problem{
		id:       uuid.NewString(),
		solution: NewSolution(),
	}
	for _, c := range constraints {
		if c != nil {
			p.Add(c.copyForProblem())
		}
	}
	return p
}

// ID returns the problem's identity, used in trace logs.
func (p *Problem) ID() string { return p.id }

// Constraints returns the working constraint list in insertion order.
// Callers must not mutate it.
func (p *Problem) Constraints() []*Constraint { return p.constraints }

// Solution returns the accumulated partial solution.
func (p *Problem) Solution() *Solution { return p.solution }

// Add appends a constraint unless an equal one is already present.
func (p *Problem) Add(c *Constraint) {
	hi, lo := c.hash()
	for _, existing := range p.constraints {
		ehi, elo := existing.hash()
		if ehi == hi && elo == lo && existing.Equal(c) {
			return
		}
	}
	p.constraints = append(p.constraints, c)
}

// removeAt drops the i-th constraint, preserving insertion order.
func (p *Problem) removeAt(i int) {
	p.constraints = append(p.constraints[:i], p.constraints[i+1:]...)
}

// Substitute composes s into the accumulated solution and rewrites
// every remaining constraint pattern with it. It returns false when s
// conflicts with an existing assignment; the constraint list is left
// untouched in that case.
func (p *Problem) Substitute(s *Substitution) bool {
	if !p.solution.Add(s) {
		return false
	}
	for i, c := range p.constraints {
		p.constraints[i] = c.AfterSubstituting(s)
	}
	return true
}

// Copy returns an independent problem for branch exploration.
// Constraint values are shared (they are immutable and owned by a
// single search goroutine); the solution is deep-copied because Add
// rewrites its entries.
func (p *Problem) Copy() *Problem {
	constraints := make([]*Constraint, len(p.constraints))
	copy(constraints, p.constraints)
	return &Problem{
		id:          p.id,
		constraints: constraints,
		solution:    p.solution.Copy(),
	}
}

// String renders the working constraint list.
func (p *Problem) String() string {
	parts := make([]string, len(p.constraints))
	for i, c := range p.constraints {
		parts[i] = c.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
