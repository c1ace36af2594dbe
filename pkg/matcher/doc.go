// Package matcher implements a higher-order pattern matcher over
// structured mathematical expressions: it solves systems of
// pattern/expression constraints modulo α-equivalence using de Bruijn
// indices, with first-class support for Expression Function
// Applications (EFAs) as second-order metavariables.
//
// Matching higher-order patterns is undecidable in general. This
// package implements a disciplined, terminating subset — Miller-style
// pattern unification generalized with projection and imitation
// heuristics for EFAs — with triage by complexity, capture avoidance
// through pure index arithmetic, and branch pruning that keeps
// practical problems tractable.
//
// # Building Blocks
//
//   - Expressions: trees of symbols, applications and binders, with a
//     metavariable flag on symbols (expression.go)
//   - De Bruijn encoding: the involutive transform under which
//     α-equivalence becomes structural equality (debruijn.go)
//   - Constraints: immutable (pattern, expression) pairs with a
//     memoised complexity classification (constraint.go)
//   - Substitutions: immutable metavariable→expression rewrites that
//     compose, with eager β-reduction of EFA redexes (substitution.go,
//     beta.go)
//   - Problems and the solver: a non-deterministic search yielding a
//     lazy, deterministic stream of solutions (problem.go, solver.go,
//     stream.go)
//
// # Basic Usage
//
//	m := matcher.NewMatcher()
//	c := matcher.MustConstraint(
//	    matcher.App(matcher.Sym("+"), matcher.Meta("A"), matcher.Meta("B")),
//	    matcher.App(matcher.Sym("+"), matcher.Sym("x"), matcher.Sym("y")),
//	)
//	sol, err := m.FirstSolution(context.Background(), []*matcher.Constraint{c}, matcher.Options{})
//	// sol assigns A ↦ x, B ↦ y
//
// Callers that need every solution drive the stream returned by
// Solutions to exhaustion; callers that need a unique answer stop at
// the first. Dropping a stream via Close releases all search state.
//
// The matcher is single-threaded per search. Independent searches may
// run concurrently on one Matcher; SolveAll multiplexes a batch of
// constraint sets across a worker pool.
package matcher
