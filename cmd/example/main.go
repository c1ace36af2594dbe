// Package main demonstrates basic pattern matching usage.
//
// This example shows how to use the matcher core to solve
// constraint systems of increasing difficulty.
package main

import (
	"context"
	"fmt"

	"github.com/gitrdm/gomatcher/pkg/matcher"
)

func main() {
	fmt.Println("=== GoMatcher Examples ===")
	fmt.Println()

	trivialMatch()
	simpleInstantiation()
	efaBranching()
	batchSolving()
}

// trivialMatch demonstrates a ground constraint.
func trivialMatch() {
	fmt.Println("1. Trivial Match:")

	m := matcher.NewMatcher()
	c := matcher.MustConstraint(
		matcher.App(matcher.Sym("-"), matcher.Sym("3"), matcher.Sym("t")),
		matcher.App(matcher.Sym("-"), matcher.Sym("3"), matcher.Sym("t")),
	)

	sols := m.Solutions(context.Background(), []*matcher.Constraint{c}, matcher.Options{}).All()
	fmt.Printf("   %s => %d solution(s), first: %s\n\n", c, len(sols), sols[0])
}

// simpleInstantiation demonstrates element-wise metavariable binding.
func simpleInstantiation() {
	fmt.Println("2. Simple Instantiation:")

	m := matcher.NewMatcher()
	c := matcher.MustConstraint(
		matcher.App(matcher.Sym("+"), matcher.Meta("A"), matcher.Meta("B")),
		matcher.App(matcher.Sym("+"),
			matcher.App(matcher.Sym("*"), matcher.Sym("3"), matcher.Sym("x")),
			matcher.App(matcher.Sym("^"), matcher.Sym("y"), matcher.Sym("2"))),
	)

	sol, err := m.FirstSolution(context.Background(), []*matcher.Constraint{c}, matcher.Options{})
	if err != nil {
		fmt.Println("   error:", err)
		return
	}
	fmt.Printf("   %s => %s\n\n", c, sol)
}

// efaBranching demonstrates second-order matching through an EFA.
func efaBranching() {
	fmt.Println("3. EFA Branching:")

	m := matcher.NewMatcher()
	c := matcher.MustConstraint(
		matcher.EFA(matcher.Meta("F"), matcher.Sym("y")),
		matcher.App(matcher.Sym("g"), matcher.Sym("y"), matcher.Sym("y")),
	)

	sols := m.Solutions(context.Background(), []*matcher.Constraint{c}, matcher.Options{}).All()
	fmt.Printf("   %s => %d solution(s)\n", c, len(sols))
	for _, sol := range sols {
		fmt.Printf("     %s\n", sol)
	}
	fmt.Println()
}

// batchSolving demonstrates multiplexing independent problems.
func batchSolving() {
	fmt.Println("4. Batch Solving:")

	m := matcher.NewMatcher()
	batches := [][]*matcher.Constraint{
		{matcher.MustConstraint(matcher.Meta("A"), matcher.Sym("x"))},
		{matcher.MustConstraint(matcher.Sym("a"), matcher.Sym("b"))},
	}

	results, err := m.SolveAll(context.Background(), batches, matcher.Options{})
	if err != nil {
		fmt.Println("   error:", err)
		return
	}
	for i, sol := range results {
		if sol == nil {
			fmt.Printf("   batch %d: no solution\n", i)
			continue
		}
		fmt.Printf("   batch %d: %s\n", i, sol)
	}
}
