package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConstraint covers construction-time validation.
func TestNewConstraint(t *testing.T) {
	t.Run("valid pair", func(t *testing.T) {
		c, err := NewConstraint(Meta("A"), Sym("x"))
		require.NoError(t, err)
		assert.Equal(t, ClassInstantiation, c.Complexity())
	})

	t.Run("metavariable on the expression side", func(t *testing.T) {
		_, err := NewConstraint(Meta("A"), App(Sym("f"), Meta("B")))
		require.ErrorIs(t, err, ErrInvalidConstraint)
	})

	t.Run("bound metavariable in the pattern", func(t *testing.T) {
		pattern := MustBinder(Sym("∀"), []*Symbol{Meta("X")}, App(Sym("P"), Meta("X")))
		_, err := NewConstraint(pattern, Sym("c"))
		require.ErrorIs(t, err, ErrInvalidConstraint)
	})

	t.Run("free metavariables under binders are fine", func(t *testing.T) {
		pattern := Bind("∀", []string{"x"}, App(Sym("P"), Meta("A")))
		_, err := NewConstraint(pattern, Encode(Bind("∀", []string{"x"}, App(Sym("P"), Sym("c")))))
		require.NoError(t, err)
	})

	t.Run("debug form", func(t *testing.T) {
		c := MustConstraint(
			App(Sym("+"), Meta("A"), Meta("B")),
			App(Sym("+"), Sym("x"), Sym("y")),
		)
		assert.Equal(t, "((+ A__ B__), (+ x y))", c.String())
	})
}

// TestComplexityClassification covers the five triage classes.
func TestComplexityClassification(t *testing.T) {
	t.Run("lone metavariable is instantiation", func(t *testing.T) {
		c := MustConstraint(Meta("A"), App(Sym("f"), Sym("x")))
		assert.Equal(t, ClassInstantiation, c.Complexity())
		assert.Equal(t, weightInstantiation, c.Weight())
	})

	t.Run("EFA weight sums argument scores", func(t *testing.T) {
		// occurrences(y, g(y,y)) = 2, so weight = 4 + 2.
		c := MustConstraint(EFA(Meta("F"), Sym("y")), App(Sym("g"), Sym("y"), Sym("y")))
		assert.Equal(t, ClassEFA, c.Complexity())
		assert.Equal(t, 6, c.Weight())
	})

	t.Run("metavariable argument uses the fixed estimate", func(t *testing.T) {
		c := MustConstraint(EFA(Meta("F"), Meta("G")), App(Sym("g"), Sym("c")))
		assert.Equal(t, ClassEFA, c.Complexity())
		assert.Equal(t, efaBaseWeight+efaMetavariableEstimate, c.Weight())
	})

	t.Run("ground equal pair is success", func(t *testing.T) {
		c := MustConstraint(App(Sym("-"), Sym("3"), Sym("t")), App(Sym("-"), Sym("3"), Sym("t")))
		assert.Equal(t, ClassSuccess, c.Complexity())
	})

	t.Run("ground unequal pair is failure", func(t *testing.T) {
		c := MustConstraint(Sym("3"), Bind("∀", []string{"x"}, App(Sym("P"), Sym("x"))))
		assert.Equal(t, ClassFailure, c.Complexity())
	})

	t.Run("matching arities decompose to children", func(t *testing.T) {
		c := MustConstraint(
			App(Sym("f"), Meta("A"), Sym("c")),
			App(Sym("f"), Sym("x"), Sym("c")),
		)
		assert.Equal(t, ClassChildren, c.Complexity())
	})

	t.Run("arity mismatch with metavariables is failure", func(t *testing.T) {
		c := MustConstraint(
			App(Sym("f"), Meta("A")),
			App(Sym("f"), Sym("x"), Sym("y")),
		)
		assert.Equal(t, ClassFailure, c.Complexity())
	})

	t.Run("alpha-equivalent ground binders are success", func(t *testing.T) {
		c := MustConstraint(
			Bind("∀", []string{"x"}, App(Sym("P"), Sym("x"))),
			Bind("∀", []string{"y"}, App(Sym("P"), Sym("y"))),
		)
		assert.Equal(t, ClassSuccess, c.Complexity())
	})
}

// TestConstraintChildren covers element-wise decomposition.
func TestConstraintChildren(t *testing.T) {
	t.Run("zips in order", func(t *testing.T) {
		c := MustConstraint(
			App(Sym("f"), Meta("A"), Meta("B")),
			App(Sym("f"), Sym("x"), Sym("y")),
		)
		kids, err := c.Children()
		require.NoError(t, err)
		require.Len(t, kids, 3)
		assert.Equal(t, ClassSuccess, kids[0].Complexity())
		assert.Equal(t, "(A__, x)", kids[1].String())
		assert.Equal(t, "(B__, y)", kids[2].String())
	})

	t.Run("invalid outside the children class", func(t *testing.T) {
		c := MustConstraint(Meta("A"), Sym("x"))
		_, err := c.Children()
		require.ErrorIs(t, err, ErrInvalidConstraint)
	})
}

// TestAfterSubstituting covers pattern rewriting.
func TestAfterSubstituting(t *testing.T) {
	c := MustConstraint(
		App(Sym("+"), Meta("A"), Meta("B")),
		App(Sym("+"), Sym("x"), Sym("y")),
	)
	s, err := NewSubstitution(Meta("A"), Sym("x"))
	require.NoError(t, err)

	rewritten := c.AfterSubstituting(s)
	assert.Equal(t, "((+ x B__), (+ x y))", rewritten.String())
	// The original constraint is untouched.
	assert.Equal(t, "((+ A__ B__), (+ x y))", c.String())
}

// TestEFAPruningPredicates covers the cached branching predicates.
func TestEFAPruningPredicates(t *testing.T) {
	t.Run("all-constant short-circuit", func(t *testing.T) {
		// z is closed and absent from the expression.
		c := MustConstraint(EFA(Meta("F"), Sym("z")), App(Sym("g"), Sym("y")))
		assert.True(t, c.CanBeOnlyConstantEFA())
		assert.False(t, c.CanBeAProjectionEFA(0))
	})

	t.Run("single occurrence permits projection", func(t *testing.T) {
		c := MustConstraint(EFA(Meta("F"), Sym("y")), Sym("y"))
		assert.False(t, c.CanBeOnlyConstantEFA())
		assert.True(t, c.CanBeAProjectionEFA(0))
	})

	t.Run("duplicated argument rules projection out", func(t *testing.T) {
		c := MustConstraint(EFA(Meta("F"), Sym("y")), App(Sym("g"), Sym("y"), Sym("y")))
		assert.False(t, c.CanBeAProjectionEFA(0))
	})

	t.Run("metavariable argument keeps projection open", func(t *testing.T) {
		c := MustConstraint(EFA(Meta("F"), Meta("G")), App(Sym("g"), Sym("c")))
		assert.True(t, c.CanBeAProjectionEFA(0))
	})

	t.Run("out-of-range index", func(t *testing.T) {
		c := MustConstraint(EFA(Meta("F"), Sym("y")), Sym("y"))
		assert.False(t, c.CanBeAProjectionEFA(1))
		assert.False(t, c.CanBeAProjectionEFA(-1))
	})
}
