package matcher

import (
	"testing"

	set "github.com/hashicorp/go-set/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSub(t *testing.T, meta *Symbol, e Expression) *Substitution {
	t.Helper()
	s, err := NewSubstitution(meta, e)
	require.NoError(t, err)
	return s
}

// TestSolutionAdd covers composition and disjoint-domain enforcement.
func TestSolutionAdd(t *testing.T) {
	t.Run("disjoint domains accumulate", func(t *testing.T) {
		sol := NewSolution()
		require.True(t, sol.Add(mustSub(t, Meta("A"), Sym("x"))))
		require.True(t, sol.Add(mustSub(t, Meta("B"), Sym("y"))))
		assert.Equal(t, 2, sol.Size())
		assert.True(t, sol.Domain().Contains("A"))
		assert.True(t, sol.Domain().Contains("B"))
	})

	t.Run("agreeing re-assignment is a no-op", func(t *testing.T) {
		sol := NewSolution()
		require.True(t, sol.Add(mustSub(t, Meta("A"), Sym("x"))))
		assert.True(t, sol.Add(mustSub(t, Meta("A"), Sym("x"))))
		assert.Equal(t, 1, sol.Size())
	})

	t.Run("conflicting re-assignment is rejected", func(t *testing.T) {
		sol := NewSolution()
		require.True(t, sol.Add(mustSub(t, Meta("A"), Sym("x"))))
		assert.False(t, sol.Add(mustSub(t, Meta("A"), Sym("y"))))
		assert.Equal(t, 1, sol.Size())
	})

	t.Run("later assignments rewrite earlier replacements", func(t *testing.T) {
		sol := NewSolution()
		require.True(t, sol.Add(mustSub(t, Meta("A"), App(Sym("f"), Meta("B")))))
		require.True(t, sol.Add(mustSub(t, Meta("B"), Sym("c"))))
		a := sol.Lookup(Meta("A"))
		require.NotNil(t, a)
		assert.True(t, a.Replacement().Equal(Encode(App(Sym("f"), Sym("c")))))
	})
}

// TestSolutionApply covers pattern rewriting through a solution.
func TestSolutionApply(t *testing.T) {
	sol := NewSolution()
	require.True(t, sol.Add(mustSub(t, Meta("A"), Sym("x"))))
	require.True(t, sol.Add(mustSub(t, Meta("B"), App(Sym("g"), Sym("y")))))

	t.Run("apply instantiates the pattern", func(t *testing.T) {
		result := sol.Apply(App(Sym("+"), Meta("A"), Meta("B")))
		assert.True(t, result.Equal(App(Sym("+"), Sym("x"), App(Sym("g"), Sym("y")))))
	})

	t.Run("assignments decode to named form", func(t *testing.T) {
		got := sol.Assignments()
		require.Len(t, got, 2)
		assert.True(t, got["A"].Equal(Sym("x")))
		assert.True(t, got["B"].Equal(App(Sym("g"), Sym("y"))))
	})

	t.Run("apply under binders preserves alpha-structure", func(t *testing.T) {
		pattern := Bind("∀", []string{"z"}, App(Sym("P"), Sym("z"), Meta("A")))
		want := Bind("∀", []string{"z"}, App(Sym("P"), Sym("z"), Sym("x")))
		assert.True(t, AlphaEquivalent(want, sol.Apply(pattern)))
	})
}

// TestSolutionCopyAndRestrict covers value semantics.
func TestSolutionCopyAndRestrict(t *testing.T) {
	t.Run("copies are independent", func(t *testing.T) {
		sol := NewSolution()
		require.True(t, sol.Add(mustSub(t, Meta("A"), App(Sym("f"), Meta("B")))))
		dup := sol.Copy()
		require.True(t, sol.Add(mustSub(t, Meta("B"), Sym("c"))))

		a := dup.Lookup(Meta("A"))
		require.NotNil(t, a)
		assert.True(t, a.Replacement().Equal(Encode(App(Sym("f"), Meta("B")))))
	})

	t.Run("restriction keeps only the requested names", func(t *testing.T) {
		sol := NewSolution()
		require.True(t, sol.Add(mustSub(t, Meta("A"), Sym("x"))))
		require.True(t, sol.Add(mustSub(t, Meta("_H1"), Sym("y"))))

		names := set.From([]string{"A"})
		restricted := sol.restrictedTo(names)
		assert.Equal(t, 1, restricted.Size())
		assert.True(t, restricted.Domain().Contains("A"))
		assert.False(t, restricted.Domain().Contains("_H1"))
	})

	t.Run("equality ignores insertion order", func(t *testing.T) {
		left := NewSolution()
		require.True(t, left.Add(mustSub(t, Meta("A"), Sym("x"))))
		require.True(t, left.Add(mustSub(t, Meta("B"), Sym("y"))))

		right := NewSolution()
		require.True(t, right.Add(mustSub(t, Meta("B"), Sym("y"))))
		require.True(t, right.Add(mustSub(t, Meta("A"), Sym("x"))))

		assert.True(t, left.Equal(right))
	})
}
