package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSymbol covers symbol construction, flags and equality.
func TestSymbol(t *testing.T) {
	t.Run("plain symbol equality", func(t *testing.T) {
		assert.True(t, Sym("x").Equal(Sym("x")))
		assert.False(t, Sym("x").Equal(Sym("y")))
	})

	t.Run("metavariable flag participates in equality", func(t *testing.T) {
		assert.False(t, Sym("A").Equal(Meta("A")))
		assert.True(t, Meta("A").Equal(Meta("A")))
		assert.True(t, Meta("A").IsMetavariable())
		assert.False(t, Sym("A").IsMetavariable())
	})

	t.Run("markers compare by indices only", func(t *testing.T) {
		m1 := newDeBruijnMarker(0, 1, "x")
		m2 := newDeBruijnMarker(0, 1, "y")
		m3 := newDeBruijnMarker(1, 1, "x")
		assert.True(t, m1.Equal(m2))
		assert.False(t, m1.Equal(m3))
		assert.False(t, m1.Equal(Sym("x")))
	})

	t.Run("debug notation", func(t *testing.T) {
		assert.Equal(t, "A__", Meta("A").String())
		assert.Equal(t, "x", Sym("x").String())
		assert.Equal(t, "(@ F__ y)", EFA(Meta("F"), Sym("y")).String())
	})

	t.Run("copy is deep", func(t *testing.T) {
		m := Meta("A")
		c := m.Copy().(*Symbol)
		assert.True(t, m.Equal(c))
		assert.True(t, c.IsMetavariable())
	})
}

// TestApplication covers application structure and equality.
func TestApplication(t *testing.T) {
	t.Run("children and arity", func(t *testing.T) {
		app := App(Sym("+"), Sym("x"), Sym("y"))
		assert.Equal(t, 3, app.Arity())
		assert.True(t, app.Head().Equal(Sym("+")))
	})

	t.Run("equality is element-wise", func(t *testing.T) {
		a := App(Sym("f"), Sym("x"))
		b := App(Sym("f"), Sym("x"))
		c := App(Sym("f"), Sym("y"))
		d := App(Sym("f"), Sym("x"), Sym("x"))
		assert.True(t, a.Equal(b))
		assert.False(t, a.Equal(c))
		assert.False(t, a.Equal(d))
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "(+ x y)", App(Sym("+"), Sym("x"), Sym("y")).String())
	})

	t.Run("contains metavariable", func(t *testing.T) {
		assert.False(t, App(Sym("f"), Sym("x")).ContainsMetavariable())
		assert.True(t, App(Sym("f"), Meta("A")).ContainsMetavariable())
		assert.True(t, ContainsMetavariable(App(Sym("f"), Meta("A"))))
	})
}

// TestBinder covers binder construction and validation.
func TestBinder(t *testing.T) {
	t.Run("well-formed binder", func(t *testing.T) {
		b, err := NewBinder(Sym("∀"), []*Symbol{Sym("x")}, App(Sym("P"), Sym("x")))
		require.NoError(t, err)
		assert.Equal(t, "(∀ x , (P x))", b.String())
	})

	t.Run("missing body is malformed", func(t *testing.T) {
		_, err := NewBinder(Sym("∀"), []*Symbol{Sym("x")}, nil)
		require.ErrorIs(t, err, ErrMalformedExpression)
	})

	t.Run("no bound variables is malformed", func(t *testing.T) {
		_, err := NewBinder(Sym("∀"), nil, Sym("x"))
		require.ErrorIs(t, err, ErrMalformedExpression)
	})

	t.Run("missing head is malformed", func(t *testing.T) {
		_, err := NewBinder(nil, []*Symbol{Sym("x")}, Sym("x"))
		require.ErrorIs(t, err, ErrMalformedExpression)
	})

	t.Run("raw equality includes bound names", func(t *testing.T) {
		a := Bind("∀", []string{"x"}, App(Sym("P"), Sym("x")))
		b := Bind("∀", []string{"y"}, App(Sym("P"), Sym("y")))
		assert.False(t, a.Equal(b))
		assert.True(t, AlphaEquivalent(a, b))
	})
}

// TestEFARecognition covers EFA construction and decomposition.
func TestEFARecognition(t *testing.T) {
	t.Run("well-formed EFA", func(t *testing.T) {
		e := EFA(Meta("F"), Sym("y"), Sym("z"))
		f, args, ok := EFAParts(e)
		require.True(t, ok)
		assert.True(t, f.Equal(Meta("F")))
		assert.Len(t, args, 2)
		assert.True(t, IsEFA(e))
	})

	t.Run("function slot must be a metavariable", func(t *testing.T) {
		_, err := NewEFA(Sym("f"), Sym("y"))
		require.ErrorIs(t, err, ErrMalformedExpression)
	})

	t.Run("ordinary applications are not EFAs", func(t *testing.T) {
		assert.False(t, IsEFA(App(Sym("f"), Sym("y"))))
		assert.False(t, IsEFA(Sym("@")))
	})
}

// TestExpressionHash checks the hash agrees with structural equality.
func TestExpressionHash(t *testing.T) {
	t.Run("equal expressions hash equally", func(t *testing.T) {
		a := Encode(Bind("∀", []string{"x"}, App(Sym("P"), Sym("x"))))
		b := Encode(Bind("∀", []string{"y"}, App(Sym("P"), Sym("y"))))
		aHi, aLo := ExpressionHash(a)
		bHi, bLo := ExpressionHash(b)
		assert.Equal(t, aHi, bHi)
		assert.Equal(t, aLo, bLo)
	})

	t.Run("metavariable flag reaches the hash", func(t *testing.T) {
		aHi, aLo := ExpressionHash(Sym("A"))
		bHi, bLo := ExpressionHash(Meta("A"))
		assert.False(t, aHi == bHi && aLo == bLo)
	})
}
