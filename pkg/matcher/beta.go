// Eager β-reduction of applied λ-abstractions. Substitution applies a
// metavariable's λ-instantiation into patterns; any redex
// (@ (λ_n body) a1 ... an) that results is contracted immediately,
// with de Bruijn arithmetic shifting argument markers to the insertion
// depth and closing the consumed binder level.
package matcher

import "github.com/samber/lo"

// betaReduceAll contracts every redex in e, bottom-up. Expressions
// without redexes are returned as fresh structure over shared leaves.
func betaReduceAll(e Expression) Expression {
	app, isApp := e.(*Application)
	if !isApp {
		return e
	}
	children := lo.Map(app.Children(), func(c Expression, _ int) Expression {
		return betaReduceAll(c)
	})
	reduced := newApplicationFromSlice(children)
	lam, args, ok := redex(reduced)
	if !ok {
		return reduced
	}
	return betaReduceAll(applyLambda(lam, args))
}

// redex recognizes (@ (λ_n body) a1 ... an) with a head-less
// abstraction in the function slot and a matching argument count.
func redex(app *Application) (*Application, []Expression, bool) {
	if app.Arity() < 2 {
		return nil, nil, false
	}
	head, isSym := app.Head().(*Symbol)
	if !isSym || head.Name() != EFAHeadName || head.IsMetavariable() {
		return nil, nil, false
	}
	lam, isApp := app.Children()[1].(*Application)
	if !isApp {
		return nil, nil, false
	}
	count, headful, isLambda := lambdaForm(lam)
	if !isLambda || headful || count != app.Arity()-2 {
		return nil, nil, false
	}
	return lam, app.Children()[2:], true
}

// applyLambda contracts one redex: markers bound by the consumed λ are
// replaced by the corresponding argument (shifted to its insertion
// depth), and markers reaching past it move down one level.
func applyLambda(lam *Application, args []Expression) Expression {
	return substituteMarkers(lambdaBody(lam), args, 0)
}

func substituteMarkers(e Expression, args []Expression, depth int) Expression {
	switch t := e.(type) {
	case *Symbol:
		i, j, ok := t.DeBruijnIndices()
		if !ok || i < depth {
			return t.Copy()
		}
		if i == depth {
			if j >= len(args) {
				return t.Copy()
			}
			return shiftMarkers(args[j], depth, 0)
		}
		name, _ := t.attrs[attrOriginalName].(string)
		return newDeBruijnMarker(i-1, j, name)
	case *Application:
		children := t.Children()
		out := make([]Expression, len(children))
		if _, _, ok := lambdaForm(t); ok {
			for i := 0; i < len(children)-1; i++ {
				out[i] = substituteMarkers(children[i], args, depth)
			}
			out[len(children)-1] = substituteMarkers(lambdaBody(t), args, depth+1)
			return newApplicationFromSlice(out)
		}
		for i, c := range children {
			out[i] = substituteMarkers(c, args, depth)
		}
		return newApplicationFromSlice(out)
	}
	return e.Copy()
}
