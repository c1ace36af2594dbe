// De Bruijn encoding and the index arithmetic built on it.
//
// # Encoding
//
// Encode rewrites every binder (head v1 ... vn , body) into an
// application (λ head body'), where the reserved λ symbol carries the
// bound count n and body' has each bound occurrence replaced by a
// marker (DB, i, j): "the j-th variable bound i binder levels up".
// Pure abstractions (binders whose head is the λ symbol itself, as
// produced for EFA instantiations) encode as the two-child form
// (λ body'). Original names survive only as printing attributes.
//
// After encoding, α-equivalence coincides with structural equality:
// two expressions are α-equivalent exactly when their encodings are
// Equal. Decode inverts the transform up to the choice of fresh names
// for bound variables.
//
// # Index Arithmetic
//
// shiftMarkers adjusts the free markers of a subtree when it is moved
// under (or out from under) binders; it is the only arithmetic needed
// for capture-avoiding substitution and β-reduction. A marker is free
// within a subtree when its binder index reaches past the λ levels the
// subtree itself contains.
package matcher

import "fmt"

// encodeFrame records the bound-variable names of one binder level
// during encoding. Anonymous frames (empty names) keep distances correct
// when raw and already-encoded trees are mixed.
type encodeFrame struct {
	names []string
}

// Encode returns the de Bruijn encoding of e. Encoding never fails on
// expressions built through the package constructors; already-encoded
// subtrees pass through unchanged, so Encode is idempotent.
func Encode(e Expression) Expression {
	return encodeWith(e, nil)
}

func encodeWith(e Expression, frames []encodeFrame) Expression {
	switch t := e.(type) {
	case *Symbol:
		if _, _, isMarker := t.DeBruijnIndices(); isMarker {
			return t.Copy()
		}
		if !t.IsMetavariable() {
			for i, frame := range frames {
				for j, name := range frame.names {
					if name == t.Name() {
						return newDeBruijnMarker(i, j, t.Name())
					}
				}
			}
		}
		return t.Copy()
	case *Application:
		if n, _, ok := lambdaForm(t); ok {
			// Already-encoded binder: its body sits one level down.
			children := t.Children()
			encoded := make([]Expression, len(children))
			for i := 0; i < len(children)-1; i++ {
				encoded[i] = encodeWith(children[i], frames)
			}
			inner := append([]encodeFrame{{names: make([]string, n)}}, frames...)
			encoded[len(children)-1] = encodeWith(lambdaBody(t), inner)
			return newApplicationFromSlice(encoded)
		}
		children := t.Children()
		encoded := make([]Expression, len(children))
		for i, c := range children {
			encoded[i] = encodeWith(c, frames)
		}
		return newApplicationFromSlice(encoded)
	case *Binder:
		names := make([]string, len(t.BoundVariables()))
		for i, v := range t.BoundVariables() {
			names[i] = v.Name()
		}
		inner := append([]encodeFrame{{names: names}}, frames...)
		body := encodeWith(t.Body(), inner)
		lambda := newLambdaSymbol(len(names), names)
		if t.Head().Name() == LambdaName {
			return NewApplication(lambda, body)
		}
		return NewApplication(lambda, encodeWith(t.Head(), frames), body)
	}
	return e.Copy()
}

// Decode inverts Encode, minting fresh bound-variable names where the
// preserved originals collide with names already in scope. It returns
// ErrMalformedExpression for a marker that reaches outside every
// enclosing binder.
func Decode(e Expression) (Expression, error) {
	return decodeWith(e, nil, collectSymbolNames(e, map[string]bool{}))
}

func decodeWith(e Expression, frames [][]string, taken map[string]bool) (Expression, error) {
	switch t := e.(type) {
	case *Symbol:
		if i, j, ok := t.DeBruijnIndices(); ok {
			if i >= len(frames) || j >= len(frames[i]) {
				return nil, fmt.Errorf("Decode: marker db(%d,%d) reaches outside its binders: %w", i, j, ErrMalformedExpression)
			}
			return NewSymbol(frames[i][j]), nil
		}
		return t.Copy(), nil
	case *Application:
		if n, headful, ok := lambdaForm(t); ok {
			return decodeLambda(t, n, headful, frames, taken)
		}
		children := make([]Expression, t.Arity())
		for i, c := range t.Children() {
			decoded, err := decodeWith(c, frames, taken)
			if err != nil {
				return nil, err
			}
			children[i] = decoded
		}
		return newApplicationFromSlice(children), nil
	case *Binder:
		body, err := decodeWith(t.Body(), frames, taken)
		if err != nil {
			return nil, err
		}
		return NewBinder(t.Head().copySymbol(), t.BoundVariables(), body)
	}
	return e.Copy(), nil
}

func decodeLambda(app *Application, count int, headful bool, frames [][]string, taken map[string]bool) (Expression, error) {
	if count == 0 && !headful {
		// Degenerate zero-ary abstraction (from an argument-less EFA):
		// decode as its body, keeping marker distances intact.
		return decodeWith(lambdaBody(app), append([][]string{{}}, frames...), taken)
	}
	lambda := app.Head().(*Symbol)
	preserved := lambda.boundNames()
	names := make([]string, count)
	bound := make([]*Symbol, count)
	for k := 0; k < count; k++ {
		name := ""
		if k < len(preserved) {
			name = preserved[k]
		}
		if name == "" {
			name = fmt.Sprintf("x%d", k+1)
		}
		for taken[name] {
			name += "'"
		}
		taken[name] = true
		names[k] = name
		bound[k] = NewSymbol(name)
	}

	body, err := decodeWith(lambdaBody(app), append([][]string{names}, frames...), taken)
	if err != nil {
		return nil, err
	}

	head := NewSymbol(LambdaName)
	if headful {
		decodedHead, err := decodeWith(app.Children()[1], frames, taken)
		if err != nil {
			return nil, err
		}
		sym, ok := decodedHead.(*Symbol)
		if !ok {
			return nil, fmt.Errorf("Decode: binder head is not a symbol: %w", ErrMalformedExpression)
		}
		head = sym
	}
	return NewBinder(head, bound, body)
}

// collectSymbolNames gathers every plain symbol name in e, so Decode
// can mint bound names that never capture a free occurrence.
func collectSymbolNames(e Expression, into map[string]bool) map[string]bool {
	switch t := e.(type) {
	case *Symbol:
		if _, _, isMarker := t.DeBruijnIndices(); !isMarker {
			into[t.Name()] = true
		}
	case *Application:
		for _, c := range t.Children() {
			collectSymbolNames(c, into)
		}
	case *Binder:
		collectSymbolNames(t.Head(), into)
		for _, v := range t.BoundVariables() {
			collectSymbolNames(v, into)
		}
		collectSymbolNames(t.Body(), into)
	}
	return into
}

// AlphaEquivalent reports whether two raw expressions are equal up to
// consistent renaming of bound variables.
func AlphaEquivalent(a, b Expression) bool {
	return Encode(a).Equal(Encode(b))
}

// shiftMarkers returns a copy of e with every marker that is free at
// the given depth shifted by delta binder levels. depth is the number
// of λ levels already peeled above e; callers shifting a whole subtree
// pass 0.
func shiftMarkers(e Expression, delta, depth int) Expression {
	switch t := e.(type) {
	case *Symbol:
		if i, j, ok := t.DeBruijnIndices(); ok && i >= depth {
			name, _ := t.attrs[attrOriginalName].(string)
			return newDeBruijnMarker(i+delta, j, name)
		}
		return t.Copy()
	case *Application:
		children := t.Children()
		shifted := make([]Expression, len(children))
		if _, _, ok := lambdaForm(t); ok {
			for i := 0; i < len(children)-1; i++ {
				shifted[i] = shiftMarkers(children[i], delta, depth)
			}
			shifted[len(children)-1] = shiftMarkers(lambdaBody(t), delta, depth+1)
			return newApplicationFromSlice(shifted)
		}
		for i, c := range children {
			shifted[i] = shiftMarkers(c, delta, depth)
		}
		return newApplicationFromSlice(shifted)
	}
	return e.Copy()
}

// minFreeMarkerReach returns the smallest positive reach among the
// free markers of e, where a marker at binder index i under d internal
// λ levels reaches i-d+1 levels outside e. It returns 0 when e is
// marker-closed.
func minFreeMarkerReach(e Expression) int {
	return minReach(e, 0)
}

func minReach(e Expression, depth int) int {
	switch t := e.(type) {
	case *Symbol:
		if i, _, ok := t.DeBruijnIndices(); ok && i >= depth {
			return i - depth + 1
		}
	case *Application:
		best := 0
		children := t.Children()
		isLambda := false
		if _, _, ok := lambdaForm(t); ok {
			isLambda = true
		}
		for i, c := range children {
			d := depth
			if isLambda && i == len(children)-1 {
				d = depth + 1
			}
			if r := minReach(c, d); r > 0 && (best == 0 || r < best) {
				best = r
			}
		}
		return best
	}
	return 0
}

// Occurrences counts how many subtrees of e structurally match sub at
// the matching binder depth: descending under a λ level shifts sub's
// free markers up by one before comparison. Both arguments must be de
// Bruijn encoded.
func Occurrences(sub, e Expression) int {
	cache := map[int]Expression{0: sub}
	return countOccurrences(sub, e, 0, cache)
}

func countOccurrences(sub, e Expression, depth int, cache map[int]Expression) int {
	target, ok := cache[depth]
	if !ok {
		target = shiftMarkers(sub, depth, 0)
		cache[depth] = target
	}
	count := 0
	if target.Equal(e) {
		count++
	}
	if app, isApp := e.(*Application); isApp {
		children := app.Children()
		isLambda := false
		if _, _, ok := lambdaForm(app); ok {
			isLambda = true
		}
		for i, c := range children {
			d := depth
			if isLambda && i == len(children)-1 {
				d = depth + 1
			}
			count += countOccurrences(sub, c, d, cache)
		}
	}
	return count
}

// IsFreeToReplace reports whether repl can replace every occurrence of
// meta inside target without any free marker of repl being captured by
// a binder of target. Both repl and target must be encoded. The check
// is pure index arithmetic: a free marker reaching r levels out of
// repl is captured at an occurrence sitting under d >= r binders.
func IsFreeToReplace(repl, target Expression, meta *Symbol) bool {
	reach := minFreeMarkerReach(repl)
	if reach == 0 {
		return true
	}
	return !hasCapturedOccurrence(target, meta, reach, 0)
}

func hasCapturedOccurrence(target Expression, meta *Symbol, reach, depth int) bool {
	switch t := target.(type) {
	case *Symbol:
		return depth >= reach && meta.Equal(t)
	case *Application:
		children := t.Children()
		isLambda := false
		if _, _, ok := lambdaForm(t); ok {
			isLambda = true
		}
		for i, c := range children {
			d := depth
			if isLambda && i == len(children)-1 {
				d = depth + 1
			}
			if hasCapturedOccurrence(c, meta, reach, d) {
				return true
			}
		}
	}
	return false
}
