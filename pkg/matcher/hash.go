// Structural hashing of expressions. The 128-bit hash is used as a
// cheap inequality test before full structural comparison in Problem
// deduplication. The occurrence counter does not use it; it compares
// subtrees with Equal directly.
package matcher

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// Type tags fed to the hasher ahead of each node.
const (
	hashTagSymbol byte = iota + 1
	hashTagMarker
	hashTagApplication
	hashTagBinder
	hashTagMetavariable
)

// ExpressionHash returns a 128-bit structural hash of e. Two
// structurally equal expressions hash equally; the hash covers exactly
// the attributes Equal consults (metavariable flag, de Bruijn indices,
// encoded-binder arity) and nothing else.
func ExpressionHash(e Expression) (uint64, uint64) {
	hasher := murmur3.New128()
	writeExpressionHash(hasher, e)
	return hasher.Sum128()
}

func writeExpressionHash(hasher murmur3.Hash128, e Expression) {
	switch t := e.(type) {
	case *Symbol:
		if i, j, ok := t.DeBruijnIndices(); ok {
			hasher.Write([]byte{hashTagMarker})
			binary.Write(hasher, binary.LittleEndian, int64(i))
			binary.Write(hasher, binary.LittleEndian, int64(j))
			return
		}
		tag := hashTagSymbol
		if t.IsMetavariable() {
			tag = hashTagMetavariable
		}
		hasher.Write([]byte{tag})
		hasher.Write([]byte(t.Name()))
		if n, ok := t.boundCount(); ok {
			binary.Write(hasher, binary.LittleEndian, int64(n))
		}
	case *Application:
		hasher.Write([]byte{hashTagApplication})
		binary.Write(hasher, binary.LittleEndian, int64(t.Arity()))
		for _, c := range t.Children() {
			writeExpressionHash(hasher, c)
		}
	case *Binder:
		hasher.Write([]byte{hashTagBinder})
		writeExpressionHash(hasher, t.Head())
		binary.Write(hasher, binary.LittleEndian, int64(len(t.BoundVariables())))
		for _, v := range t.BoundVariables() {
			writeExpressionHash(hasher, v)
		}
		writeExpressionHash(hasher, t.Body())
	}
}

// pairHash hashes an ordered expression pair, as used for constraint
// deduplication.
func pairHash(a, b Expression) (uint64, uint64) {
	hasher := murmur3.New128()
	writeExpressionHash(hasher, a)
	hasher.Write([]byte{0})
	writeExpressionHash(hasher, b)
	return hasher.Sum128()
}
