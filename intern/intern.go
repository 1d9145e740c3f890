// Package intern implements structural hash-consing for the expression
// graph: identical rule bodies collapse to a single shared *expr.Expression,
// so that two rules written the same way compare equal by pointer identity
// and share FIRST-set memoization.
//
// Because the grammar builder interns bottom-up (every child is already
// canonical by the time its parent is built, see grammar's builder), a parent's
// structural key only needs to encode its children's pointer identity
// rather than recursively re-hashing their contents. That digest is a
// small, fixed-shape []byte per node, which is exactly the key shape the
// teacher's internal/bmap.BMap was built for, so it backs the Interner's
// table unchanged.
package intern

import (
	"encoding/binary"
	"unsafe"

	"github.com/bnfkit/bnfcore/expr"
	"github.com/bnfkit/bnfcore/internal/bmap"
)

// Interner deduplicates structurally identical expression nodes. The zero
// value is not usable; construct with New.
type Interner struct {
	table *bmap.BMap[*expr.Expression]
}

// New creates an Interner. size is a hint for the expected number of
// distinct nodes, as accepted by bmap.New.
func New(size int) *Interner {
	return &Interner{table: bmap.New[*expr.Expression](size)}
}

// Intern returns the canonical node structurally equal to e: either e
// itself, the first time a given shape is seen, or a previously interned
// node with the same shape on every subsequent call. Callers should always
// use the returned pointer in place of e from this point on (P6: canonical
// equivalence is by pointer identity after interning).
func (in *Interner) Intern(e *expr.Expression) *expr.Expression {
	if e == nil {
		return nil
	}

	key := digest(e)
	if existing, ok := in.table.Get(key); ok {
		return existing
	}

	in.table.Set(key, e)
	return e
}

// Len returns the number of distinct canonical nodes interned so far.
func (in *Interner) Len() int {
	return in.table.Len()
}

// digest encodes e's structural shape: its Kind tag followed by
// kind-specific payload. For Sequence/Alternative/Optional/Repeat the
// payload is each child's pointer address, which is sound only because
// children are interned (and therefore canonical) before their parent is.
func digest(e *expr.Expression) []byte {
	buf := []byte{byte(e.Kind)}

	switch e.Kind {
	case expr.KindTerminal:
		buf = append(buf, e.Literal...)

	case expr.KindSymbol:
		buf = append(buf, e.Name...)

	case expr.KindSequence, expr.KindAlternative, expr.KindOptional, expr.KindRepeat:
		for _, c := range e.Children {
			buf = appendPtr(buf, c)
		}

	case expr.KindCharRange:
		buf = append(buf, e.Start, e.End)

	case expr.KindCharClass:
		bytes := e.Class.Bytes()
		buf = append(buf, bytes[:]...)
	}

	return buf
}

func appendPtr(buf []byte, e *expr.Expression) []byte {
	var addr [8]byte
	binary.BigEndian.PutUint64(addr[:], uint64(uintptr(unsafe.Pointer(e))))
	return append(buf, addr[:]...)
}
