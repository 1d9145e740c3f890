// Package expr defines the interned, immutable expression graph that
// represents a grammar rule's body, and the memoized FIRST-set analyser
// used to prune alternatives during matching.
//
// Grounded on _examples/original_source/include/Expression.hpp for the
// node shape and on the teacher's langdef/chunks.go chunk interface
// (FirstTokens()/IsOptional()) for the FIRST/nullable pairing idea.
package expr

import (
	"github.com/bnfkit/bnfcore"
	"github.com/bnfkit/bnfcore/bitset"
)

// Kind identifies the variant of an Expression.
type Kind int

const (
	// KindTerminal matches a concrete byte sequence.
	KindTerminal Kind = iota
	// KindSymbol is a non-terminal reference, resolved by name at match time.
	KindSymbol
	// KindSequence matches each child in order.
	KindSequence
	// KindAlternative tries each child, picking the one consuming the most bytes.
	KindAlternative
	// KindOptional always succeeds, consuming the child's match if possible.
	KindOptional
	// KindRepeat matches zero or more greedy iterations of its child.
	KindRepeat
	// KindCharRange matches one byte in [Start,End].
	KindCharRange
	// KindCharClass matches one byte set in Class.
	KindCharClass
)

func (k Kind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindSymbol:
		return "symbol"
	case KindSequence:
		return "seq"
	case KindAlternative:
		return "alt"
	case KindOptional:
		return "opt"
	case KindRepeat:
		return "rep"
	case KindCharRange:
		return "char-range"
	case KindCharClass:
		return "char-class"
	default:
		return "unknown"
	}
}

// Expression is a node of the expression graph. It is immutable after
// construction; every field other than Kind is meaningful only for the
// corresponding Kind, matching the C union-like tagged-variant layout of
// the original source's Expression struct.
type Expression struct {
	Kind Kind

	// Literal holds the Terminal's byte sequence (quotes already stripped).
	Literal []byte

	// Name holds the Symbol's non-terminal name, including angle brackets.
	Name string

	// Children holds, in order, a Sequence's or Alternative's child list
	// (len >= 1, invariant I1), or the single child of an Optional or
	// Repeat (len == 1, invariant I2).
	Children []*Expression

	// Start and End bound a CharRange (invariant I3: Start <= End).
	Start, End byte

	// Class holds a CharClass's finalized membership bitmap (invariant
	// I4: exclusion markers are already inverted into this bitmap).
	Class bitset.Set
}

// allocator is satisfied by *arena.Arena[Expression]; a nil allocator makes
// alloc fall back to the Go heap, so the grammar builder can attach an arena
// or not.
type allocator interface {
	Alloc() *Expression
}

func alloc(a allocator) *Expression {
	if a == nil {
		return &Expression{}
	}
	return a.Alloc()
}

// NewTerminal builds a Terminal node. literal must be non-empty
// (invariant I5).
func NewTerminal(a allocator, literal []byte) (*Expression, error) {
	if len(literal) == 0 {
		return nil, bnfcore.FormatError(bnfcore.ExprErrors, "empty terminal literal")
	}
	e := alloc(a)
	e.Kind = KindTerminal
	e.Literal = literal
	return e, nil
}

// NewSymbol builds a Symbol node referencing name, resolved by name at
// match time.
func NewSymbol(a allocator, name string) *Expression {
	e := alloc(a)
	e.Kind = KindSymbol
	e.Name = name
	return e
}

// NewSequence builds a Sequence over children, which must be non-empty
// (invariant I1).
func NewSequence(a allocator, children []*Expression) (*Expression, error) {
	if len(children) == 0 {
		return nil, bnfcore.FormatError(bnfcore.ExprErrors, "sequence with no children")
	}
	e := alloc(a)
	e.Kind = KindSequence
	e.Children = children
	return e, nil
}

// NewAlternative builds an Alternative over children, which must be
// non-empty (invariant I1).
func NewAlternative(a allocator, children []*Expression) (*Expression, error) {
	if len(children) == 0 {
		return nil, bnfcore.FormatError(bnfcore.ExprErrors, "alternative with no children")
	}
	e := alloc(a)
	e.Kind = KindAlternative
	e.Children = children
	return e, nil
}

// NewOptional builds an Optional wrapping exactly one child (invariant I2).
func NewOptional(a allocator, child *Expression) (*Expression, error) {
	if child == nil {
		return nil, bnfcore.FormatError(bnfcore.ExprErrors, "optional with no child")
	}
	e := alloc(a)
	e.Kind = KindOptional
	e.Children = []*Expression{child}
	return e, nil
}

// NewRepeat builds a Repeat wrapping exactly one child (invariant I2).
func NewRepeat(a allocator, child *Expression) (*Expression, error) {
	if child == nil {
		return nil, bnfcore.FormatError(bnfcore.ExprErrors, "repeat with no child")
	}
	e := alloc(a)
	e.Kind = KindRepeat
	e.Children = []*Expression{child}
	return e, nil
}

// NewCharRange builds a CharRange over [start,end]. Callers are expected to
// have already swapped start and end so that start <= end (invariant I3).
func NewCharRange(a allocator, start, end byte) (*Expression, error) {
	if start > end {
		return nil, bnfcore.FormatError(bnfcore.ExprErrors, "char range start %d > end %d", start, end)
	}
	e := alloc(a)
	e.Kind = KindCharRange
	e.Start = start
	e.End = end
	return e, nil
}

// NewCharClass builds a CharClass from the finalized membership bitmap
// (invariant I4: exclusion already resolved by the caller).
func NewCharClass(a allocator, class bitset.Set) *Expression {
	e := alloc(a)
	e.Kind = KindCharClass
	e.Class = class
	return e
}

// Child returns the single child of an Optional or Repeat node.
func (e *Expression) Child() *Expression {
	return e.Children[0]
}
