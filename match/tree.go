// Package match implements the recursive-descent matcher: it executes a
// grammar's expression graph against an input byte string, producing a
// parse tree and a furthest-failure diagnostic context.
//
// Grounded on the teacher's parser/parser.go recursive dispatch shape
// (one function per expression kind, threading position through
// recursive calls) and tree/tree.go for the parse-tree concept, simplified
// from the teacher's linked-sibling Node/NonTermNode interfaces to the
// plain slice-of-children shape this spec calls for.
package match

// ParseTree is one node of a parse result. Matched is the concatenation of
// the input bytes this subtree consumed. Symbol records the production
// kind: a non-terminal name, a synthetic label ("seq", "alt", "opt",
// "rep", "char-range", "char-class"), or the terminal literal matched.
type ParseTree struct {
	Symbol   string
	Matched  []byte
	Children []*ParseTree
}
