package match

import (
	"bytes"
	"fmt"

	"github.com/bnfkit/bnfcore/expr"
	"github.com/bnfkit/bnfcore/grammar"
)

// Matcher executes a Grammar's expression graph against input. It holds
// no mutable state of its own: the grammar, its FIRST-memo, and its
// interner are treated as logically immutable once built (see the
// Grammar's own Finalize), so one Matcher may serve concurrent ParseCtx
// calls safely.
type Matcher struct {
	g *grammar.Grammar
}

// New creates a Matcher bound to g.
func New(g *grammar.Grammar) *Matcher {
	return &Matcher{g: g}
}

// Parse is the legacy entry point: it returns the matched tree and the
// number of input bytes consumed, or (nil, 0) on outright failure.
func (m *Matcher) Parse(ruleName string, input []byte) (*ParseTree, int) {
	ctx := m.ParseCtx(ruleName, input)
	if !ctx.Success {
		return nil, 0
	}
	return ctx.MatchedTree, ctx.Consumed
}

// ParseCtx is the unified entry point: it always returns a populated
// ParseContext, with furthest-failure diagnostics set even on failure. On
// success the tree's root is a node named after ruleName whose only child
// is the tree of the rule body.
func (m *Matcher) ParseCtx(ruleName string, input []byte) *ParseContext {
	ctx := newParseContext()

	rule, ok := m.g.GetRule(ruleName)
	if !ok {
		updateError(ctx, 0, fmt.Sprintf("symbol %s (undefined)", ruleName))
		return ctx
	}

	tree, pos, ok := m.matchExpr(rule.Root, input, 0, ctx)
	if !ok {
		ctx.Consumed = 0
		return ctx
	}

	ctx.Success = true
	ctx.MatchedTree = &ParseTree{Symbol: rule.Name, Matched: input[:pos], Children: []*ParseTree{tree}}
	ctx.Consumed = pos
	return ctx
}

// matchExpr dispatches on e's kind. ctx may be nil, in which case
// furthest-failure tracking is skipped; Parse and ParseCtx both pass a
// non-nil context.
func (m *Matcher) matchExpr(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	if e == nil {
		updateError(ctx, pos, "null expression")
		return nil, pos, false
	}

	switch e.Kind {
	case expr.KindTerminal:
		return m.matchTerminal(e, input, pos, ctx)
	case expr.KindSymbol:
		return m.matchSymbol(e, input, pos, ctx)
	case expr.KindSequence:
		return m.matchSequence(e, input, pos, ctx)
	case expr.KindAlternative:
		return m.matchAlternative(e, input, pos, ctx)
	case expr.KindOptional:
		return m.matchOptional(e, input, pos, ctx)
	case expr.KindRepeat:
		return m.matchRepeat(e, input, pos, ctx)
	case expr.KindCharRange:
		return m.matchCharRange(e, input, pos, ctx)
	case expr.KindCharClass:
		return m.matchCharClass(e, input, pos, ctx)
	default:
		updateError(ctx, pos, "unsupported expression type")
		return nil, pos, false
	}
}

func (m *Matcher) matchTerminal(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	lit := e.Literal
	if len(lit) == 0 {
		updateError(ctx, pos, "empty terminal")
		return nil, pos, false
	}

	end := pos + len(lit)
	if end <= len(input) && bytes.Equal(input[pos:end], lit) {
		return &ParseTree{Symbol: string(lit), Matched: lit}, end, true
	}

	updateError(ctx, pos, fmt.Sprintf("terminal '%s'", lit))
	return nil, pos, false
}

func (m *Matcher) matchSymbol(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	rule, ok := m.g.GetRule(e.Name)
	if !ok {
		updateError(ctx, pos, fmt.Sprintf("symbol %s (undefined)", e.Name))
		return nil, pos, false
	}

	child, newPos, ok := m.matchExpr(rule.Root, input, pos, ctx)
	if !ok {
		return nil, pos, false
	}
	return &ParseTree{Symbol: e.Name, Matched: input[pos:newPos], Children: []*ParseTree{child}}, newPos, true
}

func (m *Matcher) matchSequence(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	children := make([]*ParseTree, 0, len(e.Children))
	cur := pos
	for _, c := range e.Children {
		child, newPos, ok := m.matchExpr(c, input, cur, ctx)
		if !ok {
			return nil, pos, false
		}
		children = append(children, child)
		cur = newPos
	}
	return &ParseTree{Symbol: "seq", Matched: input[pos:cur], Children: children}, cur, true
}

// matchAlternative tries every branch, pruning with FIRST sets, and keeps
// the branch consuming the most input. Ties keep the earlier winner
// (strict ">" below), matching P3's longest-match requirement.
func (m *Matcher) matchAlternative(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	analyser := m.g.Analyser()

	var best *ParseTree
	bestPos := pos
	matched := false

	for _, c := range e.Children {
		fi := analyser.First(c)
		if pos < len(input) {
			if !fi.Nullable && !fi.Chars.Contains(input[pos]) {
				continue
			}
		} else if !fi.Nullable {
			continue
		}

		child, newPos, ok := m.matchExpr(c, input, pos, ctx)
		if !ok {
			continue
		}
		if !matched || newPos > bestPos {
			best = child
			bestPos = newPos
			matched = true
		}
	}

	if !matched {
		// Pruned branches never reach a failing leaf; when nothing has been
		// recorded at this position yet, run the first branch so its leaf
		// failure is recorded here.
		if ctx != nil && ctx.ErrorPos < pos {
			m.matchExpr(e.Children[0], input, pos, ctx)
		}
		return nil, pos, false
	}
	return &ParseTree{Symbol: "alt", Matched: input[pos:bestPos], Children: []*ParseTree{best}}, bestPos, true
}

func (m *Matcher) matchOptional(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	child, newPos, ok := m.matchExpr(e.Child(), input, pos, ctx)
	if ok {
		return &ParseTree{Symbol: "opt", Matched: input[pos:newPos], Children: []*ParseTree{child}}, newPos, true
	}
	return &ParseTree{Symbol: "opt", Matched: []byte{}}, pos, true
}

// matchRepeat matches the child greedily, stopping on failure, on an
// empty match (P4: prevents infinite loops over nullable children), or
// once input is exhausted.
func (m *Matcher) matchRepeat(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	var children []*ParseTree
	cur := pos
	for {
		child, newPos, ok := m.matchExpr(e.Child(), input, cur, ctx)
		if !ok || newPos == cur {
			break
		}
		children = append(children, child)
		cur = newPos
		if cur >= len(input) {
			break
		}
	}
	return &ParseTree{Symbol: "rep", Matched: input[pos:cur], Children: children}, cur, true
}

func (m *Matcher) matchCharRange(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	if pos >= len(input) {
		updateError(ctx, pos, fmt.Sprintf("character in range '%c'...'%c'", e.Start, e.End))
		return nil, pos, false
	}
	b := input[pos]
	if b >= e.Start && b <= e.End {
		return &ParseTree{Symbol: "char-range", Matched: input[pos : pos+1]}, pos + 1, true
	}
	updateError(ctx, pos, fmt.Sprintf("character in range '%c'...'%c'", e.Start, e.End))
	return nil, pos, false
}

func (m *Matcher) matchCharClass(e *expr.Expression, input []byte, pos int, ctx *ParseContext) (*ParseTree, int, bool) {
	if pos >= len(input) {
		updateError(ctx, pos, "character class")
		return nil, pos, false
	}
	b := input[pos]
	if e.Class.Contains(b) {
		return &ParseTree{Symbol: "char-class", Matched: input[pos : pos+1]}, pos + 1, true
	}
	updateError(ctx, pos, "character class")
	return nil, pos, false
}
