// Package grammar parses rule text ("name ::= body") into an interned
// expression graph and owns the resulting insertion-ordered rule list.
//
// Grounded on the teacher's langdef package: Parse/ParseString's top-level
// shape (tokenize, build, report) and the error-collection discipline of
// langdef/parser.go are adapted here to the much simpler rule model this
// spec calls for (a flat {name, root} pair rather than an LL(*) state
// machine), so this file replaces rather than extends grammar/grammar.go's
// original Term/Nonterm/State types.
package grammar

import (
	"errors"
	"strings"

	"github.com/bnfkit/bnfcore"
	"github.com/bnfkit/bnfcore/arena"
	"github.com/bnfkit/bnfcore/config"
	"github.com/bnfkit/bnfcore/diagnostics"
	"github.com/bnfkit/bnfcore/expr"
	"github.com/bnfkit/bnfcore/intern"
)

// Allocator is satisfied by *arena.Arena[expr.Expression]; when set via
// SetArena every Expression node built by AddRule is arena-backed.
type Allocator interface {
	Alloc() *expr.Expression
}

// Logger receives diagnostics for malformed rule text. SetLogger is
// optional; a nil Logger silently drops the message.
type Logger interface {
	Warnf(format string, args ...any)
}

// Rule pairs a non-terminal name with its parsed expression body.
type Rule struct {
	Name string
	Root *expr.Expression
}

// Grammar owns an insertion-ordered list of rules and the shared build-time
// services (arena, interner, FIRST analyser) used to construct them.
//
// Per the concurrency model, a Grammar is built single-threaded by
// repeated AddRule calls, then Finalize is called once; after Finalize
// returns, concurrent Parse/ParseCtx calls against the same Grammar need
// no locking, because nothing written during build is mutated again.
type Grammar struct {
	rules    []*Rule
	byName   map[string]int // first index only, per GetRule's first-match rule
	arena    Allocator
	interner *intern.Interner
	analyser *expr.Analyser
	logger   Logger
}

// New creates an empty Grammar with no arena or interner attached.
func New() *Grammar {
	return &Grammar{byName: make(map[string]int)}
}

// NewFromConfig creates a Grammar wired per opts (see package config): an
// arena blocked at opts.ArenaBlockSize backs every Expression node built by
// subsequent AddRule calls, an interner is attached when opts.InternByDefault
// is set, and diagnostics.Global() — leveled per opts.DiagnosticLevel —
// becomes the Grammar's logger, so malformed rules reach the diagnostic
// stream by default instead of only when a caller remembers to SetLogger.
func NewFromConfig(opts *config.Options) (*Grammar, error) {
	if err := diagnostics.SetLevel(opts.DiagnosticLevel); err != nil {
		return nil, bnfcore.FormatError(bnfcore.ConfigErrors, "applying diagnostic-level %q: %s", opts.DiagnosticLevel, err.Error())
	}

	g := New()
	g.SetArena(arena.New[expr.Expression](opts.ArenaBlockSize))
	if opts.InternByDefault {
		g.SetInterner(intern.New(opts.ArenaBlockSize))
	}
	g.SetLogger(diagnostics.Global())
	return g, nil
}

// SetArena attaches a as the backing allocator for every Expression node
// built by subsequent AddRule calls.
func (g *Grammar) SetArena(a Allocator) {
	g.arena = a
}

// SetInterner attaches in as the structural hash-consing table probed
// after building every subexpression in subsequent AddRule calls.
func (g *Grammar) SetInterner(in *intern.Interner) {
	g.interner = in
}

// SetLogger attaches l to receive warnings about malformed rule text.
func (g *Grammar) SetLogger(l Logger) {
	g.logger = l
}

// AddRule parses one "name ::= body" line and appends it as a new rule.
// Duplicate names are permitted; GetRule resolves to the first one added.
// A malformed rule (missing "::=", or a body the builder rejects) is
// logged and reported as a *bnfcore.Error; the grammar is left unchanged.
func (g *Grammar) AddRule(text string) error {
	sepIdx := strings.Index(text, "::=")
	if sepIdx < 0 {
		err := bnfcore.FormatError(bnfcore.BuildErrors, "rule %q missing '::=' separator", text)
		g.warn(err.Message)
		return err
	}

	name := strings.TrimSpace(text[:sepIdx])
	body := text[sepIdx+len("::="):]

	b := newBuilder(body, g.arena, g.interner)
	root, err := b.parseBody()
	if err != nil {
		wrapped := bnfcore.FormatError(bnfcore.BuildErrors, "rule %q: %s", name, err.Error())
		g.warn(wrapped.Message)
		return wrapped
	}

	rule := &Rule{Name: name, Root: root}
	if _, exists := g.byName[name]; !exists {
		g.byName[name] = len(g.rules)
	}
	g.rules = append(g.rules, rule)
	return nil
}

// AddRules calls AddRule for every line in texts, continuing past a
// malformed rule rather than stopping at the first one (each bad rule is
// still individually logged and dropped by AddRule). It returns nil if
// every rule built cleanly, or the accumulated per-rule errors joined with
// errors.Join otherwise, so a host loading a whole grammar file in one call
// can report every malformed line at once instead of only the first.
func (g *Grammar) AddRules(texts []string) error {
	var errs []error
	for _, text := range texts {
		if err := g.AddRule(text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetRule returns the first rule added under name, and whether it exists.
func (g *Grammar) GetRule(name string) (*Rule, bool) {
	idx, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.rules[idx], true
}

// Resolve implements expr.Resolver, looking up a rule's root expression by
// name for FIRST-set computation and for Symbol matching.
func (g *Grammar) Resolve(name string) *expr.Expression {
	r, ok := g.GetRule(name)
	if !ok {
		return nil
	}
	return r.Root
}

// Finalize computes and memoizes FIRST information for every expression
// reachable from a rule's root, so matching only reads the memo. Per the
// concurrency model this must run before any concurrent match against this
// Grammar; Finalize itself is not safe to call concurrently with AddRule or
// with another Finalize.
func (g *Grammar) Finalize() {
	if g.analyser == nil {
		g.analyser = expr.NewAnalyser(g)
	}
	seen := make(map[*expr.Expression]bool)
	var visit func(e *expr.Expression)
	visit = func(e *expr.Expression) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true
		g.analyser.First(e)
		for _, c := range e.Children {
			visit(c)
		}
	}
	for _, r := range g.rules {
		visit(r.Root)
	}
}

// Analyser returns the Grammar's FIRST-set analyser, creating it
// (unpopulated) on first call if Finalize has not yet run.
func (g *Grammar) Analyser() *expr.Analyser {
	if g.analyser == nil {
		g.analyser = expr.NewAnalyser(g)
	}
	return g.analyser
}

// Rules returns the grammar's rules in insertion order. The returned slice
// is owned by the Grammar and must not be modified.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

func (g *Grammar) warn(msg string) {
	if g.logger != nil {
		g.logger.Warnf("%s", msg)
	}
}
