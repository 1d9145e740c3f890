package grammar

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/bnfkit/bnfcore/arena"
	"github.com/bnfkit/bnfcore/config"
	"github.com/bnfkit/bnfcore/diagnostics"
	"github.com/bnfkit/bnfcore/expr"
)

func TestAddRuleRejectsMissingSeparator(t *testing.T) {
	g := New()
	if err := g.AddRule("<d> '0'"); err == nil {
		t.Fatal("expected error for missing '::=' separator")
	}
}

func TestAddRuleAndGetRule(t *testing.T) {
	g := New()
	if err := g.AddRule("<d> ::= '0' ... '9'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, ok := g.GetRule("<d>")
	if !ok {
		t.Fatal("expected rule <d> to exist")
	}
	if r.Name != "<d>" {
		t.Fatalf("expected name <d>, got %q", r.Name)
	}
}

func TestGetRuleMissingReturnsFalse(t *testing.T) {
	g := New()
	if _, ok := g.GetRule("<nope>"); ok {
		t.Fatal("expected missing rule lookup to fail")
	}
}

func TestDuplicateRuleNamesKeepFirstOnLookup(t *testing.T) {
	g := New()
	if err := g.AddRule("<d> ::= '1'"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddRule("<d> ::= '2'"); err != nil {
		t.Fatal(err)
	}
	r, ok := g.GetRule("<d>")
	if !ok {
		t.Fatal("expected rule to exist")
	}
	if r.Root.Literal == nil || string(r.Root.Literal) != "1" {
		t.Fatalf("expected first definition to win, got %q", r.Root.Literal)
	}
	if len(g.Rules()) != 2 {
		t.Fatalf("expected both definitions retained in insertion order, got %d", len(g.Rules()))
	}
}

func TestAddRuleRejectsMalformedBody(t *testing.T) {
	g := New()
	if err := g.AddRule("<x> ::= {}"); err == nil {
		t.Fatal("expected error for empty repeat body")
	}
}

func TestAddRuleRejectsBareHexAtom(t *testing.T) {
	g := New()
	if err := g.AddRule("<x> ::= 0x41"); err == nil {
		t.Fatal("expected bare hex atom to be rejected")
	}
}

func TestAddRuleAcceptsSequenceAlternativeAndRepeat(t *testing.T) {
	g := New()
	if err := g.AddRule("<n> ::= <d> { <d> }"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddRule("<s> ::= 'A' | 'AB' | 'ABC'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddRulesJoinsErrorsForEachMalformedLine(t *testing.T) {
	g := New()
	err := g.AddRules([]string{
		"<d> ::= '0' ... '9'",
		"<bad1> no separator here",
		"<n> ::= <d> { <d> }",
		"<bad2> ::= {}",
	})
	if err == nil {
		t.Fatal("expected a joined error for the two malformed lines")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected an errors.Join result supporting Unwrap() []error, got %T", err)
	}
	if got := len(joined.Unwrap()); got != 2 {
		t.Fatalf("expected 2 joined errors, got %d", got)
	}
	if _, ok := g.GetRule("<d>"); !ok {
		t.Fatal("expected the well-formed rule <d> to still be added")
	}
	if _, ok := g.GetRule("<n>"); !ok {
		t.Fatal("expected the well-formed rule <n> to still be added")
	}
}

func TestAddRulesReturnsNilWhenAllRulesBuildCleanly(t *testing.T) {
	g := New()
	err := g.AddRules([]string{
		"<d> ::= '0' ... '9'",
		"<n> ::= <d> { <d> }",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

// TestNewFromConfigWiresArenaInternerAndLogger checks that config.Options
// actually drives grammar construction end to end, rather than sitting in
// an unwired, self-contained island: the arena it configures must be the
// one AddRule allocates from, the interner must be the one AddRule probes,
// and diagnostics.Global() must be the logger a malformed rule reaches.
func TestNewFromConfigWiresArenaInternerAndLogger(t *testing.T) {
	var buf bytes.Buffer
	diagnostics.SetOutput(&buf)
	defer diagnostics.SetOutput(os.Stderr)

	opts := config.Default()
	opts.ArenaBlockSize = 4
	g, err := NewFromConfig(opts)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	if err := g.AddRule("<d> ::= '0' ... '9'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddRule("<n> ::= <d> { <d> }"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := g.arena.(*arena.Arena[expr.Expression])
	if !ok || a.Len() == 0 {
		t.Fatal("expected AddRule to allocate Expression nodes from the configured arena")
	}
	if g.interner == nil || g.interner.Len() == 0 {
		t.Fatal("expected AddRule to intern nodes into the configured interner")
	}

	if err := g.AddRule("<bad-rule> no separator here"); err == nil {
		t.Fatal("expected malformed rule to error")
	}
	if !strings.Contains(buf.String(), "bad-rule") {
		t.Fatalf("expected malformed rule warning to reach the wired diagnostics logger, got %q", buf.String())
	}
}

func TestFinalizeResolvesSymbolFirstSets(t *testing.T) {
	g := New()
	if err := g.AddRule("<d> ::= '0' ... '9'"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddRule("<n> ::= <d> { <d> }"); err != nil {
		t.Fatal(err)
	}
	g.Finalize()

	n, _ := g.GetRule("<n>")
	fi := g.Analyser().First(n.Root)
	if !fi.Chars.Contains('5') {
		t.Fatal("expected <n>'s FIRST set to include digits via its <d> reference")
	}
	if fi.Nullable {
		t.Fatal("<n> requires at least one digit, must not be nullable")
	}
}
