/*
Package bnfcore is a library for describing regular-to-context-free
textual grammars in a BNF-like notation and executing them against input
strings to produce annotated parse trees.

Consists of subpackages:
  - token: tokenizes a rule's right-hand side text into a flat token sequence;
  - expr: the interned, immutable expression graph representing a rule body;
  - bitset: a fixed 256-bit byte set used by char classes and FIRST sets;
  - arena: a bump-pointer allocator that owns expression nodes;
  - intern: structural hash-consing of expression subtrees;
  - grammar: parses rule text ("name ::= body") into a Grammar of Rules;
  - match: executes a Grammar against input via recursive-descent matching;
  - config: loads grammar-build options from TOML;
  - diagnostics: the diagnostic stream malformed rules are reported to.

Typical usage is:

1. Build a Grammar by adding rules written in the BNF-like notation from
package grammar's documentation.

2. Call Grammar.Finalize to populate the FIRST-set memo (an attached
interner is filled as rules are added).

3. Create a Matcher for the grammar and parse input against a named rule,
either through the legacy two-value entry point or the unified
parse-context entry point.
*/
package bnfcore

import (
	"fmt"
)

// Error classes used by subpackages, each class contains up to 99 error codes.
const (
	TokenErrors   = 1   // reserved for package token
	ExprErrors    = 101 // used by package expr
	BuildErrors   = 201 // used by package grammar
	MatchErrors   = 301 // reserved for package match
	ConfigErrors  = 401 // used by package config
)

// Error is the error type used by bnfcore subpackages.
type Error struct {
	// Code contains a non-zero error code, one of the *Errors class constants.
	Code int

	// Message contains a non-empty, human-readable error message.
	Message string
}

// NewError creates a new Error.
func NewError(code int, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Error returns Error.Message, satisfying the error interface.
func (e *Error) Error() string {
	return e.Message
}

// FormatError creates an Error, formatting msg with params using fmt.Sprintf
// when params is non-empty.
func FormatError(code int, msg string, params ...any) *Error {
	if len(params) > 0 {
		msg = fmt.Sprintf(msg, params...)
	}
	return NewError(code, msg)
}
