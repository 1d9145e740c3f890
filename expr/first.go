package expr

import "github.com/bnfkit/bnfcore/bitset"

// First is the FIRST-set information computed for an expression: the set
// of initial input bytes at which it can begin a successful match, and
// whether it can match the empty prefix.
type First struct {
	Chars    bitset.Set
	Nullable bool
}

// Resolver looks up a rule's root expression by non-terminal name, as
// needed to compute a Symbol's FIRST set. It is satisfied by
// *grammar.Grammar; expr does not import grammar to avoid a cycle.
type Resolver interface {
	Resolve(name string) *Expression
}

// Analyser computes and memoizes FIRST information per expression pointer.
// It is not safe for concurrent use while entries are still being filled;
// once every entry of interest has been computed (see grammar.Finalize),
// concurrent reads of an already-populated Analyser are safe.
type Analyser struct {
	resolver Resolver
	memo     map[*Expression]*First
}

// NewAnalyser creates an Analyser that resolves Symbol references through r.
func NewAnalyser(r Resolver) *Analyser {
	return &Analyser{resolver: r, memo: make(map[*Expression]*First)}
}

// First returns the memoized FIRST information for e, computing it on
// first request. Cycles through Symbol references are broken by seeding
// the memo with a conservative empty/not-nullable entry before recursing;
// re-entrant lookups read that entry, and the fixed point is whatever the
// first completed traversal settles on. This is conservative but sound:
// the matcher never skips a branch that could have matched.
func (a *Analyser) First(e *Expression) *First {
	if fi, ok := a.memo[e]; ok {
		return fi
	}

	fi := &First{}
	a.memo[e] = fi
	computed := a.compute(e)
	*fi = *computed
	return fi
}

func (a *Analyser) compute(e *Expression) *First {
	switch e.Kind {
	case KindTerminal:
		fi := &First{}
		if len(e.Literal) == 0 {
			fi.Nullable = true
		} else {
			fi.Chars.Add(e.Literal[0])
		}
		return fi

	case KindSymbol:
		if a.resolver == nil {
			return &First{}
		}
		root := a.resolver.Resolve(e.Name)
		if root == nil {
			return &First{}
		}
		return a.First(root)

	case KindSequence:
		fi := &First{Nullable: true}
		for _, c := range e.Children {
			cf := a.First(c)
			fi.Chars.Union(&cf.Chars)
			if !cf.Nullable {
				fi.Nullable = false
				break
			}
		}
		return fi

	case KindAlternative:
		fi := &First{}
		for _, c := range e.Children {
			cf := a.First(c)
			fi.Chars.Union(&cf.Chars)
			if cf.Nullable {
				fi.Nullable = true
			}
		}
		return fi

	case KindOptional, KindRepeat:
		cf := a.First(e.Child())
		return &First{Chars: cf.Chars, Nullable: true}

	case KindCharRange:
		fi := &First{}
		fi.Chars.AddRange(e.Start, e.End)
		return fi

	case KindCharClass:
		return &First{Chars: e.Class}

	default:
		return &First{}
	}
}
