package types

import "strings"

// Expression is a sequence of math symbols, beginning with a typecode.
type Expression []string

func (e Expression) String() string {
	return strings.Join(e, " ")
}

// Hypothesis is a `$f` or `$e` statement as seen by the assertions that use it.
type Hypothesis struct {
	Expression Expression
	// Floating is true for `$f` (variable kind declarations).
	Floating bool
}

// HypothesisRegistry resolves hypothesis labels to their statements.
type HypothesisRegistry interface {
	Hypothesis(label string) (Hypothesis, bool)
}

// DisjointPair is one mandatory disjoint variable restriction.
type DisjointPair struct {
	First  string
	Second string
}

func (p DisjointPair) String() string {
	return p.First + " " + p.Second
}

// AssertionKind tells axioms (and definitions) apart from proved theorems.
type AssertionKind int

const (
	KindAxiom AssertionKind = iota
	KindTheorem
)

func (k AssertionKind) String() string {
	switch k {
	case KindAxiom:
		return "axiom"
	case KindTheorem:
		return "theorem"
	default:
		return "unknown"
	}
}

// Assertion is an accepted `$a` or `$p` statement together with its frame.
// It is built once by the reader and never modified afterwards.
type Assertion struct {
	Label      string
	Kind       AssertionKind
	Conclusion Expression
	// Hypotheses holds the mandatory hypothesis labels in declaration order.
	Hypotheses    []string
	DisjointPairs []DisjointPair
}
