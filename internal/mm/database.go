package mm

import "github.com/altmm/altmm/internal/types"

// Database holds the global state built while reading a database:
// declared symbols, used labels, hypotheses and assertions. It is the
// hypothesis registry handed to the duplicate detector.
type Database struct {
	constants  map[string]bool
	variables  map[string]bool
	labels     map[string]bool
	hypotheses map[string]types.Hypothesis
	assertions map[string]types.Assertion
	order      []string
}

func NewDatabase() *Database {
	return &Database{
		constants:  make(map[string]bool),
		variables:  make(map[string]bool),
		labels:     make(map[string]bool),
		hypotheses: make(map[string]types.Hypothesis),
		assertions: make(map[string]types.Assertion),
	}
}

// Hypothesis implements types.HypothesisRegistry.
func (db *Database) Hypothesis(label string) (types.Hypothesis, bool) {
	hyp, ok := db.hypotheses[label]
	return hyp, ok
}

// Assertion returns an accepted assertion by label.
func (db *Database) Assertion(label string) (types.Assertion, bool) {
	a, ok := db.assertions[label]
	return a, ok
}

// Assertions returns the accepted assertions in database order.
func (db *Database) Assertions() []types.Assertion {
	out := make([]types.Assertion, 0, len(db.order))
	for _, label := range db.order {
		out = append(out, db.assertions[label])
	}
	return out
}

func (db *Database) isConstant(sym string) bool { return db.constants[sym] }

func (db *Database) addHypothesis(label string, hyp types.Hypothesis) {
	db.labels[label] = true
	db.hypotheses[label] = hyp
}

func (db *Database) addAssertion(a types.Assertion) {
	db.labels[a.Label] = true
	db.assertions[a.Label] = a
	db.order = append(db.order, a.Label)
}

// scope is one `${ ... $}` block.
type scope struct {
	activeVariables map[string]bool
	activeHyps      []string
	disjointSets    [][]string
	// floatingHyps maps a variable to its active `$f` label.
	floatingHyps map[string]string
}

func newScope() *scope {
	return &scope{
		activeVariables: make(map[string]bool),
		floatingHyps:    make(map[string]string),
	}
}
