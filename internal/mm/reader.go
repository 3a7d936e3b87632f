package mm

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/altmm/altmm/internal/types"
)

// Reader reads a Metamath database in one pass, checking its structure and
// building an assertion for every `$a` and `$p` statement. Proofs are read
// past but not checked.
type Reader struct {
	db              *Database
	assertionHook   AssertionHook
	declarationHook DeclarationHook
	open            OpenFunc
	logger          *zap.Logger

	files  []string
	tokens []token
	next   int
	scopes []*scope
}

// Option configures a Reader.
type Option func(*Reader)

func WithAssertionHook(h AssertionHook) Option {
	return func(r *Reader) { r.assertionHook = h }
}

func WithDeclarationHook(h DeclarationHook) Option {
	return func(r *Reader) { r.declarationHook = h }
}

// WithOpenFunc replaces os.Open for reading database files.
func WithOpenFunc(open OpenFunc) Option {
	return func(r *Reader) { r.open = open }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reader) { r.logger = logger }
}

func NewReader(db *Database, opts ...Option) *Reader {
	r := &Reader{
		db:              db,
		assertionHook:   nopHooks{},
		declarationHook: nopHooks{},
		open:            defaultOpen,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Files returns the files loaded by the last Read, the database first.
func (r *Reader) Files() []string {
	return r.files
}

// Read processes the database at path. On error the database and the hooks
// reflect the statements accepted before the failure.
func (r *Reader) Read(ctx context.Context, path string) error {
	tz := newTokenizer(r.open)
	tokens, err := tz.load(path)
	r.files = tz.files
	if err != nil {
		return err
	}
	r.logger.Debug("Database tokenized",
		zap.String("path", path),
		zap.Int("files", len(tz.files)),
		zap.Int("tokens", len(tokens)))

	r.tokens = tokens
	r.next = 0
	r.scopes = []*scope{newScope()}

	for r.more() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.statement(); err != nil {
			return err
		}
	}

	if len(r.scopes) > 1 {
		return errorf(r.lastPos(), "${ without matching $}")
	}
	return nil
}

func (r *Reader) more() bool {
	return r.next < len(r.tokens)
}

func (r *Reader) take() token {
	tok := r.tokens[r.next]
	r.next++
	return tok
}

func (r *Reader) lastPos() Pos {
	if len(r.tokens) == 0 {
		return Pos{}
	}
	return r.tokens[len(r.tokens)-1].pos
}

func (r *Reader) statement() error {
	tok := r.take()
	switch tok.text {
	case "${":
		r.scopes = append(r.scopes, newScope())
		return nil
	case "$}":
		if len(r.scopes) == 1 {
			return errorf(tok.pos, "$} without corresponding ${")
		}
		r.scopes = r.scopes[:len(r.scopes)-1]
		return nil
	case "$c":
		return r.constants(tok)
	case "$v":
		return r.variables(tok)
	case "$d":
		return r.disjoint(tok)
	}

	if !isLabel(tok.text) {
		return errorf(tok.pos, "unexpected token %s", tok.text)
	}
	return r.labelled(tok)
}

// symbols reads math symbols up to terminator.
func (r *Reader) symbols(start token, terminator string) ([]token, error) {
	var out []token
	for r.more() {
		tok := r.take()
		if tok.text == terminator {
			return out, nil
		}
		if strings.HasPrefix(tok.text, "$") {
			return nil, errorf(tok.pos, "unexpected %s in %s statement, expected %s", tok.text, start.text, terminator)
		}
		out = append(out, tok)
	}
	return nil, errorf(start.pos, "unterminated %s statement", start.text)
}

func (r *Reader) constants(start token) error {
	if len(r.scopes) > 1 {
		return errorf(start.pos, "$c statement occurs in inner block")
	}
	syms, err := r.symbols(start, "$.")
	if err != nil {
		return err
	}
	if len(syms) == 0 {
		return errorf(start.pos, "empty $c statement")
	}
	for _, sym := range syms {
		if err := r.checkSymbol(sym); err != nil {
			return err
		}
		if r.db.variables[sym.text] {
			return errorf(sym.pos, "attempt to redeclare variable %s as a constant", sym.text)
		}
		if r.db.constants[sym.text] {
			return errorf(sym.pos, "attempt to redeclare constant %s", sym.text)
		}
		r.db.constants[sym.text] = true
	}
	return nil
}

func (r *Reader) variables(start token) error {
	syms, err := r.symbols(start, "$.")
	if err != nil {
		return err
	}
	if len(syms) == 0 {
		return errorf(start.pos, "empty $v statement")
	}
	current := r.scopes[len(r.scopes)-1]
	for _, sym := range syms {
		if err := r.checkSymbol(sym); err != nil {
			return err
		}
		if r.db.constants[sym.text] {
			return errorf(sym.pos, "attempt to redeclare constant %s as a variable", sym.text)
		}
		if r.isActiveVariable(sym.text) {
			return errorf(sym.pos, "attempt to redeclare active variable %s", sym.text)
		}
		r.db.variables[sym.text] = true
		current.activeVariables[sym.text] = true
	}
	return nil
}

func (r *Reader) disjoint(start token) error {
	syms, err := r.symbols(start, "$.")
	if err != nil {
		return err
	}
	if len(syms) < 2 {
		return errorf(start.pos, "$d statement needs at least two variables")
	}
	set := make([]string, 0, len(syms))
	seen := make(map[string]bool, len(syms))
	for _, sym := range syms {
		if !r.isActiveVariable(sym.text) {
			return errorf(sym.pos, "%s in $d statement is not an active variable", sym.text)
		}
		if seen[sym.text] {
			return errorf(sym.pos, "%s appears more than once in $d statement", sym.text)
		}
		seen[sym.text] = true
		set = append(set, sym.text)
	}
	sort.Strings(set)
	current := r.scopes[len(r.scopes)-1]
	current.disjointSets = append(current.disjointSets, set)
	return nil
}

func (r *Reader) labelled(label token) error {
	if r.db.labels[label.text] {
		return errorf(label.pos, "label %s used more than once", label.text)
	}
	if r.db.constants[label.text] || r.db.variables[label.text] {
		return errorf(label.pos, "label %s matches a math symbol", label.text)
	}
	if !r.more() {
		return errorf(label.pos, "unexpected end of file after label %s", label.text)
	}

	kw := r.take()
	switch kw.text {
	case "$f":
		return r.floating(label, kw)
	case "$e":
		return r.essential(label, kw)
	case "$a":
		return r.axiom(label, kw)
	case "$p":
		return r.provable(label, kw)
	default:
		return errorf(kw.pos, "unexpected token %s after label %s", kw.text, label.text)
	}
}

func (r *Reader) floating(label, kw token) error {
	syms, err := r.symbols(kw, "$.")
	if err != nil {
		return err
	}
	if len(syms) != 2 {
		return errorf(kw.pos, "$f statement %s must have exactly two math symbols", label.text)
	}
	typecode, variable := syms[0], syms[1]
	if !r.db.isConstant(typecode.text) {
		return errorf(typecode.pos, "first symbol of $f statement %s is not a constant", label.text)
	}
	if !r.isActiveVariable(variable.text) {
		return errorf(variable.pos, "second symbol of $f statement %s is not an active variable", label.text)
	}
	if _, ok := r.floatingHypothesis(variable.text); ok {
		return errorf(variable.pos, "variable %s already has an active $f statement", variable.text)
	}

	r.db.addHypothesis(label.text, types.Hypothesis{
		Expression: types.Expression{typecode.text, variable.text},
		Floating:   true,
	})
	current := r.scopes[len(r.scopes)-1]
	current.activeHyps = append(current.activeHyps, label.text)
	current.floatingHyps[variable.text] = label.text
	return nil
}

func (r *Reader) essential(label, kw token) error {
	expr, err := r.expression(label, kw, "$.")
	if err != nil {
		return err
	}
	r.db.addHypothesis(label.text, types.Hypothesis{Expression: expr})
	current := r.scopes[len(r.scopes)-1]
	current.activeHyps = append(current.activeHyps, label.text)
	return nil
}

func (r *Reader) axiom(label, kw token) error {
	expr, err := r.expression(label, kw, "$.")
	if err != nil {
		return err
	}
	if err := r.construct(label.text, types.KindAxiom, expr); err != nil {
		return err
	}
	r.declarationHook.OnAxiomOrDefinitionDeclared(label.text)
	return nil
}

func (r *Reader) provable(label, kw token) error {
	expr, err := r.expression(label, kw, "$=")
	if err != nil {
		return err
	}
	if err := r.skipProof(label); err != nil {
		return err
	}
	return r.construct(label.text, types.KindTheorem, expr)
}

// expression reads the math symbols of a `$e`, `$a` or `$p` statement: a
// constant typecode followed by constants and variables with an active `$f`.
func (r *Reader) expression(label, kw token, terminator string) (types.Expression, error) {
	syms, err := r.symbols(kw, terminator)
	if err != nil {
		return nil, err
	}
	if len(syms) == 0 {
		return nil, errorf(kw.pos, "%s statement %s has no typecode", kw.text, label.text)
	}
	if !r.db.isConstant(syms[0].text) {
		return nil, errorf(syms[0].pos, "first symbol of %s statement %s is not a constant", kw.text, label.text)
	}

	expr := make(types.Expression, 0, len(syms))
	for _, sym := range syms {
		if !r.db.isConstant(sym.text) {
			if !r.isActiveVariable(sym.text) {
				return nil, errorf(sym.pos, "symbol %s in %s is not an active constant or variable", sym.text, label.text)
			}
			if _, ok := r.floatingHypothesis(sym.text); !ok {
				return nil, errorf(sym.pos, "variable %s in %s has no active $f statement", sym.text, label.text)
			}
		}
		expr = append(expr, sym.text)
	}
	return expr, nil
}

// skipProof consumes a proof up to its `$.`.
func (r *Reader) skipProof(label token) error {
	var (
		steps      int
		compressed bool
		closed     bool
		incomplete bool
	)
	for r.more() {
		tok := r.take()
		switch {
		case tok.text == "$.":
			if steps == 0 {
				return errorf(label.pos, "theorem %s has an empty proof", label.text)
			}
			if compressed && !closed {
				return errorf(tok.pos, "compressed proof of %s has no closing )", label.text)
			}
			if incomplete {
				r.logger.Warn("Proof is incomplete", zap.String("label", label.text))
			}
			return nil
		case strings.HasPrefix(tok.text, "$"):
			return errorf(tok.pos, "unexpected %s in proof of %s", tok.text, label.text)
		case steps == 0 && tok.text == "(":
			compressed = true
		case compressed && !closed && tok.text == ")":
			closed = true
		case strings.Contains(tok.text, "?"):
			incomplete = true
		}
		steps++
	}
	return errorf(label.pos, "unterminated $p statement %s", label.text)
}

// construct builds the assertion for label with its mandatory hypotheses
// and disjoint variable restrictions, records it and runs the hook.
func (r *Reader) construct(label string, kind types.AssertionKind, expr types.Expression) error {
	used := make(map[string]bool)
	for _, sym := range expr {
		if r.db.variables[sym] {
			used[sym] = true
		}
	}

	// Walk backwards so variables of essential hypotheses make earlier
	// floating hypotheses mandatory.
	var hyps []string
	for i := len(r.scopes) - 1; i >= 0; i-- {
		active := r.scopes[i].activeHyps
		for j := len(active) - 1; j >= 0; j-- {
			hyp := r.db.hypotheses[active[j]]
			if hyp.Floating {
				if used[hyp.Expression[1]] {
					hyps = append(hyps, active[j])
				}
				continue
			}
			hyps = append(hyps, active[j])
			for _, sym := range hyp.Expression {
				if r.db.variables[sym] {
					used[sym] = true
				}
			}
		}
	}
	for i, j := 0, len(hyps)-1; i < j; i, j = i+1, j-1 {
		hyps[i], hyps[j] = hyps[j], hyps[i]
	}

	a := types.Assertion{
		Label:         label,
		Kind:          kind,
		Conclusion:    expr,
		Hypotheses:    hyps,
		DisjointPairs: r.mandatoryDisjoint(used),
	}
	r.db.addAssertion(a)
	r.logger.Debug("Assertion constructed",
		zap.String("label", label),
		zap.Stringer("kind", kind),
		zap.Stringer("conclusion", expr),
		zap.Int("hypotheses", len(hyps)))
	return r.assertionHook.OnAssertionConstructed(a)
}

func (r *Reader) mandatoryDisjoint(used map[string]bool) []types.DisjointPair {
	seen := make(map[types.DisjointPair]bool)
	var pairs []types.DisjointPair
	for _, sc := range r.scopes {
		for _, set := range sc.disjointSets {
			for i := 0; i < len(set); i++ {
				for j := i + 1; j < len(set); j++ {
					p := types.DisjointPair{First: set[i], Second: set[j]}
					if !used[p.First] || !used[p.Second] || seen[p] {
						continue
					}
					seen[p] = true
					pairs = append(pairs, p)
				}
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Second < pairs[j].Second
	})
	return pairs
}

func (r *Reader) isActiveVariable(sym string) bool {
	for _, sc := range r.scopes {
		if sc.activeVariables[sym] {
			return true
		}
	}
	return false
}

func (r *Reader) floatingHypothesis(variable string) (string, bool) {
	for _, sc := range r.scopes {
		if label, ok := sc.floatingHyps[variable]; ok {
			return label, true
		}
	}
	return "", false
}

func (r *Reader) checkSymbol(sym token) error {
	if strings.Contains(sym.text, "$") {
		return errorf(sym.pos, "math symbol %s contains $", sym.text)
	}
	if r.db.labels[sym.text] {
		return errorf(sym.pos, "math symbol %s matches an existing label", sym.text)
	}
	return nil
}

func isLabel(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
