package mm

import (
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/altmm/altmm/internal/types"
)

const propositional = `$( A small propositional calculus. $)
$c ( ) -> wff |- $.
$v ph ps ch $.
wph $f wff ph $.
wps $f wff ps $.
wch $f wff ch $.
wi $a wff ( ph -> ps ) $.
${
  min $e |- ph $.
  maj $e |- ( ph -> ps ) $.
  ax-mp $a |- ps $.
$}
ax-1 $a |- ( ph -> ( ps -> ph ) ) $.
${
  mp2.1 $e |- ph $.
  mp2.2 $e |- ( ph -> ps ) $.
  mp2 $p |- ps $= wph wps mp2.1 mp2.2 ax-mp $.
$}
`

type recorder struct {
	assertions []types.Assertion
	axioms     []string
	err        error
}

func (r *recorder) OnAssertionConstructed(a types.Assertion) error {
	r.assertions = append(r.assertions, a)
	return r.err
}

func (r *recorder) OnAxiomOrDefinitionDeclared(label string) {
	r.axioms = append(r.axioms, label)
}

func (r *recorder) labels() []string {
	out := make([]string, 0, len(r.assertions))
	for _, a := range r.assertions {
		out = append(out, a.Label)
	}
	return out
}

func mapOpen(fsys fstest.MapFS) OpenFunc {
	return func(name string) (io.ReadCloser, error) {
		return fsys.Open(name)
	}
}

func readString(t *testing.T, src string, rec *recorder) (*Database, *Reader, error) {
	t.Helper()
	db := NewDatabase()
	r := NewReader(db,
		WithAssertionHook(rec),
		WithDeclarationHook(rec),
		WithOpenFunc(mapOpen(fstest.MapFS{"db.mm": {Data: []byte(src)}})),
	)
	return db, r, r.Read(context.Background(), "db.mm")
}

func TestReadPropositional(t *testing.T) {
	t.Parallel()
	rec := &recorder{}

	db, _, err := readString(t, propositional, rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"wi", "ax-mp", "ax-1", "mp2"}, rec.labels())
	assert.Equal(t, []string{"wi", "ax-mp", "ax-1"}, rec.axioms)

	mp, ok := db.Assertion("ax-mp")
	require.True(t, ok)
	assert.Equal(t, types.KindAxiom, mp.Kind)
	assert.Equal(t, types.Expression{"|-", "ps"}, mp.Conclusion)
	assert.Equal(t, []string{"wph", "wps", "min", "maj"}, mp.Hypotheses)

	mp2, ok := db.Assertion("mp2")
	require.True(t, ok)
	assert.Equal(t, types.KindTheorem, mp2.Kind)
	assert.Equal(t, []string{"wph", "wps", "mp2.1", "mp2.2"}, mp2.Hypotheses)

	wi, _ := db.Assertion("wi")
	assert.Equal(t, []string{"wph", "wps"}, wi.Hypotheses)

	hyp, ok := db.Hypothesis("maj")
	require.True(t, ok)
	assert.False(t, hyp.Floating)
	assert.Equal(t, "|- ( ph -> ps )", hyp.Expression.String())

	hyp, ok = db.Hypothesis("wch")
	require.True(t, ok)
	assert.True(t, hyp.Floating)

	assert.Len(t, db.Assertions(), 4)
	assert.Equal(t, "wi", db.Assertions()[0].Label)
}

func TestReadMandatoryHypothesesFromEssentials(t *testing.T) {
	t.Parallel()
	src := `$c ( ) -> wff |- $.
$v ph ps $.
wph $f wff ph $.
wps $f wff ps $.
${
  e1 $e |- ( ph -> ps ) $.
  th $a |- ps $.
$}`
	rec := &recorder{}
	db, _, err := readString(t, src, rec)
	require.NoError(t, err)

	// ph only occurs in the hypothesis but its $f is still mandatory.
	th, _ := db.Assertion("th")
	assert.Equal(t, []string{"wph", "wps", "e1"}, th.Hypotheses)
}

func TestReadDisjointVariables(t *testing.T) {
	t.Parallel()
	src := `$c |- setvar = $.
$v x y z $.
vx $f setvar x $.
vy $f setvar y $.
vz $f setvar z $.
${
  $d z y x $.
  ax-d $a |- x = y $.
$}
ax-nd $a |- x = y $.
`
	rec := &recorder{}
	db, _, err := readString(t, src, rec)
	require.NoError(t, err)

	d, _ := db.Assertion("ax-d")
	assert.Equal(t, []types.DisjointPair{{First: "x", Second: "y"}}, d.DisjointPairs)
	assert.Equal(t, []string{"vx", "vy"}, d.Hypotheses)

	nd, _ := db.Assertion("ax-nd")
	assert.Empty(t, nd.DisjointPairs)
}

func TestReadScopesReleaseVariables(t *testing.T) {
	t.Parallel()
	src := `$c wff |- $.
${
  $v ph $.
  wph $f wff ph $.
  a1 $a |- ph $.
$}
${
  $v ph $.
  wph2 $f wff ph $.
  a2 $a |- ph $.
$}`
	rec := &recorder{}
	db, _, err := readString(t, src, rec)
	require.NoError(t, err)

	a2, _ := db.Assertion("a2")
	assert.Equal(t, []string{"wph2"}, a2.Hypotheses)
}

func TestReadIncludes(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"db.mm":         {Data: []byte("$[ sub/decl.mm $]\n$[ sub/decl.mm $]\nax-x $a |- ph $.\n")},
		"sub/decl.mm":   {Data: []byte("$c wff |- $.\n$v ph $.\n$[ axioms.mm $]\n")},
		"sub/axioms.mm": {Data: []byte("wph $f wff ph $.\nax-y $a |- ph $.\n")},
	}
	rec := &recorder{}
	r := NewReader(NewDatabase(),
		WithAssertionHook(rec),
		WithDeclarationHook(rec),
		WithOpenFunc(mapOpen(fsys)),
	)

	require.NoError(t, r.Read(context.Background(), "db.mm"))
	assert.Equal(t, []string{"ax-y", "ax-x"}, rec.labels())
	assert.Equal(t, []string{"db.mm", "sub/decl.mm", "sub/axioms.mm"}, r.Files())
}

func TestReadIncompleteProof(t *testing.T) {
	t.Parallel()
	src := `$c wff |- $.
$v ph $.
wph $f wff ph $.
ax $a |- ph $.
th $p |- ph $= ? $.
cth $p |- ph $= ( ax ) AB $.
`
	rec := &recorder{}
	_, _, err := readString(t, src, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"ax", "th", "cth"}, rec.labels())
	assert.Equal(t, []string{"ax"}, rec.axioms)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	header := "$c wff |- $.\n$v ph $.\nwph $f wff ph $.\n"
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"unterminated comment", "$( never closed", "unterminated comment"},
		{"nested comment", "$( a $( b $) $)", "comments may not be nested"},
		{"invalid character", "$c \x01 $.", "invalid character"},
		{"unmatched close", "$}", "$} without corresponding ${"},
		{"unclosed block", "${ $c a $.", "$c statement occurs in inner block"},
		{"unclosed scope", header + "${", "${ without matching $}"},
		{"empty constants", "$c $.", "empty $c statement"},
		{"constant redeclared", "$c a a $.", "attempt to redeclare constant a"},
		{"variable as constant", header + "$c ph $.", "attempt to redeclare variable ph as a constant"},
		{"constant as variable", header + "$v wff $.", "attempt to redeclare constant wff as a variable"},
		{"active variable redeclared", header + "$v ph $.", "attempt to redeclare active variable ph"},
		{"duplicate label", header + "wph $f wff ph $.", "label wph used more than once"},
		{"label matches symbol", header + "ph $a |- ph $.", "label ph matches a math symbol"},
		{"missing keyword", header + "lbl $x |- ph $.", "unexpected token $x after label lbl"},
		{"bad label", header + "l@bel $a |- ph $.", "unexpected token l@bel"},
		{"floating arity", header + "$v ps $.\nwps $f wff ps ph $.", "must have exactly two math symbols"},
		{"floating twice", header + "wph2 $f wff ph $.", "variable ph already has an active $f statement"},
		{"floating on constant", header + "wx $f wff |- $.", "is not an active variable"},
		{"typecode not constant", header + "a $a ph ph $.", "is not a constant"},
		{"unknown symbol", header + "a $a |- ps $.", "symbol ps in a is not an active constant or variable"},
		{"variable without floating", header + "$v ps $.\na $a |- ps $.", "variable ps in a has no active $f statement"},
		{"unterminated assertion", header + "a $a |- ph", "unterminated $a statement"},
		{"keyword inside assertion", header + "a $a |- ph $e", "unexpected $e in $a statement"},
		{"disjoint single", header + "$d ph $.", "at least two variables"},
		{"disjoint constant", header + "$v ps $.\n$d ph wff $.", "wff in $d statement is not an active variable"},
		{"disjoint repeated", header + "$v ps $.\n$d ph ph $.", "ph appears more than once"},
		{"empty proof", header + "th $p |- ph $= $.", "theorem th has an empty proof"},
		{"unclosed compressed proof", header + "th $p |- ph $= ( wph AB $.", "has no closing )"},
		{"unterminated proof", header + "th $p |- ph $= wph", "unterminated $p statement th"},
		{"symbol with dollar", "$c a$ $.", "math symbol a$ contains $"},
		{"unterminated include", "$[ other.mm", "unterminated file inclusion"},
		{"include inside statement", header + "a $a |- $[ other.mm $] $.", "file inclusion inside a statement"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := readString(t, tt.src, &recorder{})
			require.Error(t, err)

			var mmErr *Error
			require.True(t, errors.As(err, &mmErr), "got %T: %v", err, err)
			assert.Contains(t, mmErr.Error(), tt.expected)
			assert.Equal(t, "db.mm", mmErr.Pos.File)
		})
	}
}

func TestReadErrorPosition(t *testing.T) {
	t.Parallel()
	_, _, err := readString(t, "$c wff $.\n\n$c wff $.\n", &recorder{})

	var mmErr *Error
	require.ErrorAs(t, err, &mmErr)
	assert.Equal(t, Pos{File: "db.mm", Line: 3}, mmErr.Pos)
	assert.Equal(t, "db.mm:3: attempt to redeclare constant wff", mmErr.Error())
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()
	r := NewReader(NewDatabase(), WithOpenFunc(mapOpen(fstest.MapFS{})))

	err := r.Read(context.Background(), "absent.mm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening absent.mm")
}

func TestReadKeepsStatementsBeforeFailure(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	_, _, err := readString(t, propositional+"bad $a |- undeclared $.\n", rec)

	require.Error(t, err)
	assert.Equal(t, []string{"wi", "ax-mp", "ax-1", "mp2"}, rec.labels())
}

func TestReadHookErrorPassesThrough(t *testing.T) {
	t.Parallel()
	hookErr := errors.New("hook failed")
	rec := &recorder{err: hookErr}

	_, _, err := readString(t, propositional, rec)
	assert.Same(t, hookErr, err)
	assert.Equal(t, []string{"wi"}, rec.labels())
	assert.Empty(t, rec.axioms)
}

func TestReadCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	r := NewReader(NewDatabase(),
		WithAssertionHook(rec),
		WithOpenFunc(mapOpen(fstest.MapFS{"db.mm": {Data: []byte(propositional)}})),
	)
	err := r.Read(ctx, "db.mm")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.assertions)
}

type mockDeclarationHook struct {
	mock.Mock
}

func (m *mockDeclarationHook) OnAxiomOrDefinitionDeclared(label string) {
	m.Called(label)
}

func TestReadDefaultAssertionHook(t *testing.T) {
	t.Parallel()
	hook := new(mockDeclarationHook)
	hook.On("OnAxiomOrDefinitionDeclared", mock.Anything).Return()

	r := NewReader(NewDatabase(),
		WithDeclarationHook(hook),
		WithOpenFunc(mapOpen(fstest.MapFS{"db.mm": {Data: []byte(propositional)}})),
	)
	require.NoError(t, r.Read(context.Background(), "db.mm"))

	hook.AssertNumberOfCalls(t, "OnAxiomOrDefinitionDeclared", 3)
	hook.AssertCalled(t, "OnAxiomOrDefinitionDeclared", "ax-mp")
}
