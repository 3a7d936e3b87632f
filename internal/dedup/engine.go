package dedup

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/altmm/altmm/internal/types"
)

// Options configures an Engine.
type Options struct {
	// IncludeFloatingHypotheses compares `$f` hypotheses too.
	IncludeFloatingHypotheses bool
	// Suffixes rejected by the label filter. nil means DefaultSuffixes.
	Suffixes []string
	// DisableHyphenRule accepts labels which only differ from a member by
	// hyphens.
	DisableHyphenRule bool
	Logger            *zap.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Suffixes: DefaultSuffixes,
	}
}

// Engine holds all state of one duplicate detection pass: the encounter
// log, the equivalence index and the axiom counter. It is driven by the
// database reader through its two hook methods and is not safe for
// concurrent use.
type Engine struct {
	normalizer *Normalizer
	index      *Index
	axioms     int
	logger     *zap.Logger
}

func NewEngine(registry types.HypothesisRegistry, opts Options) *Engine {
	suffixes := opts.Suffixes
	if suffixes == nil {
		suffixes = DefaultSuffixes
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		normalizer: NewNormalizer(registry, opts.IncludeFloatingHypotheses),
		index:      NewIndex(NewLabelFilter(suffixes, !opts.DisableHyphenRule)),
		logger:     logger,
	}
}

// OnAssertionConstructed records an assertion built by the reader. The
// returned error is always an invariant violation and must abort the pass.
func (e *Engine) OnAssertionConstructed(a types.Assertion) error {
	form, err := e.normalizer.Normalize(a)
	if err != nil {
		return fmt.Errorf("normalizing %s: %w", a.Label, err)
	}
	if !e.index.Add(a.Label, a, form) {
		e.logger.Debug("Assertion matches an existing class", zap.String("label", a.Label))
	}
	return nil
}

// OnAxiomOrDefinitionDeclared counts one `$a` statement.
func (e *Engine) OnAxiomOrDefinitionDeclared(label string) {
	e.axioms++
}

// AxiomCount returns the number of axioms and definitions seen so far.
func (e *Engine) AxiomCount() int {
	return e.axioms
}

// Index exposes the equivalence index.
func (e *Engine) Index() *Index {
	return e.index
}

// Report builds the report from the state recorded so far.
func (e *Engine) Report() *Report {
	return BuildReport(e.axioms, e.index)
}
