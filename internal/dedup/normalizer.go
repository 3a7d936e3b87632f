package dedup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/altmm/altmm/internal/types"
)

const entrySeparator = "\n"

// CanonicalForm is the order independent comparison key of an assertion.
// Two assertions are equal exactly when their canonical forms are equal.
type CanonicalForm struct {
	ConclusionKey string
	HypothesisKey string
	DisjointKey   string
}

// Normalizer turns assertions into canonical forms.
type Normalizer struct {
	registry                  types.HypothesisRegistry
	includeFloatingHypotheses bool
}

func NewNormalizer(registry types.HypothesisRegistry, includeFloatingHypotheses bool) *Normalizer {
	return &Normalizer{
		registry:                  registry,
		includeFloatingHypotheses: includeFloatingHypotheses,
	}
}

// Normalize computes the canonical form of a. The assertion is not modified.
func (n *Normalizer) Normalize(a types.Assertion) (CanonicalForm, error) {
	if len(a.Conclusion) == 0 {
		return CanonicalForm{}, fmt.Errorf("%w: %s has an empty conclusion", ErrMalformedAssertion, a.Label)
	}

	hypotheses, err := n.hypothesisExpressions(a)
	if err != nil {
		return CanonicalForm{}, err
	}

	return CanonicalForm{
		ConclusionKey: a.Conclusion.String(),
		HypothesisKey: strings.Join(hypotheses, entrySeparator),
		DisjointKey:   strings.Join(disjointStrings(a.DisjointPairs), entrySeparator),
	}, nil
}

// hypothesisExpressions returns the sorted expressions of the hypotheses
// taking part in the comparison. Repeated expressions are kept.
func (n *Normalizer) hypothesisExpressions(a types.Assertion) ([]string, error) {
	exprs := make([]string, 0, len(a.Hypotheses))
	for _, label := range a.Hypotheses {
		hyp, ok := n.registry.Hypothesis(label)
		if !ok {
			return nil, &LookupError{Assertion: a.Label, Hypothesis: label}
		}
		if hyp.Floating && !n.includeFloatingHypotheses {
			continue
		}
		exprs = append(exprs, hyp.Expression.String())
	}
	sort.Strings(exprs)
	return exprs, nil
}

// disjointStrings renders each pair in its stored order. (a,b) and (b,a)
// stay distinct.
func disjointStrings(pairs []types.DisjointPair) []string {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.String())
	}
	sort.Strings(out)
	return out
}
