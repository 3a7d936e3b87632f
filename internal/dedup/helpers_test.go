package dedup

import "github.com/altmm/altmm/internal/types"

type registry map[string]types.Hypothesis

func (r registry) Hypothesis(label string) (types.Hypothesis, bool) {
	hyp, ok := r[label]
	return hyp, ok
}

// testRegistry knows the floating hypotheses of ph, ps, x and y and two
// essential hypotheses.
func testRegistry() registry {
	return registry{
		"wph":  {Expression: types.Expression{"wff", "ph"}, Floating: true},
		"wps":  {Expression: types.Expression{"wff", "ps"}, Floating: true},
		"vx":   {Expression: types.Expression{"setvar", "x"}, Floating: true},
		"vy":   {Expression: types.Expression{"setvar", "y"}, Floating: true},
		"min":  {Expression: types.Expression{"|-", "ph"}},
		"maj":  {Expression: types.Expression{"|-", "(", "ph", "->", "ps", ")"}},
		"min2": {Expression: types.Expression{"|-", "ph"}},
	}
}

func expr(s ...string) types.Expression {
	return types.Expression(s)
}

func assertion(label string, conclusion types.Expression, hyps ...string) types.Assertion {
	return types.Assertion{
		Label:      label,
		Kind:       types.KindTheorem,
		Conclusion: conclusion,
		Hypotheses: hyps,
	}
}

var idA = expr("|-", "(", "A", "->", "A", ")")
