package dedup

import "strings"

// DefaultSuffixes are the label endings used for known alternative versions
// of a theorem (set.mm naming conventions).
var DefaultSuffixes = []string{"ALT", "ALT2", "ALT3", "OLD", "ALTN", "OLDN", "VD"}

// LabelFilter decides whether a label may join an existing equivalence
// class. It is never consulted for the first member of a class.
type LabelFilter struct {
	suffixes []string
	hyphens  bool
}

// NewLabelFilter returns a filter rejecting labels that end in one of
// suffixes and, when hyphens is set, labels that equal a current member
// once hyphens are removed from both.
func NewLabelFilter(suffixes []string, hyphens bool) *LabelFilter {
	return &LabelFilter{
		suffixes: append([]string(nil), suffixes...),
		hyphens:  hyphens,
	}
}

// Allow reports whether candidate may be appended to members.
func (f *LabelFilter) Allow(candidate string, members []string) bool {
	return f.allowSuffix(candidate) && f.allowHyphen(candidate, members)
}

// allowSuffix only looks at the candidate. It does not check that an
// unmarked label is present in the class.
func (f *LabelFilter) allowSuffix(candidate string) bool {
	for _, suffix := range f.suffixes {
		if suffix != "" && strings.HasSuffix(candidate, suffix) {
			return false
		}
	}
	return true
}

// allowHyphen rejects spelling variants such as ax-1 and ax1.
func (f *LabelFilter) allowHyphen(candidate string, members []string) bool {
	if !f.hyphens {
		return true
	}
	stripped := stripHyphens(candidate)
	for _, member := range members {
		if stripHyphens(member) == stripped {
			return false
		}
	}
	return true
}

func stripHyphens(label string) string {
	return strings.ReplaceAll(label, "-", "")
}
