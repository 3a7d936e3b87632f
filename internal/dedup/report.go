package dedup

import (
	"fmt"
	"strings"
)

const groupHeader = "Each line contains the labels representing a group of repeated assertions, ordered by the first appearance"

// Report is the outcome of one pass over a database.
type Report struct {
	AxiomCount int
	// Groups lists every repeated class in order of its representative's
	// first appearance.
	Groups [][]string
	// UniqueRepeated is the number of groups.
	UniqueRepeated int
	// TotalRepeated is the sum of the group sizes.
	TotalRepeated int
}

// BuildReport walks the encounter log and collects every class whose
// representative is the logged label and which has more than one member.
// It only relies on what has been recorded so far.
func BuildReport(axiomCount int, idx *Index) *Report {
	r := &Report{AxiomCount: axiomCount}
	for _, entry := range idx.Log() {
		class := idx.Resolve(entry)
		if class == nil || len(class.Members) < 2 || class.Representative() != entry.Label {
			continue
		}
		group := append([]string(nil), class.Members...)
		r.Groups = append(r.Groups, group)
		r.UniqueRepeated++
		r.TotalRepeated += len(group)
	}
	return r
}

// Header returns the line introducing the group listing.
func (r *Report) Header() string {
	return groupHeader
}

// Lines returns the report text line by line.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Groups)+6)
	lines = append(lines,
		fmt.Sprintf("Axiom and definition count %d", r.AxiomCount),
		"",
		groupHeader,
	)
	for _, group := range r.Groups {
		lines = append(lines, strings.Join(group, ", "))
	}
	lines = append(lines,
		"",
		fmt.Sprintf("Unique assertions which are repeated: %d", r.UniqueRepeated),
		fmt.Sprintf("Total assertions which are repeated: %d", r.TotalRepeated),
	)
	return lines
}

// String joins the lines with newlines, without a trailing one.
func (r *Report) String() string {
	return strings.Join(r.Lines(), "\n")
}
