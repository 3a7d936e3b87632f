// Package dedup finds assertions of a Metamath database that state the same
// thing under different labels.
//
// The package is driven by the database reader through two hooks and keeps
// all of its state in an Engine value.
//
// Key components:
//
// Normalizer: Turns an assertion into a CanonicalForm made of its conclusion
// text, the sorted expressions of its essential hypotheses and the sorted
// disjoint variable pairs. Floating hypotheses can be included on request.
//
// Index: Buckets equivalence classes by conclusion text. A new assertion joins
// the class with an equal canonical form, or starts a new class.
//
// LabelFilter: Keeps labels that are known alternatives (ALT, OLD, ... suffixes)
// or hyphen spelling variants (ax-1, ax1) out of the class they match.
//
// Report: Lists, in encounter order, every class with more than one member,
// together with the axiom and definition count and two summary counters.
package dedup
