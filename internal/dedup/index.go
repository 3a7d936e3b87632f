package dedup

import "github.com/altmm/altmm/internal/types"

// EquivalenceClass groups the labels whose assertions share a canonical form.
// Members[0] is the representative and is never removed.
type EquivalenceClass struct {
	Members []string
	Form    CanonicalForm
}

// Representative returns the first label added to the class.
func (c *EquivalenceClass) Representative() string {
	return c.Members[0]
}

// Entry is one accepted assertion in encounter order.
type Entry struct {
	Label     string
	Assertion types.Assertion
	Form      CanonicalForm
}

// Index is the incremental equivalence index. Classes are bucketed by
// conclusion text; within a bucket they hold pairwise different forms.
type Index struct {
	filter  *LabelFilter
	buckets map[string][]*EquivalenceClass
	log     []Entry
}

func NewIndex(filter *LabelFilter) *Index {
	return &Index{
		filter:  filter,
		buckets: make(map[string][]*EquivalenceClass),
	}
}

// Add records an assertion and places its label. created is true when the
// label started a new class. A label matching an existing class joins it only
// if the label filter allows it; either way it is kept in the encounter log.
func (idx *Index) Add(label string, a types.Assertion, form CanonicalForm) (created bool) {
	idx.log = append(idx.log, Entry{Label: label, Assertion: a, Form: form})

	bucket := idx.buckets[form.ConclusionKey]
	for _, class := range bucket {
		if class.Form != form {
			continue
		}
		if idx.filter.Allow(label, class.Members) {
			class.Members = append(class.Members, label)
		}
		return false
	}

	idx.buckets[form.ConclusionKey] = append(bucket, &EquivalenceClass{
		Members: []string{label},
		Form:    form,
	})
	return true
}

// Resolve returns the class an encounter log entry was placed against, or
// nil if the entry does not belong to this index.
func (idx *Index) Resolve(e Entry) *EquivalenceClass {
	for _, class := range idx.buckets[e.Form.ConclusionKey] {
		if class.Form == e.Form {
			return class
		}
	}
	return nil
}

// Bucket returns the classes sharing a conclusion text, in creation order.
func (idx *Index) Bucket(conclusionKey string) []*EquivalenceClass {
	return idx.buckets[conclusionKey]
}

// Log returns the encounter log. Callers must not modify it.
func (idx *Index) Log() []Entry {
	return idx.log
}

// Len returns the number of classes.
func (idx *Index) Len() int {
	n := 0
	for _, bucket := range idx.buckets {
		n += len(bucket)
	}
	return n
}
