package dedup

import (
	"errors"
	"fmt"
)

// ErrMalformedAssertion is returned for an assertion that cannot have a
// canonical form, such as one with an empty conclusion.
var ErrMalformedAssertion = errors.New("malformed assertion")

// LookupError reports an assertion that refers to a hypothesis the registry
// does not know. The reader registers every hypothesis before building the
// assertions that use it, so this is never expected in a well-formed run.
type LookupError struct {
	Assertion  string
	Hypothesis string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("assertion %s: hypothesis %s not found in registry", e.Assertion, e.Hypothesis)
}

// IsInvariantViolation reports whether err comes from a broken internal
// invariant rather than from the database being processed.
func IsInvariantViolation(err error) bool {
	var lookupErr *LookupError
	return errors.As(err, &lookupErr) || errors.Is(err, ErrMalformedAssertion)
}
