package mm

import "github.com/altmm/altmm/internal/types"

// AssertionHook observes every assertion the reader builds, after it has
// been recorded in the database. A returned error aborts the read and is
// returned from Reader.Read unchanged.
type AssertionHook interface {
	OnAssertionConstructed(a types.Assertion) error
}

// DeclarationHook observes every accepted `$a` statement.
type DeclarationHook interface {
	OnAxiomOrDefinitionDeclared(label string)
}

type nopHooks struct{}

func (nopHooks) OnAssertionConstructed(types.Assertion) error { return nil }
func (nopHooks) OnAxiomOrDefinitionDeclared(string)           {}
