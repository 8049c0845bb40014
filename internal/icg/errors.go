package icg

import (
	"fmt"

	"github.com/you-not-fish/minithon/internal/syntax"
)

// UndefinedVariableError reports a read of an identifier that has no
// register bound in the current scope.
type UndefinedVariableError struct {
	Name string
	Diag syntax.Diagnostic
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Diag.Position, e.Diag.Msg, e.Name)
}

// Diagnostic returns the diagnostic of e.
func (e *UndefinedVariableError) Diagnostic() syntax.Diagnostic { return e.Diag }
