package compiler

import "fmt"

// DefinitionError is a fatal compile-time error (spec §7): unknown
// parameter group, missing initialization, or an unrecognized
// expression kind. It always names the offending identifier.
type DefinitionError struct {
	Kind       string
	Identifier string
	Msg        string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition error [%s] %q: %s", e.Kind, e.Identifier, e.Msg)
}

func errUnknownGroup(group, paramID string) error {
	return &DefinitionError{
		Kind:       "unknown_group",
		Identifier: group,
		Msg:        fmt.Sprintf("parameter %q references undeclared group %q", paramID, group),
	}
}

func errMissingInit(stateVar string) error {
	return &DefinitionError{
		Kind:       "missing_initialization",
		Identifier: stateVar,
		Msg:        "state var has no initialization distribution",
	}
}

func errUnknownExprKind(kind string) error {
	return &DefinitionError{
		Kind:       "unknown_expr_kind",
		Identifier: kind,
		Msg:        "unrecognized expression node",
	}
}
