package ledger

import "fmt"

// Error is the single error kind returned by the ledger's mutation and query
// surface. It carries a human-readable message; callers branch on the
// operation, not on error subtypes.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds an Error from a format string.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}
