package bindgen

import (
	"fmt"
	"strings"
)

// UnresolvedReferenceError is returned when a message or term references an
// id (or attribute) the default language does not define.
type UnresolvedReferenceError struct {
	// ID is the referencing entry; Reference is the reference as written.
	ID        string
	Reference string
	Location  string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s: %s references unknown %s", e.Location, e.ID, e.Reference)
}

// CyclicReferenceError is returned when references form a loop. Cycle
// starts and ends with the same id.
type CyclicReferenceError struct {
	Cycle []string
}

func (e *CyclicReferenceError) Error() string {
	return "cyclic reference: " + strings.Join(e.Cycle, " -> ")
}

// InvalidIdentifierError is returned when a message cannot be given a valid
// Go method name.
type InvalidIdentifierError struct {
	ID         string
	Identifier string
	Reason     string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("message %s: invalid accessor name %q: %s", e.ID, e.Identifier, e.Reason)
}

// DuplicateAccessorError is returned when two messages map to the same method.
type DuplicateAccessorError struct {
	Method string
	First  string
	Second string
}

func (e *DuplicateAccessorError) Error() string {
	return fmt.Sprintf("messages %s and %s both map to accessor %s", e.First, e.Second, e.Method)
}

// AmbiguousParameterError is returned when distinct variables of one message
// map to the same Go parameter name.
type AmbiguousParameterError struct {
	ID    string
	Ident string
	Names []string
}

func (e *AmbiguousParameterError) Error() string {
	return fmt.Sprintf("message %s: variables $%s all map to parameter %s",
		e.ID, strings.Join(e.Names, ", $"), e.Ident)
}
