package localization

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel causes carried by RenderError and MissingMessageError.
var (
	ErrMissingMessage   = errors.New("message not found")
	ErrMissingArgument  = errors.New("missing argument")
	ErrUnknownReference = errors.New("unknown reference")
	ErrUnknownFunction  = errors.New("unknown function")
	ErrCyclicReference  = errors.New("cyclic reference")
	ErrNoValue          = errors.New("message has no value")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// MissingDefaultLanguageError is returned by Load when the default language
// has no bundle, either because its directory is absent or because it
// failed to load.
type MissingDefaultLanguageError struct {
	Language string
	Dir      string
	Err      error
}

func (e *MissingDefaultLanguageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("default language %s could not be loaded from %s: %v", e.Language, e.Dir, e.Err)
	}
	return fmt.Sprintf("default language %s not found in %s", e.Language, e.Dir)
}

func (e *MissingDefaultLanguageError) Unwrap() error { return e.Err }

// MissingMessageError is returned when an id is absent from both the
// requested language and the default language.
type MissingMessageError struct {
	Language string
	ID       string
}

func (e *MissingMessageError) Error() string {
	return fmt.Sprintf("%s: %s (language %s)", ErrMissingMessage, e.ID, e.Language)
}

func (e *MissingMessageError) Unwrap() error { return ErrMissingMessage }

// RenderError reports a failed render. No partial output is produced.
type RenderError struct {
	// Accessor is set by generated bindings to the calling method's name.
	Accessor string
	Language string
	ID       string
	Err      error
}

func (e *RenderError) Error() string {
	if e.Accessor != "" {
		return fmt.Sprintf("rendering %s (%s, language %s): %v", e.ID, e.Accessor, e.Language, e.Err)
	}
	return fmt.Sprintf("rendering %s (language %s): %v", e.ID, e.Language, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IncompleteBundleError lists every id missing from the loaded default bundle.
type IncompleteBundleError struct {
	Language string
	Missing  []string
}

func (e *IncompleteBundleError) Error() string {
	return fmt.Sprintf("default language %s is missing %d message(s): %s",
		e.Language, len(e.Missing), strings.Join(e.Missing, ", "))
}
