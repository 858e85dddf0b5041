package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField indicates a configuration key this tool does not
	// recognize. Unknown keys fail closed rather than being ignored.
	ErrUnknownField = errors.New("unknown config field")
	// ErrInvalidValue indicates a field resolved to a physically
	// impossible value.
	ErrInvalidValue = errors.New("invalid config value")
)

// Error wraps configuration failures with a sentinel kind and the field
// that caused them.
type Error struct {
	Kind  error
	Field string
	Msg   string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s %q: %s", e.Kind.Error(), e.Field, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s %q", e.Kind.Error(), e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Kind }

func invalidf(field, format string, args ...any) error {
	return &Error{Kind: ErrInvalidValue, Field: field, Msg: fmt.Sprintf(format, args...)}
}
