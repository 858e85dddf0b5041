package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientMargin indicates an outward offset would escape the
	// working canvas.
	ErrInsufficientMargin = errors.New("insufficient margin")
	// ErrAspectMismatch indicates an aspect-unlocked target size would
	// distort the artwork beyond tolerance.
	ErrAspectMismatch = errors.New("aspect mismatch")
)

// Error wraps geometric infeasibility failures with a sentinel kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }
