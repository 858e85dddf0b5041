package mask

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty indicates the mask has no foreground pixels.
	ErrEmpty = errors.New("empty mask")
	// ErrTouchesEdge indicates foreground pixels lie on the image border.
	ErrTouchesEdge = errors.New("mask touches edge")
)

// Error wraps mask validation failures with a sentinel kind.
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
