package syncprim

import (
	"fmt"

	"github.com/joeycumines/go-scriptthread/scripterr"
)

// handleWrongTypeError reports that a handle resolved to a primitive of a
// different kind than the caller asked for.
type handleWrongTypeError struct {
	handle string
}

func (e *handleWrongTypeError) Error() string {
	return fmt.Sprintf("scriptthread: handle %q is not of the requested primitive type", e.handle)
}

func (e *handleWrongTypeError) Unwrap() error { return scripterr.ErrWrongMutexType }
