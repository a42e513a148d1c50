package election

import (
	"errors"
	"fmt"
)

// Configuration errors returned by NewSystem and Run.
var (
	ErrEmptySystem     = errors.New("election: no particles")
	ErrDuplicateNode   = errors.New("election: duplicate node")
	ErrDisconnected    = errors.New("election: particles are not connected")
	ErrBudgetExhausted = errors.New("election: activation budget exhausted")
)

// InvariantError is the panic value raised when the protocol reaches a state its
// correctness argument rules out. It is never returned as an error.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("election invariant violated in %s: %s", e.Op, e.Detail)
}

func violate(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
