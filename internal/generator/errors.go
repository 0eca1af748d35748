package generator

import (
	"errors"
	"fmt"
)

var (
	ErrProjectOpen       = errors.New("a project is already open")
	ErrSolutionOpen      = errors.New("a solution is already open")
	ErrNoProject         = errors.New("no project is open")
	ErrNoSolution        = errors.New("no solution is open")
	ErrKindMismatch      = errors.New("project kind does not match")
	ErrStaleHandle       = errors.New("handle does not refer to the open context")
	ErrDuplicateProject  = errors.New("project already configured")
	ErrDuplicateSolution = errors.New("solution already configured")
	ErrUnclosedContext   = errors.New("a project or solution was left open")
	ErrNoLoader          = errors.New("no fragment loader configured")
)

// ContextError reports a configuration call that is illegal in the current state.
type ContextError struct {
	Op   string
	Name string
	Err  error
}

func (e *ContextError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *ContextError) Unwrap() error { return e.Err }
