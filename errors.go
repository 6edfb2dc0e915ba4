package injected

import (
	"errors"
	"fmt"
)

// ErrLocked marks an attempt to redefine or remove a locked entry.
var ErrLocked = errors.New("entry is locked")

type (
	// NotFoundError reports an identifier with no entry or alias.
	NotFoundError struct {
		ID string
	}

	// ContainerError wraps a failure raised while building or
	// modifying a container entry.
	ContainerError struct {
		ID     string
		Reason error
	}

	// TypeMismatchError reports a value that failed to satisfy a
	// declared type, either at a parameter or at an entry.
	TypeMismatchError struct {
		Callable string
		ID       string
		Position int
		Expected string
		Actual   string
	}

	// ConfigError reports malformed input: a bad entry specification,
	// invalid flags or a value that is not callable.
	ConfigError struct {
		Reason string
		Cause  error
	}

	// UnresolvedError reports a required parameter with no value from
	// any source and no default or nullable fallback.
	UnresolvedError struct {
		Callable string
		Param    string
		Position int
	}

	// NotCallableError reports a value that cannot be invoked.  When
	// the value names a real but inaccessible method, Qualified holds
	// its Owner::method name.
	NotCallableError struct {
		Value     any
		Qualified string
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: no entry found for %q", e.ID)
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("container: entry %q: %v", e.ID, e.Reason)
}

func (e *ContainerError) Unwrap() error {
	return e.Reason
}

func (e *TypeMismatchError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("container: entry %q expects type %q, got %q",
			e.ID, e.Expected, e.Actual)
	}
	return fmt.Sprintf("resolve: parameter %v of %v expects %q, got %q",
		e.Position, e.Callable, e.Expected, e.Actual)
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("injected: %v: %v", e.Reason, e.Cause)
	}
	return "injected: " + e.Reason
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func (e *UnresolvedError) Error() string {
	name := e.Param
	if name == "" {
		name = fmt.Sprintf("#%v", e.Position)
	}
	return fmt.Sprintf(
		"resolve: unable to resolve parameter %q (position %v) of %v",
		name, e.Position, e.Callable)
}

func (e *NotCallableError) Error() string {
	if e.Qualified != "" {
		return fmt.Sprintf("invoke: %v is not accessible from this context",
			e.Qualified)
	}
	return fmt.Sprintf("invoke: %T is not callable", e.Value)
}
