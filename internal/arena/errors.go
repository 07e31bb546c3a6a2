package arena

import (
	"errors"
	"fmt"
)

// Domain errors for arena construction and simulation parameters.
var (
	// ErrRadius indicates an outer or ball radius that leaves no room to move.
	ErrRadius = errors.New("arena: invalid radius")

	// ErrDamping indicates a damping factor outside [0, 1].
	ErrDamping = errors.New("arena: damping must be within [0, 1]")

	// ErrGravity indicates a non-finite gravity value.
	ErrGravity = errors.New("arena: gravity must be finite")

	// ErrSectors indicates a sector count below one.
	ErrSectors = errors.New("arena: sector count must be at least 1")

	// ErrIntegrator indicates an unknown integrator name.
	ErrIntegrator = errors.New("arena: unknown integrator")
)

// ParamError wraps a parameter failure with the offending name and value.
type ParamError struct {
	Name  string
	Value float64
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s=%g: %v", e.Name, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}
