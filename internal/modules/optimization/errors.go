package optimization

import (
	"errors"
	"strings"
)

// ErrConstraintValidation is returned when constraints cannot be satisfied
// by the selected channels.
var ErrConstraintValidation = errors.New("constraint validation failed")

// ValidationError lists every violated constraint.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return ErrConstraintValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Unwrap lets errors.Is match ErrConstraintValidation.
func (e *ValidationError) Unwrap() error {
	return ErrConstraintValidation
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
