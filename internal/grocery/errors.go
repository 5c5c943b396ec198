package grocery

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("invalid item")
	ErrDuplicateID     = errors.New("duplicate item id")
	ErrNotFound        = errors.New("item not found")
	ErrUnknownCategory = errors.New("unknown category")
	ErrPersist         = errors.New("persist items")
)

// ValidationError reports bad user input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnknownCategoryError is returned by Registry.Find for keys outside the registry.
type UnknownCategoryError struct {
	Key string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Key)
}

func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}
