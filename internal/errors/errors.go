package errors

import (
	"errors"
	"fmt"
)

// Category classifies pipeline errors. Config and cycle errors abort the
// run; geometry and validation errors are recovered by substituting an
// empty collection and continuing.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryCycle      Category = "cycle"
	CategoryGeometry   Category = "geometry"
	CategoryValidation Category = "validation"
	CategoryIO         Category = "io"
)

type PipelineError struct {
	Category  Category
	Layer     string
	Operation string
	Message   string
	Cause     error
}

func (e *PipelineError) Error() string {
	switch {
	case e.Layer != "" && e.Operation != "":
		return fmt.Sprintf("[%s] layer %s, operation %s: %s", e.Category, e.Layer, e.Operation, e.Message)
	case e.Layer != "":
		return fmt.Sprintf("[%s] layer %s: %s", e.Category, e.Layer, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Category, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Fatal reports whether the error must abort the whole run.
func (e *PipelineError) Fatal() bool {
	return e.Category == CategoryConfig || e.Category == CategoryCycle
}

func NewConfigError(format string, args ...interface{}) *PipelineError {
	return &PipelineError{Category: CategoryConfig, Message: fmt.Sprintf(format, args...)}
}

func NewCycleError(cycle []string) *PipelineError {
	return &PipelineError{Category: CategoryCycle, Message: fmt.Sprintf("dependency cycle: %v", cycle)}
}

func NewGeometryError(layer, operation, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Category:  CategoryGeometry,
		Layer:     layer,
		Operation: operation,
		Message:   fmt.Sprintf(format, args...),
	}
}

func NewValidationError(layer, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Category: CategoryValidation,
		Layer:    layer,
		Message:  fmt.Sprintf(format, args...),
	}
}

func NewIOError(cause error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{Category: CategoryIO, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func IsCategory(err error, c Category) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Category == c
	}
	return false
}

func IsConfig(err error) bool     { return IsCategory(err, CategoryConfig) }
func IsCycle(err error) bool      { return IsCategory(err, CategoryCycle) }
func IsGeometry(err error) bool   { return IsCategory(err, CategoryGeometry) }
func IsValidation(err error) bool { return IsCategory(err, CategoryValidation) }

// IsFatal reports whether err (or a wrapped PipelineError) must abort the
// run. Unclassified errors are treated as fatal.
func IsFatal(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Fatal()
	}
	return err != nil
}
