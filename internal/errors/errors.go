// Package errors provides structured error types with component and
// template context for templao.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeCompile    ErrorType = "compile"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// TemplaoError is a structured error type with context.
type TemplaoError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Component   string
	Template    string
	FilePath    string
	Suggestions []string
	Recoverable bool
}

// Error implements the error interface.
func (e *TemplaoError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}
	if e.Template != "" {
		parts = append(parts, "template:"+e.Template)
	}
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)
	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}
	if len(e.Suggestions) > 0 {
		result += " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *TemplaoError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *TemplaoError) Is(target error) bool {
	var t *TemplaoError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithComponent adds component context.
func (e *TemplaoError) WithComponent(component string) *TemplaoError {
	e.Component = component
	return e
}

// WithFile adds file location context.
func (e *TemplaoError) WithFile(path string) *TemplaoError {
	e.FilePath = path
	return e
}

// WithSuggestions attaches did-you-mean candidates.
func (e *TemplaoError) WithSuggestions(suggestions ...string) *TemplaoError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *TemplaoError {
	return &TemplaoError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewCompileError creates a template compilation error.
func NewCompileError(template, message string, cause error) *TemplaoError {
	return &TemplaoError{
		Type:        ErrorTypeCompile,
		Code:        "COMPILE_FAILED",
		Message:     message,
		Template:    template,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *TemplaoError {
	return &TemplaoError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *TemplaoError {
	return &TemplaoError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewTemplateNotFoundError creates a not-found error for a template name.
func NewTemplateNotFoundError(name string) *TemplaoError {
	return &TemplaoError{
		Type:        ErrorTypeNotFound,
		Code:        "TEMPLATE_NOT_FOUND",
		Message:     fmt.Sprintf("template %q not found", name),
		Template:    name,
		Recoverable: true,
	}
}

// IsNotFound reports whether err is a template-not-found error.
func IsNotFound(err error) bool {
	var te *TemplaoError
	return errors.As(err, &te) && te.Type == ErrorTypeNotFound
}
