package config

import (
	"errors"
	"fmt"

	"github.com/dshills/modernconfig/internal/config/tree"
)

// Errors returned by configuration operations.
var (
	// ErrModNotFound indicates no tree is registered under the mod id.
	ErrModNotFound = errors.New("mod not found")

	// ErrOptionNotFound indicates the key path doesn't resolve to an option.
	ErrOptionNotFound = errors.New("option not found")

	// ErrTypeMismatch indicates the option kind doesn't match the requested type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidValue indicates text that cannot be parsed for an option kind.
	ErrInvalidValue = tree.ErrInvalidValue

	// ErrInvalidModID indicates a mod id that cannot name a config file.
	ErrInvalidModID = errors.New("invalid mod id")

	// ErrInvalidSetting indicates a library setting of the wrong type.
	ErrInvalidSetting = errors.New("invalid setting")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// TypeError is returned when an option is read as the wrong type.
type TypeError struct {
	// Path is the option key path.
	Path string
	// Expected is the requested kind.
	Expected tree.Kind
	// Actual is the option's kind.
	Actual tree.Kind
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type error for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// Is implements error matching for TypeError.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}
