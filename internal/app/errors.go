package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrClosed indicates the application has been shut down.
	ErrClosed = errors.New("application closed")

	// ErrWatchDisabled indicates live reload was not enabled.
	ErrWatchDisabled = errors.New("watching disabled")
)

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ReloadError reports a config file that could not be re-read after an
// external edit.
type ReloadError struct {
	ModID string
	Path  string
	Err   error
}

func (e *ReloadError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("reload %s (%s): %v", e.ModID, e.Path, e.Err)
}

func (e *ReloadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
