// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
)

// Request validation failures. Each is wrapped in a *ValidationError.
var (
	ErrInputRequired     = errors.New("input path is required")
	ErrInputNotFound     = errors.New("input file not found")
	ErrOutputRequired    = errors.New("output path is required")
	ErrOutputDirectory   = errors.New("output directory is not usable")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// ValidationError reports a request rejected before any work started.
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ReadError reports an input file that exists but could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading input %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
