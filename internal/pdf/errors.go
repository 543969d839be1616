// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"fmt"
	"strings"

	"github.com/pdiddy/md-converter/pkg/types"
)

// NativeUnavailableError reports that the in-process engine could not be
// loaded: it is disabled, or its configured executable is missing.
type NativeUnavailableError struct {
	Path   string
	Reason string
	Err    error
}

func (e *NativeUnavailableError) Error() string {
	msg := "native PDF engine unavailable"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NativeUnavailableError) Unwrap() error { return e.Err }

// LaunchError reports that the native engine could not be allocated or
// started. Errors raised after the engine is running are never wrapped in
// it.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string { return "launching native engine: " + e.Err.Error() }

func (e *LaunchError) Unwrap() error { return e.Err }

// UnavailableError reports a backend whose tool is not installed.
type UnavailableError struct {
	Backend types.BackendKind
	Reason  string
	Err     error
}

func (e *UnavailableError) Error() string {
	msg := fmt.Sprintf("%s unavailable", e.Backend)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// FailedError reports a backend that ran but did not produce a PDF.
// ExitCode is zero when the process exited cleanly without output.
type FailedError struct {
	Backend  types.BackendKind
	ExitCode int
	Stderr   string
	Reason   string
}

func (e *FailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed", e.Backend)
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " with exit code %d", e.ExitCode)
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.Stderr != "" {
		b.WriteString(": " + e.Stderr)
	}
	return b.String()
}

// ExportError is returned when every backend was skipped or failed. Its
// message lists the backends in the order they were tried and how each
// ended; Unwrap exposes the individual causes.
type ExportError struct {
	Attempts []types.Attempt
	Causes   []error
}

const remediation = "Install one supported backend (recommended: Chrome/Chromium on PATH, or wkhtmltopdf), " +
	"or point pdf.native.exec_path at a headless Chrome executable."

func (e *ExportError) Error() string {
	var b strings.Builder
	b.WriteString("PDF conversion failed. Tried HTML-to-PDF backends in order:\n")
	for i, a := range e.Attempts {
		fmt.Fprintf(&b, "%d. %s: %s", i+1, describeBackend(a.Backend), a.Outcome)
		if a.Diagnostic != "" {
			b.WriteString(" (" + a.Diagnostic + ")")
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(remediation)
	return b.String()
}

func (e *ExportError) Unwrap() []error { return e.Causes }

func describeBackend(kind types.BackendKind) string {
	switch kind {
	case types.BackendNative:
		return "native engine (in-process headless Chrome)"
	case types.BackendChromium:
		return "Chromium/Chrome headless CLI"
	case types.BackendWkhtmltopdf:
		return "wkhtmltopdf CLI"
	}
	return string(kind)
}
