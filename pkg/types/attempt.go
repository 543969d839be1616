// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BackendKind identifies one PDF backend.
type BackendKind string

const (
	BackendNative      BackendKind = "native"
	BackendChromium    BackendKind = "chromium"
	BackendWkhtmltopdf BackendKind = "wkhtmltopdf"
)

// Outcome is the result of one backend attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Attempt records one PDF backend attempt within a single export.
type Attempt struct {
	Backend BackendKind `json:"backend" yaml:"backend"`
	Outcome Outcome     `json:"outcome" yaml:"outcome"`

	// Diagnostic holds the error text for skipped and failed attempts.
	Diagnostic string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}
