// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// NativeConfig holds settings for the in-process PDF engine.
type NativeConfig struct {
	// Enabled controls whether the native backend is attempted at all. A
	// disabled backend is recorded as skipped.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ExecPath points at a specific headless Chrome runtime. Empty means the
	// engine is located the way chromedp does by default.
	ExecPath string `json:"exec_path,omitempty" yaml:"exec_path,omitempty"`

	// Timeout bounds one native conversion (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// BrowserConfig holds settings for the headless browser CLI backend.
type BrowserConfig struct {
	// Candidates lists browser command names in lookup order.
	Candidates []string `json:"candidates" yaml:"candidates"`
}

// WkhtmltopdfConfig holds settings for the dedicated CLI backend.
type WkhtmltopdfConfig struct {
	// Command is the executable name or path (default "wkhtmltopdf").
	Command string `json:"command" yaml:"command"`
}

// PDFConfig groups the settings of all PDF backends.
type PDFConfig struct {
	Native      NativeConfig      `json:"native" yaml:"native"`
	Browser     BrowserConfig     `json:"browser" yaml:"browser"`
	Wkhtmltopdf WkhtmltopdfConfig `json:"wkhtmltopdf" yaml:"wkhtmltopdf"`

	// TempDir is where temporary HTML inputs are written. Empty uses the
	// system temp directory.
	TempDir string `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`
}

// JournalConfig holds settings for the conversion journal.
type JournalConfig struct {
	// Enabled controls whether conversions are recorded.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`
}

// Config groups all settings of the converter.
type Config struct {
	PDF     PDFConfig     `json:"pdf" yaml:"pdf"`
	Journal JournalConfig `json:"journal" yaml:"journal"`

	// LogLevel is the zap level name for diagnostics on stderr.
	LogLevel string `json:"log_level" yaml:"log_level"`
}
