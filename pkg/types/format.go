// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Format identifies a conversion target.
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatWord        Format = "docx"
	FormatSpreadsheet Format = "xlsx"
)

// formatAliases maps accepted spellings to their canonical format.
var formatAliases = map[string]Format{
	"pdf":         FormatPDF,
	"docx":        FormatWord,
	"word":        FormatWord,
	"xlsx":        FormatSpreadsheet,
	"spreadsheet": FormatSpreadsheet,
	"excel":       FormatSpreadsheet,
}

// ParseFormat resolves a user-supplied format name, ignoring case and
// surrounding whitespace.
func ParseFormat(s string) (Format, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported output format: %q", s)
	}
	return f, nil
}

// Valid reports whether f is one of the recognized formats.
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatWord, FormatSpreadsheet:
		return true
	}
	return false
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	if !f.Valid() {
		return ""
	}
	return "." + string(f)
}
