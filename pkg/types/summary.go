// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExportSummary describes what one exporter produced. Fields that do not
// apply to a format stay empty.
type ExportSummary struct {
	// Attempts lists PDF backend attempts in the order they ran.
	Attempts []Attempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`

	// Sheets lists worksheet names in workbook order.
	Sheets []string `json:"sheets,omitempty" yaml:"sheets,omitempty"`

	// Pages is the PDF page count, or zero when unknown.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`
}
