// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/pdiddy/md-converter/internal/markdown"
)

// TableRegion is one table of the document together with the name its
// worksheet should carry.
type TableRegion struct {
	Name  string
	Table ast.Node
}

// RowModel is the extracted text of one table row.
type RowModel struct {
	Cells    []string
	IsHeader bool
}

// Plan scans the top-level blocks of doc once and returns the tables in
// document order plus the text of every non-table block.
//
// A table is named after the most recent heading above it, or "Table N"
// (N counting tables from 1) when that heading is blank or absent. A
// heading keeps labelling tables until the next heading replaces it.
// Heading text is also collected as a note.
func Plan(doc *markdown.Document) ([]TableRegion, []string) {
	var (
		regions     []TableRegion
		notes       []string
		lastHeading string
		tableCount  int
	)

	for n := doc.Root.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindHeading:
			lastHeading = BlockText(n, doc.Source)
		case east.KindTable:
			tableCount++
			name := lastHeading
			if strings.TrimSpace(name) == "" {
				name = fmt.Sprintf("Table %d", tableCount)
			}
			regions = append(regions, TableRegion{Name: name, Table: n})
			continue
		}

		if text := strings.TrimSpace(BlockText(n, doc.Source)); text != "" {
			notes = append(notes, text)
		}
	}

	return regions, notes
}

// ExtractRows returns one RowModel per row of table, in source order. The
// header row comes first and is flagged.
func ExtractRows(table ast.Node, source []byte) []RowModel {
	var rows []RowModel
	for r := table.FirstChild(); r != nil; r = r.NextSibling() {
		var header bool
		switch r.Kind() {
		case east.KindTableHeader:
			header = true
		case east.KindTableRow:
		default:
			continue
		}
		rows = append(rows, RowModel{Cells: extractCells(r, source), IsHeader: header})
	}
	return rows
}

func extractCells(row ast.Node, source []byte) []string {
	cells := []string{}
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != east.KindTableCell {
			continue
		}
		cells = append(cells, BlockText(c, source))
	}
	return cells
}
