// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package spreadsheet exports the tables of a Markdown document to a
// workbook: one worksheet per table, named after the heading above it,
// plus a Notes worksheet holding the text of everything else.
package spreadsheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/md-converter/internal/markdown"
	"github.com/pdiddy/md-converter/pkg/types"
)

const (
	notesSheetName = "Notes"
	noRowsMessage  = "No table rows detected."

	headerFillColor = "1F3864"
	headerFontColor = "FFFFFF"
	borderColor     = "000000"
	borderThin      = 1
	fillSolid       = 1

	minColumnWidth = 8
	maxColumnWidth = 255
)

// WriteError reports a failure to save the workbook.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing workbook %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Exporter converts Markdown into an .xlsx workbook.
type Exporter struct {
	parser *markdown.Parser
	logger *zap.Logger
}

// NewExporter creates an Exporter. A nil logger discards diagnostics.
func NewExporter(parser *markdown.Parser, logger *zap.Logger) *Exporter {
	if parser == nil {
		parser = markdown.NewParser()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{parser: parser, logger: logger}
}

// Export parses markdownText, plans its worksheets, and saves the workbook
// at outputPath.
func (e *Exporter) Export(ctx context.Context, markdownText, outputPath string) (types.ExportSummary, error) {
	if err := ctx.Err(); err != nil {
		return types.ExportSummary{}, err
	}

	doc := e.parser.Parse(markdownText)
	regions, notes := Plan(doc)
	e.logger.Debug("planned workbook",
		zap.Int("tables", len(regions)),
		zap.Int("notes", len(notes)))

	sheets, err := WriteWorkbook(ctx, outputPath, doc.Source, regions, notes)
	if err != nil {
		return types.ExportSummary{}, err
	}

	e.logger.Info("workbook written", zap.String("path", outputPath), zap.Strings("sheets", sheets))
	return types.ExportSummary{Sheets: sheets}, nil
}

// WriteWorkbook writes one worksheet per region, in order, and a Notes
// worksheet when there are notes or no regions at all, then saves the
// workbook to path. It returns the worksheet names in workbook order.
func WriteWorkbook(ctx context.Context, path string, source []byte, regions []TableRegion, notes []string) ([]string, error) {
	f := excelize.NewFile()
	defer f.Close()

	wb, err := newWorkbook(f)
	if err != nil {
		return nil, err
	}

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := wb.addTable(region.Name, ExtractRows(region.Table, source)); err != nil {
			return nil, fmt.Errorf("writing table %q: %w", region.Name, err)
		}
	}

	if len(notes) > 0 || len(regions) == 0 {
		if err := wb.addNotes(notes); err != nil {
			return nil, fmt.Errorf("writing notes: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.SaveAs(path); err != nil {
		return nil, &WriteError{Path: path, Err: err}
	}
	return wb.sheets, nil
}

// workbook tracks the sheets and shared styles of one export.
type workbook struct {
	file   *excelize.File
	names  *Allocator
	sheets []string

	bodyStyle   int
	headerStyle int
	boldStyle   int
}

func newWorkbook(f *excelize.File) (*workbook, error) {
	border := []excelize.Border{
		{Type: "left", Color: borderColor, Style: borderThin},
		{Type: "top", Color: borderColor, Style: borderThin},
		{Type: "right", Color: borderColor, Style: borderThin},
		{Type: "bottom", Color: borderColor, Style: borderThin},
	}

	body, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating body style: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Font:      &excelize.Font{Bold: true, Color: headerFontColor},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: fillSolid},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating bold style: %w", err)
	}

	return &workbook{
		file:        f,
		names:       NewAllocator(),
		bodyStyle:   body,
		headerStyle: header,
		boldStyle:   bold,
	}, nil
}

// addSheet allocates a unique name and creates the sheet. A new file
// starts with one default sheet, which the first call renames.
func (w *workbook) addSheet(desired string) (string, error) {
	name := w.names.Allocate(desired)
	if len(w.sheets) == 0 {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
			return "", fmt.Errorf("naming sheet %q: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return "", fmt.Errorf("creating sheet %q: %w", name, err)
	}
	w.sheets = append(w.sheets, name)
	return name, nil
}

func (w *workbook) addTable(desired string, rows []RowModel) error {
	sheet, err := w.addSheet(desired)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return w.file.SetCellStr(sheet, "A1", noRowsMessage)
	}

	width := 1
	text := make([][]string, len(rows))
	for i, row := range rows {
		text[i] = row.Cells
		width = max(width, len(row.Cells))
		if len(row.Cells) == 0 {
			continue
		}
		values := make([]any, len(row.Cells))
		for j, c := range row.Cells {
			values[j] = c
		}
		if err := w.file.SetSheetRow(sheet, cellName(1, i+1), &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := w.file.SetCellStyle(sheet, "A1", cellName(width, len(rows)), w.bodyStyle); err != nil {
		return fmt.Errorf("styling table: %w", err)
	}

	for i, row := range rows {
		if !row.IsHeader {
			continue
		}
		end := cellName(max(1, len(row.Cells)), i+1)
		if err := w.file.SetCellStyle(sheet, cellName(1, i+1), end, w.headerStyle); err != nil {
			return fmt.Errorf("styling header row %d: %w", i+1, err)
		}
	}

	if rows[0].IsHeader {
		err := w.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
			Selection: []excelize.Selection{
				{SQRef: "A2", ActiveCell: "A2", Pane: "bottomLeft"},
			},
		})
		if err != nil {
			return fmt.Errorf("freezing header row: %w", err)
		}
	}

	return w.autoFit(sheet, text)
}

func (w *workbook) addNotes(notes []string) error {
	sheet, err := w.addSheet(notesSheetName)
	if err != nil {
		return err
	}

	if err := w.file.SetCellStr(sheet, "A1", notesSheetName); err != nil {
		return err
	}
	if err := w.file.SetCellStyle(sheet, "A1", "A1", w.boldStyle); err != nil {
		return err
	}

	text := [][]string{{notesSheetName}}
	for i, note := range notes {
		if err := w.file.SetCellStr(sheet, cellName(1, i+2), note); err != nil {
			return fmt.Errorf("writing note %d: %w", i+1, err)
		}
		text = append(text, []string{note})
	}

	return w.autoFit(sheet, text)
}

// autoFit sizes each column to the widest value in it.
func (w *workbook) autoFit(sheet string, rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for i, v := range row {
			if i >= len(widths) {
				widths = append(widths, make([]int, i-len(widths)+1)...)
			}
			widths[i] = max(widths[i], displayWidth(v))
		}
	}

	for i, chars := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(sheet, col, col, columnWidth(chars)); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}
	return nil
}

// displayWidth is the terminal-cell width of the longest line of s; wide
// East Asian runes count double.
func displayWidth(s string) int {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		widest = max(widest, runewidth.StringWidth(line))
	}
	return widest
}

func columnWidth(chars int) float64 {
	return min(max(float64(chars)+2, minColumnWidth), maxColumnWidth)
}

// cellName converts 1-based coordinates to an A1 reference. Coordinates
// here are always positive, so the conversion cannot fail.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
