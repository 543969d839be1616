// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/md-converter/internal/journal"
	"github.com/pdiddy/md-converter/internal/pdf"
	"github.com/pdiddy/md-converter/pkg/types"
)

// fakeExporter records what it was asked to export and returns a canned
// summary or error.
type fakeExporter struct {
	mu      sync.Mutex
	calls   int
	text    string
	summary types.ExportSummary
	err     error
	delay   time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeExporter) Export(ctx context.Context, markdownText, outputPath string) (types.ExportSummary, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls++
	f.text = markdownText
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return f.summary, f.err
	}
	return f.summary, os.WriteFile(outputPath, []byte("out"), 0o644)
}

// fakeRecorder collects journal entries.
type fakeRecorder struct {
	mu      sync.Mutex
	entries []journal.Entry
	err     error
}

func (r *fakeRecorder) Record(ctx context.Context, e journal.Entry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return "id", r.err
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func allFormats(e Exporter) map[types.Format]Exporter {
	return map[types.Format]Exporter{
		types.FormatPDF:         e,
		types.FormatWord:        e,
		types.FormatSpreadsheet: e,
	}
}

func TestConvert_Validation(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.md", "# Hi")
	notDir := writeInput(t, dir, "file.txt", "x")

	tests := []struct {
		name      string
		req       Request
		exporters map[types.Format]Exporter
		want      error
	}{
		{"empty input", Request{OutputPath: filepath.Join(dir, "o.pdf"), Format: types.FormatPDF}, nil, ErrInputRequired},
		{"blank input", Request{InputPath: "  ", OutputPath: filepath.Join(dir, "o.pdf"), Format: types.FormatPDF}, nil, ErrInputRequired},
		{"missing input", Request{InputPath: filepath.Join(dir, "nope.md"), OutputPath: filepath.Join(dir, "o.pdf"), Format: types.FormatPDF}, nil, ErrInputNotFound},
		{"input is directory", Request{InputPath: dir, OutputPath: filepath.Join(dir, "o.pdf"), Format: types.FormatPDF}, nil, ErrInputNotFound},
		{"empty output", Request{InputPath: input, Format: types.FormatPDF}, nil, ErrOutputRequired},
		{"output is directory", Request{InputPath: input, OutputPath: dir, Format: types.FormatPDF}, nil, ErrOutputDirectory},
		{"output under a file", Request{InputPath: input, OutputPath: filepath.Join(notDir, "sub", "o.pdf"), Format: types.FormatPDF}, nil, ErrOutputDirectory},
		{"unknown format", Request{InputPath: input, OutputPath: filepath.Join(dir, "new", "o.odt"), Format: "odt"}, nil, ErrUnsupportedFormat},
		{"empty format", Request{InputPath: input, OutputPath: filepath.Join(dir, "new", "o")}, nil, ErrUnsupportedFormat},
		{
			"format without exporter",
			Request{InputPath: input, OutputPath: filepath.Join(dir, "new", "o.pdf"), Format: types.FormatPDF},
			map[types.Format]Exporter{types.FormatWord: &fakeExporter{}},
			ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &fakeExporter{}
			exporters := tt.exporters
			if exporters == nil {
				exporters = allFormats(exp)
			}
			rec := &fakeRecorder{}

			_, err := NewService(exporters, rec, nil).Convert(context.Background(), tt.req)

			require.ErrorIs(t, err, tt.want)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Equal(t, 0, exp.calls)
			assert.Empty(t, rec.entries, "rejected requests are not journaled")
			assert.NoDirExists(t, filepath.Join(dir, "new"), "validation must not create directories")
		})
	}
}

func TestConvert_Success(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.md", "# Sales\n")
	out := filepath.Join(dir, "nested", "deeper", "out.xlsx")
	exp := &fakeExporter{summary: types.ExportSummary{Sheets: []string{"Sales"}}}

	var progress []float64
	res, err := NewService(allFormats(exp), nil, nil).Convert(context.Background(), Request{
		InputPath:  input,
		OutputPath: out,
		Format:     types.FormatSpreadsheet,
		Progress:   func(p float64) { progress = append(progress, p) },
	})

	require.NoError(t, err)
	assert.Equal(t, []float64{5, 15, 95, 100}, progress)
	assert.Equal(t, "# Sales\n", exp.text)
	assert.FileExists(t, out)
	assert.Equal(t, Result{Format: types.FormatSpreadsheet, OutputPath: out, Sheets: []string{"Sales"}}, res)
}

func TestConvert_ExporterErrorPassesThrough(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.md", "text")
	exportErr := &pdf.ExportError{Attempts: []types.Attempt{{Backend: types.BackendNative, Outcome: types.OutcomeSkipped}}}
	exp := &fakeExporter{err: exportErr, summary: types.ExportSummary{Attempts: exportErr.Attempts}}

	var progress []float64
	res, err := NewService(allFormats(exp), nil, nil).Convert(context.Background(), Request{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "out.pdf"),
		Format:     types.FormatPDF,
		Progress:   func(p float64) { progress = append(progress, p) },
	})

	assert.Same(t, exportErr, err)
	assert.Equal(t, []float64{5, 15}, progress)
	assert.Equal(t, exportErr.Attempts, res.Attempts)
}

func TestConvert_Cancelled(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.md", "text")
	exp := &fakeExporter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(allFormats(exp), nil, nil).Convert(ctx, Request{
		InputPath: input, OutputPath: filepath.Join(dir, "out.docx"), Format: types.FormatWord,
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, exp.calls)
}

func TestConvert_Journal(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "in.md", "text")

	t.Run("success", func(t *testing.T) {
		rec := &fakeRecorder{}
		exp := &fakeExporter{summary: types.ExportSummary{Pages: 2}}
		_, err := NewService(allFormats(exp), rec, nil).Convert(context.Background(), Request{
			InputPath: input, OutputPath: filepath.Join(dir, "a.pdf"), Format: types.FormatPDF,
		})
		require.NoError(t, err)
		require.Len(t, rec.entries, 1)
		e := rec.entries[0]
		assert.Equal(t, journal.StatusSucceeded, e.Status)
		assert.Equal(t, types.FormatPDF, e.Format)
		assert.Equal(t, 2, e.Pages)
		assert.Empty(t, e.Error)
		assert.False(t, e.FinishedAt.Before(e.StartedAt))
	})

	t.Run("failure", func(t *testing.T) {
		rec := &fakeRecorder{}
		exp := &fakeExporter{err: errors.New("disk full")}
		_, err := NewService(allFormats(exp), rec, nil).Convert(context.Background(), Request{
			InputPath: input, OutputPath: filepath.Join(dir, "b.pdf"), Format: types.FormatPDF,
		})
		require.Error(t, err)
		require.Len(t, rec.entries, 1)
		assert.Equal(t, journal.StatusFailed, rec.entries[0].Status)
		assert.Equal(t, "disk full", rec.entries[0].Error)
	})

	t.Run("recorder failure is not fatal", func(t *testing.T) {
		rec := &fakeRecorder{err: errors.New("database is locked")}
		_, err := NewService(allFormats(&fakeExporter{}), rec, nil).Convert(context.Background(), Request{
			InputPath: input, OutputPath: filepath.Join(dir, "c.docx"), Format: types.FormatWord,
		})
		assert.NoError(t, err)
	})
}

func TestReadError(t *testing.T) {
	err := &ReadError{Path: "in.md", Err: os.ErrPermission}
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, "reading input in.md: permission denied", err.Error())
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "docs/report.pdf", DefaultOutputPath("docs/report.md", types.FormatPDF))
	assert.Equal(t, "notes.xlsx", DefaultOutputPath("notes", types.FormatSpreadsheet))
	assert.Equal(t, "a.b.docx", DefaultOutputPath("a.b.markdown", types.FormatWord))
}

func TestConvertBatch(t *testing.T) {
	dir := t.TempDir()
	var reqs []Request
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		reqs = append(reqs, Request{
			InputPath:  writeInput(t, dir, name+".md", name),
			OutputPath: filepath.Join(dir, "out", name+".docx"),
			Format:     types.FormatWord,
		})
	}
	reqs = append(reqs, Request{InputPath: filepath.Join(dir, "missing.md"), OutputPath: filepath.Join(dir, "x.docx"), Format: types.FormatWord})

	exp := &fakeExporter{delay: 20 * time.Millisecond}
	var buf bytes.Buffer
	result := ConvertBatch(context.Background(), NewService(allFormats(exp), nil, nil), reqs, 2, &buf)

	assert.Equal(t, BatchResult{Converted: 5, Failed: 1}, result)
	assert.Equal(t, 6, result.Total())
	assert.True(t, result.HasFailures())
	assert.LessOrEqual(t, exp.maxInFlight.Load(), int32(2))

	out := buf.String()
	assert.Equal(t, 5, strings.Count(out, "converted: "))
	assert.Contains(t, out, "failed:  "+filepath.Join(dir, "missing.md"))
	assert.Contains(t, out, "Batch summary: 5 converted, 0 skipped, 1 failed (total: 6)")
}

func TestConvertBatch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	req := Request{InputPath: writeInput(t, dir, "a.md", "a"), OutputPath: filepath.Join(dir, "a.pdf"), Format: types.FormatPDF}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exp := &fakeExporter{}
	result := ConvertBatch(ctx, NewService(allFormats(exp), nil, nil), []Request{req, req}, 0, io.Discard)

	assert.Equal(t, BatchResult{Skipped: 2}, result)
	assert.Equal(t, 0, exp.calls)
}

// noProcess fails every subprocess as if its executable were missing.
type noProcess struct{}

func (noProcess) Run(context.Context, string, []string, io.Writer) (int, error) {
	return -1, exec.ErrNotFound
}

func testConfig(t *testing.T) types.Config {
	return types.Config{PDF: types.PDFConfig{
		Native:  types.NativeConfig{Enabled: false},
		Browser: types.BrowserConfig{Candidates: []string{"md-converter-test-no-such-browser"}},
		TempDir: t.TempDir(),
	}}
}

func TestDefaultService_Spreadsheet(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "sales.md", "# Sales\n\n| Region | Total |\n|---|---|\n| East | 10 |\n\nSome note.")
	out := filepath.Join(dir, "sales.xlsx")

	res, err := NewDefaultService(testConfig(t), noProcess{}, nil, nil).Convert(context.Background(), Request{
		InputPath: input, OutputPath: out, Format: types.FormatSpreadsheet,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sales", "Notes"}, res.Sheets)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sales", "Notes"}, f.GetSheetList())
}

func TestDefaultService_Word(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "doc.md", "# Title\n\nBody.")
	out := filepath.Join(dir, "doc.docx")

	_, err := NewDefaultService(testConfig(t), noProcess{}, nil, nil).Convert(context.Background(), Request{
		InputPath: input, OutputPath: out, Format: types.FormatWord,
	})
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestDefaultService_PDFWithoutBackends(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "doc.md", "# Title")
	rec := &fakeRecorder{}

	res, err := NewDefaultService(testConfig(t), noProcess{}, rec, nil).Convert(context.Background(), Request{
		InputPath: input, OutputPath: filepath.Join(dir, "doc.pdf"), Format: types.FormatPDF,
	})

	var exportErr *pdf.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.Contains(t, err.Error(), "PDF conversion failed")
	require.Len(t, res.Attempts, 3)
	for _, a := range res.Attempts {
		assert.Equal(t, types.OutcomeSkipped, a.Outcome, string(a.Backend))
	}
	require.Len(t, rec.entries, 1)
	assert.Len(t, rec.entries[0].Attempts, 3)
	assert.NoFileExists(t, filepath.Join(dir, "doc.pdf"))
}
