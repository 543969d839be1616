package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/md-converter/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", dbFile))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var base = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store) {
	t.Helper()
	entries := []Entry{
		{
			InputPath: "a.md", OutputPath: "a.pdf", Format: types.FormatPDF, Status: StatusSucceeded,
			StartedAt: base, FinishedAt: base.Add(2 * time.Second), Pages: 4,
			Attempts: []types.Attempt{
				{Backend: types.BackendNative, Outcome: types.OutcomeSkipped, Diagnostic: "native PDF engine unavailable"},
				{Backend: types.BackendChromium, Outcome: types.OutcomeSuccess},
			},
		},
		{
			InputPath: "b.md", OutputPath: "b.xlsx", Format: types.FormatSpreadsheet, Status: StatusSucceeded,
			StartedAt: base.Add(time.Minute), FinishedAt: base.Add(time.Minute), Sheets: []string{"Sales", "Notes"},
		},
		{
			InputPath: "c.md", OutputPath: "c.pdf", Format: types.FormatPDF, Status: StatusFailed,
			Error: "PDF conversion failed", StartedAt: base.Add(2 * time.Minute), FinishedAt: base.Add(2 * time.Minute),
		},
	}
	for _, e := range entries {
		if _, err := s.Record(context.Background(), e); err != nil {
			t.Fatalf("Record(%s): %v", e.InputPath, err)
		}
	}
}

func TestRecordAndList(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	entries, err := s.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	gotOrder := []string{entries[0].InputPath, entries[1].InputPath, entries[2].InputPath}
	if strings.Join(gotOrder, ",") != "c.md,b.md,a.md" {
		t.Errorf("order = %v, want newest first", gotOrder)
	}

	pdf := entries[2]
	if pdf.ID == "" {
		t.Error("expected generated ID")
	}
	if len(pdf.Attempts) != 2 || pdf.Attempts[0].Backend != types.BackendNative || pdf.Attempts[1].Outcome != types.OutcomeSuccess {
		t.Errorf("attempts = %+v", pdf.Attempts)
	}
	if pdf.Attempts[0].Diagnostic != "native PDF engine unavailable" {
		t.Errorf("diagnostic = %q", pdf.Attempts[0].Diagnostic)
	}
	if pdf.Pages != 4 || pdf.Duration() != 2*time.Second {
		t.Errorf("pages = %d, duration = %s", pdf.Pages, pdf.Duration())
	}
	if !pdf.StartedAt.Equal(base) {
		t.Errorf("started = %s, want %s", pdf.StartedAt, base)
	}

	xlsx := entries[1]
	if strings.Join(xlsx.Sheets, ",") != "Sales,Notes" {
		t.Errorf("sheets = %v", xlsx.Sheets)
	}
	if len(xlsx.Attempts) != 0 {
		t.Errorf("xlsx attempts = %v, want none", xlsx.Attempts)
	}

	if entries[0].Error != "PDF conversion failed" {
		t.Errorf("error = %q", entries[0].Error)
	}
}

func TestListFilters(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"by format", ListOptions{Format: types.FormatPDF}, []string{"c.md", "a.md"}},
		{"by status", ListOptions{Status: StatusSucceeded}, []string{"b.md", "a.md"}},
		{"format and status", ListOptions{Format: types.FormatPDF, Status: StatusFailed}, []string{"c.md"}},
		{"limit", ListOptions{Limit: 1}, []string{"c.md"}},
		{"no match", ListOptions{Format: types.FormatWord}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.List(context.Background(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, e := range entries {
				got = append(got, e.InputPath)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordKeepsGivenID(t *testing.T) {
	s := testStore(t)
	id, err := s.Record(context.Background(), Entry{ID: "fixed", InputPath: "x.md", OutputPath: "x.docx",
		Format: types.FormatWord, Status: StatusSucceeded, StartedAt: base, FinishedAt: base})
	if err != nil {
		t.Fatal(err)
	}
	if id != "fixed" {
		t.Errorf("id = %q, want fixed", id)
	}

	if _, err := s.Record(context.Background(), Entry{ID: "fixed", InputPath: "y.md", OutputPath: "y.docx",
		Format: types.FormatWord, Status: StatusSucceeded, StartedAt: base, FinishedAt: base}); err == nil {
		t.Error("expected duplicate ID to fail")
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), dbFile)
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	seed(t, s)
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	entries, err := s.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("got %d entries after reopen, want 3", len(entries))
	}
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	var buf bytes.Buffer
	if err := s.ExportYAML(context.Background(), &buf, ListOptions{Format: types.FormatSpreadsheet}); err != nil {
		t.Fatal(err)
	}

	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(got) != 1 || got[0]["input"] != "b.md" || got[0]["format"] != "xlsx" {
		t.Errorf("export = %v", got)
	}
}

func TestExportJSON(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	var buf bytes.Buffer
	if err := s.ExportJSON(context.Background(), &buf, ListOptions{Status: StatusFailed}); err != nil {
		t.Fatal(err)
	}

	var got []Entry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if len(got) != 1 || got[0].InputPath != "c.md" || got[0].Status != StatusFailed {
		t.Errorf("export = %+v", got)
	}
}

func TestExportEmpty(t *testing.T) {
	s := testStore(t)

	var buf bytes.Buffer
	if err := s.ExportJSON(context.Background(), &buf, ListOptions{}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export = %q, want []", buf.String())
	}
}

func TestListReportsCorruptRows(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  string
		want   string
	}{
		{name: "timestamp", column: "started_at", value: "yesterday", want: "parsing timestamp"},
		{name: "sheets", column: "sheets", value: "[not json", want: "decoding sheets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			id, err := s.Record(context.Background(), Entry{
				InputPath: "a.md", OutputPath: "a.xlsx", Format: types.FormatSpreadsheet, Status: StatusSucceeded,
				StartedAt: base, FinishedAt: base, Sheets: []string{"Sales"},
			})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.db.Exec(`UPDATE conversions SET `+tt.column+` = ? WHERE id = ?`, tt.value, id); err != nil {
				t.Fatal(err)
			}

			_, err = s.List(context.Background(), ListOptions{})
			if err == nil {
				t.Fatal("List succeeded on a corrupt row")
			}
			if !strings.Contains(err.Error(), tt.want) || !strings.Contains(err.Error(), id) {
				t.Errorf("List error = %q, want it to mention %q and %s", err, tt.want, id)
			}
		})
	}
}
