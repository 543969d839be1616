// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert validates conversion requests and dispatches them to the
// exporter registered for the requested output format.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/md-converter/internal/docx"
	"github.com/pdiddy/md-converter/internal/journal"
	"github.com/pdiddy/md-converter/internal/markdown"
	"github.com/pdiddy/md-converter/internal/pdf"
	"github.com/pdiddy/md-converter/internal/process"
	"github.com/pdiddy/md-converter/internal/spreadsheet"
	"github.com/pdiddy/md-converter/pkg/types"
)

// Progress checkpoints reported by Convert.
const (
	progressRead       = 5
	progressDispatched = 15
	progressExported   = 95
	progressDone       = 100
)

// Exporter writes Markdown text to outputPath in one output format. PDF,
// Word, and spreadsheet exporters implement this interface.
type Exporter interface {
	Export(ctx context.Context, markdownText, outputPath string) (types.ExportSummary, error)
}

// Recorder persists the outcome of a conversion. *journal.Store implements
// it.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) (string, error)
}

// ProgressFunc receives a completion percentage between 0 and 100. Values
// never decrease within one conversion.
type ProgressFunc func(percent float64)

// Request describes one conversion.
type Request struct {
	InputPath  string
	OutputPath string
	Format     types.Format
	Progress   ProgressFunc
}

// Result describes a finished conversion.
type Result struct {
	Format     types.Format
	OutputPath string
	Attempts   []types.Attempt
	Sheets     []string
	Pages      int
}

// Service runs conversions.
type Service struct {
	exporters map[types.Format]Exporter
	recorder  Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a Service dispatching to exporters. A nil recorder
// disables journaling; a nil logger discards diagnostics.
func NewService(exporters map[types.Format]Exporter, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		exporters: exporters,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// NewDefaultService wires the PDF, Word, and spreadsheet exporters from
// cfg. Subprocess backends run through exec; nil uses real processes.
func NewDefaultService(cfg types.Config, exec process.Executor, recorder Recorder, logger *zap.Logger) *Service {
	renderer := markdown.NewRenderer()
	chain := pdf.NewDefaultChain(cfg.PDF, exec, logger)
	return NewService(map[types.Format]Exporter{
		types.FormatPDF:         pdf.NewExporter(renderer, chain),
		types.FormatWord:        docx.NewExporter(renderer, logger),
		types.FormatSpreadsheet: spreadsheet.NewExporter(markdown.NewParser(), logger),
	}, recorder, logger)
}

// Convert validates req, reads the input, and runs the exporter for
// req.Format. Validation happens before anything touches the filesystem,
// so a rejected request has no side effects. Exporter errors are returned
// unchanged; the Result still carries any PDF attempts made.
func (s *Service) Convert(ctx context.Context, req Request) (Result, error) {
	exporter, err := s.validate(req)
	if err != nil {
		return Result{}, err
	}

	started := s.now()
	result, err := s.run(ctx, exporter, req)
	s.record(ctx, req, result, err, started)
	return result, err
}

func (s *Service) validate(req Request) (Exporter, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return nil, &ValidationError{Err: ErrInputRequired}
	}
	info, err := os.Stat(req.InputPath)
	if err != nil {
		return nil, &ValidationError{Err: ErrInputNotFound, Detail: req.InputPath}
	}
	if info.IsDir() {
		return nil, &ValidationError{Err: ErrInputNotFound, Detail: req.InputPath + " is a directory"}
	}

	if strings.TrimSpace(req.OutputPath) == "" {
		return nil, &ValidationError{Err: ErrOutputRequired}
	}
	if err := checkOutputPath(req.OutputPath); err != nil {
		return nil, &ValidationError{Err: ErrOutputDirectory, Detail: err.Error()}
	}

	exporter, ok := s.exporters[req.Format]
	if !req.Format.Valid() || !ok {
		return nil, &ValidationError{Err: ErrUnsupportedFormat, Detail: fmt.Sprintf("%q", req.Format)}
	}
	return exporter, nil
}

// checkOutputPath verifies that path names a file whose nearest existing
// ancestor is a directory.
func checkOutputPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			return nil
		}
		if parent := filepath.Dir(dir); parent == dir {
			return fmt.Errorf("no existing ancestor for %s", path)
		}
	}
}

func (s *Service) run(ctx context.Context, exporter Exporter, req Request) (Result, error) {
	result := Result{Format: req.Format, OutputPath: req.OutputPath}
	report := func(p float64) {
		if req.Progress != nil {
			req.Progress(p)
		}
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	data, err := os.ReadFile(req.InputPath)
	if err != nil {
		return result, &ReadError{Path: req.InputPath, Err: err}
	}
	report(progressRead)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	report(progressDispatched)

	log := s.logger.With(zap.String("input", req.InputPath), zap.String("format", string(req.Format)))
	log.Debug("exporting")

	summary, err := exporter.Export(ctx, string(data), req.OutputPath)
	result.Attempts = summary.Attempts
	result.Sheets = summary.Sheets
	result.Pages = summary.Pages
	if err != nil {
		log.Debug("export failed", zap.Error(err))
		return result, err
	}

	report(progressExported)
	report(progressDone)
	log.Info("converted", zap.String("output", req.OutputPath))
	return result, nil
}

// record journals a conversion. Journal failures are logged, never
// returned.
func (s *Service) record(ctx context.Context, req Request, result Result, convErr error, started time.Time) {
	if s.recorder == nil {
		return
	}

	entry := journal.Entry{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		Format:     req.Format,
		Status:     journal.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: s.now(),
		Sheets:     result.Sheets,
		Pages:      result.Pages,
		Attempts:   result.Attempts,
	}
	if convErr != nil {
		entry.Status = journal.StatusFailed
		entry.Error = convErr.Error()
	}

	// The journal outlives a cancelled conversion.
	if _, err := s.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("could not record conversion", zap.String("input", req.InputPath), zap.Error(err))
	}
}

// DefaultOutputPath replaces the extension of inputPath with the one for
// format.
func DefaultOutputPath(inputPath string, format types.Format) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + format.Extension()
}
