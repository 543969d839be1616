// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdf turns rendered HTML into PDF files through an ordered chain
// of backends: an in-process headless Chrome engine, a Chromium-based
// browser CLI, and the wkhtmltopdf CLI. A backend is only abandoned for
// the next one when its failure is recognised as "not installed" or "could
// not run"; anything else stops the chain.
package pdf

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/md-converter/internal/process"
	"github.com/pdiddy/md-converter/pkg/types"
)

// Backend converts an HTML document to a PDF file at outputPath.
type Backend interface {
	Kind() types.BackendKind
	Export(ctx context.Context, html, outputPath string) error
}

// Report describes one run of the chain.
type Report struct {
	Attempts []types.Attempt
	Pages    int
}

// Chain tries its backends in order until one succeeds.
type Chain struct {
	backends []Backend
	logger   *zap.Logger

	// pageCount inspects a produced PDF; nil skips inspection.
	pageCount func(path string) (int, error)
}

// NewChain creates a Chain over backends, tried in the given order. A nil
// logger discards diagnostics.
func NewChain(logger *zap.Logger, backends ...Backend) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{backends: backends, logger: logger, pageCount: PageCount}
}

// NewDefaultChain builds the native, browser, and wkhtmltopdf chain from
// cfg. Subprocess backends run through exec; nil uses real processes.
func NewDefaultChain(cfg types.PDFConfig, exec process.Executor, logger *zap.Logger) *Chain {
	runner := process.NewRunner(exec, cfg.TempDir, logger)
	return NewChain(logger,
		NewNativeBackend(cfg.Native, logger),
		NewBrowserBackend(runner, cfg.Browser.Candidates, logger),
		NewWkhtmltopdfBackend(runner, cfg.Wkhtmltopdf.Command),
	)
}

// Export writes html as a PDF to outputPath using the first backend that
// succeeds. Cancellation is checked before every attempt. Errors that do
// not indicate a missing or failing backend are returned immediately
// without trying the rest. When every backend is skipped or fails, the
// error is an *ExportError.
func (c *Chain) Export(ctx context.Context, html, outputPath string) (Report, error) {
	var (
		report Report
		causes []error
	)

	for _, b := range c.backends {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		kind := b.Kind()
		log := c.logger.With(zap.String("backend", string(kind)))
		log.Debug("trying PDF backend")

		err := b.Export(ctx, html, outputPath)
		if err == nil {
			report.Attempts = append(report.Attempts, types.Attempt{Backend: kind, Outcome: types.OutcomeSuccess})
			report.Pages = c.inspect(outputPath)
			log.Info("PDF written", zap.String("path", outputPath), zap.Int("pages", report.Pages))
			return report, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, ctxErr
		}

		outcome, ok := classify(kind, err)
		report.Attempts = append(report.Attempts, types.Attempt{
			Backend:    kind,
			Outcome:    outcome,
			Diagnostic: err.Error(),
		})
		if !ok {
			log.Warn("PDF backend failed", zap.Error(err))
			return report, err
		}

		log.Info("PDF backend "+string(outcome)+", falling back", zap.Error(err))
		causes = append(causes, err)
	}

	return report, &ExportError{Attempts: report.Attempts, Causes: causes}
}

func (c *Chain) inspect(path string) int {
	if c.pageCount == nil {
		return 0
	}
	n, err := c.pageCount(path)
	if err != nil {
		c.logger.Warn("could not inspect PDF", zap.String("path", path), zap.Error(err))
		return 0
	}
	return n
}
