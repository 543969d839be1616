// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"context"

	"github.com/pdiddy/md-converter/internal/markdown"
	"github.com/pdiddy/md-converter/pkg/types"
)

// Exporter renders Markdown to HTML and prints it through a Chain.
type Exporter struct {
	renderer *markdown.Renderer
	chain    *Chain
}

// NewExporter creates an Exporter. A nil renderer uses the default one.
func NewExporter(renderer *markdown.Renderer, chain *Chain) *Exporter {
	if renderer == nil {
		renderer = markdown.NewRenderer()
	}
	return &Exporter{renderer: renderer, chain: chain}
}

// Export converts markdownText to a PDF at outputPath. The returned summary
// lists the backend attempts even when the export fails.
func (e *Exporter) Export(ctx context.Context, markdownText, outputPath string) (types.ExportSummary, error) {
	html, err := e.renderer.Render(markdownText)
	if err != nil {
		return types.ExportSummary{}, err
	}

	report, err := e.chain.Export(ctx, html, outputPath)
	return types.ExportSummary{Attempts: report.Attempts, Pages: report.Pages}, err
}
