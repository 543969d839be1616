// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"context"
	"strconv"

	"github.com/pdiddy/md-converter/internal/process"
	"github.com/pdiddy/md-converter/pkg/types"
)

// DefaultWkhtmltopdfCommand is the wkhtmltopdf executable looked up on PATH.
const DefaultWkhtmltopdfCommand = "wkhtmltopdf"

const wkhtmltopdfDPI = 300

// WkhtmltopdfBackend prints HTML with the wkhtmltopdf CLI.
type WkhtmltopdfBackend struct {
	runner  *process.Runner
	command string
}

// NewWkhtmltopdfBackend creates a WkhtmltopdfBackend. An empty command
// uses DefaultWkhtmltopdfCommand.
func NewWkhtmltopdfBackend(runner *process.Runner, command string) *WkhtmltopdfBackend {
	if command == "" {
		command = DefaultWkhtmltopdfCommand
	}
	return &WkhtmltopdfBackend{runner: runner, command: command}
}

func (w *WkhtmltopdfBackend) Kind() types.BackendKind { return types.BackendWkhtmltopdf }

// Export writes html to a temporary file and converts it to outputPath.
func (w *WkhtmltopdfBackend) Export(ctx context.Context, html, outputPath string) error {
	err := w.runner.RunWithTempFile(ctx, html, ".html", func(tmpPath string) process.Command {
		return process.Command{Name: w.command, Args: wkhtmltopdfArgs(tmpPath, outputPath)}
	})
	return subprocessError(types.BackendWkhtmltopdf, err)
}

func wkhtmltopdfArgs(htmlPath, outputPath string) []string {
	margin := func(mm int) string { return strconv.Itoa(mm) }
	return []string{
		"--quiet",
		"--encoding", "utf-8",
		"--disable-javascript",
		"--enable-local-file-access",
		"--dpi", strconv.Itoa(wkhtmltopdfDPI),
		"--page-size", "A4",
		"--margin-top", margin(marginTopMM),
		"--margin-bottom", margin(marginTopMM),
		"--margin-left", margin(marginSideMM),
		"--margin-right", margin(marginSideMM),
		htmlPath,
		outputPath,
	}
}
