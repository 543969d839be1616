// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/md-converter/internal/process"
	"github.com/pdiddy/md-converter/pkg/types"
)

// DefaultBrowserCandidates are the Chromium-based browser commands tried,
// in order, when none are configured.
var DefaultBrowserCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium-browser",
	"chromium",
	"msedge",
	"microsoft-edge",
}

// BrowserBackend prints HTML with the headless mode of an installed
// Chromium-based browser.
type BrowserBackend struct {
	runner     *process.Runner
	candidates []string
	logger     *zap.Logger

	lookup func(candidates []string) (string, bool)
	goos   string
}

// NewBrowserBackend creates a BrowserBackend. Empty candidates use
// DefaultBrowserCandidates.
func NewBrowserBackend(runner *process.Runner, candidates []string, logger *zap.Logger) *BrowserBackend {
	if len(candidates) == 0 {
		candidates = DefaultBrowserCandidates
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserBackend{
		runner:     runner,
		candidates: candidates,
		logger:     logger,
		lookup:     process.Lookup,
		goos:       runtime.GOOS,
	}
}

func (b *BrowserBackend) Kind() types.BackendKind { return types.BackendChromium }

// Export locates a browser, writes html to a temporary file, and prints it
// to outputPath. A run counts as successful only if the browser exits
// cleanly and leaves a non-empty file behind.
func (b *BrowserBackend) Export(ctx context.Context, html, outputPath string) error {
	browser, ok := b.lookup(b.candidates)
	if !ok {
		return &UnavailableError{
			Backend: types.BackendChromium,
			Reason:  "no Chromium-based browser CLI found on PATH (tried " + strings.Join(b.candidates, ", ") + ")",
		}
	}
	b.logger.Debug("found browser", zap.String("path", browser))

	// A clean exit is not proof of printing; start from no output file.
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing previous output %s: %w", outputPath, err)
	}

	err := b.runner.RunWithTempFile(ctx, html, ".html", func(tmpPath string) process.Command {
		return process.Command{Name: browser, Args: browserArgs(tmpPath, outputPath, b.goos)}
	})
	if err := subprocessError(types.BackendChromium, err); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil || info.Size() == 0 {
		return &FailedError{Backend: types.BackendChromium, Reason: "headless browser did not produce a PDF file"}
	}
	return nil
}

// browserArgs builds the headless print command line. The sandbox is
// disabled on Linux, where it commonly cannot start inside containers.
func browserArgs(htmlPath, outputPath, goos string) []string {
	args := []string{
		"--headless",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--disable-crash-reporter",
		"--disable-breakpad",
		"--no-first-run",
		"--no-default-browser-check",
		"--allow-file-access-from-files",
		"--disable-features=Translate",
		"--print-to-pdf-no-header",
		"--print-to-pdf=" + outputPath,
	}
	if goos == "linux" {
		args = append(args, "--no-sandbox")
	}
	return append(args, fileURI(htmlPath))
}

// fileURI converts a filesystem path to an absolute file:// URI.
func fileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// subprocessError maps a scoped-run error to the backend error taxonomy.
// Errors that are neither start nor exit failures pass through.
func subprocessError(kind types.BackendKind, err error) error {
	if err == nil {
		return nil
	}

	var startErr *process.StartError
	if errors.As(err, &startErr) {
		return &UnavailableError{Backend: kind, Reason: fmt.Sprintf("could not start %s", startErr.Command), Err: startErr.Err}
	}
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		return &FailedError{Backend: kind, ExitCode: exitErr.Code, Stderr: exitErr.Stderr}
	}
	return err
}
