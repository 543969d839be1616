// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/pdiddy/md-converter/pkg/types"
)

// Page geometry shared by every backend: A4 portrait, 18mm top and
// bottom margins, 16mm left and right.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	marginTopMM    = 18
	marginSideMM   = 16
	mmPerInch      = 25.4

	defaultNativeTimeout = 60 * time.Second
)

// nativeMu serializes native engine runs across the process. It guards the
// engine invocation only; other backends run unlocked.
var nativeMu sync.Mutex

// NativeBackend prints HTML through a headless Chrome engine driven over
// the DevTools protocol.
type NativeBackend struct {
	enabled  bool
	execPath string
	timeout  time.Duration
	logger   *zap.Logger

	// print runs the engine and returns the PDF bytes. Export holds
	// nativeMu for the duration of the call.
	print func(ctx context.Context, html string) ([]byte, error)
}

// NewNativeBackend creates a NativeBackend from cfg. An empty ExecPath lets
// chromedp locate Chrome itself; a zero Timeout uses 60 seconds.
func NewNativeBackend(cfg types.NativeConfig, logger *zap.Logger) *NativeBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultNativeTimeout
	}
	n := &NativeBackend{
		enabled:  cfg.Enabled,
		execPath: cfg.ExecPath,
		timeout:  timeout,
		logger:   logger,
	}
	n.print = n.printChrome
	return n
}

func (n *NativeBackend) Kind() types.BackendKind { return types.BackendNative }

// Export renders html with scripting disabled, prints it to A4 with
// backgrounds, and writes the PDF to outputPath.
func (n *NativeBackend) Export(ctx context.Context, html, outputPath string) error {
	if !n.enabled {
		return &NativeUnavailableError{Reason: "disabled by configuration"}
	}
	if n.execPath != "" {
		if _, err := os.Stat(n.execPath); err != nil {
			return &NativeUnavailableError{Reason: "engine executable not found", Path: n.execPath, Err: err}
		}
	}

	data, err := n.printLocked(ctx, html)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing PDF %s: %w", outputPath, err)
	}
	return nil
}

func (n *NativeBackend) printLocked(ctx context.Context, html string) ([]byte, error) {
	nativeMu.Lock()
	defer nativeMu.Unlock()
	return n.print(ctx, html)
}

func (n *NativeBackend) printChrome(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.DisableGPU)
	if runtime.GOOS == "linux" {
		opts = append(opts, chromedp.NoSandbox)
	}
	if n.execPath != "" {
		opts = append(opts, chromedp.ExecPath(n.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			n.logger.Debug("chromedp: " + fmt.Sprintf(format, args...))
		}))
	defer taskCancel()
	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, n.timeout)
	defer timeoutCancel()

	start := time.Now()
	// The first Run without actions allocates and starts the browser.
	if err := chromedp.Run(taskCtx); err != nil {
		return nil, &LaunchError{Err: err}
	}

	var data []byte
	err := chromedp.Run(taskCtx,
		emulation.SetScriptExecutionDisabled(true),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("reading frame tree: %w", err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			data, _, err = printParams().Do(ctx)
			return err
		}),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("native engine timed out after %s: %w", n.timeout, err)
		}
		return nil, fmt.Errorf("native engine: %w", err)
	}

	n.logger.Debug("native engine printed PDF",
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

// printParams fixes the page setup: A4 portrait, colour backgrounds,
// scaled to the page width, CSS page sizes ignored.
func printParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithLandscape(false).
		WithPaperWidth(a4WidthInches).
		WithPaperHeight(a4HeightInches).
		WithMarginTop(marginTopMM / mmPerInch).
		WithMarginBottom(marginTopMM / mmPerInch).
		WithMarginLeft(marginSideMM / mmPerInch).
		WithMarginRight(marginSideMM / mmPerInch).
		WithScale(1).
		WithPreferCSSPageSize(false).
		WithDisplayHeaderFooter(false)
}
