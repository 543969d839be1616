// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/md-converter/internal/convert"
	"github.com/pdiddy/md-converter/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.md>...",
	Short: "Convert Markdown files to PDF, Word, or spreadsheet",
	Long: `Convert reads each Markdown input and writes it in the chosen format.

Without --output the result is written next to the input with the format's
extension. --output is only accepted with a single input. Several inputs are
converted concurrently, at most --jobs at a time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("format", "f", "pdf", "output format: pdf, docx (word), or xlsx (spreadsheet, excel)")
	convertCmd.Flags().StringP("output", "o", "", "output file (single input only)")
	convertCmd.Flags().Int("jobs", 1, "maximum number of conversions to run at once")
	convertCmd.Flags().Bool("progress", false, "print progress percentages to stderr")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	jobs, _ := cmd.Flags().GetInt("jobs")
	showProgress, _ := cmd.Flags().GetBool("progress")

	format, err := types.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if output != "" && len(args) > 1 {
		return fmt.Errorf("--output cannot be used with %d inputs", len(args))
	}

	cfg := loadConfig(viper.GetViper())

	var recorder convert.Recorder
	if store := openJournal(cfg.Journal); store != nil {
		defer store.Close()
		recorder = store
	}
	svc := convert.NewDefaultService(cfg, nil, recorder, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reqs := buildRequests(args, output, format, showProgress, cmd.ErrOrStderr())
	if len(reqs) == 1 {
		return convertOne(ctx, svc, reqs[0], cmd.OutOrStdout())
	}

	result := convert.ConvertBatch(ctx, svc, reqs, jobs, cmd.OutOrStdout())
	if result.HasFailures() {
		return fmt.Errorf("%d of %d conversion(s) failed", result.Failed, result.Total())
	}
	return ctx.Err()
}

func buildRequests(inputs []string, output string, format types.Format, showProgress bool, progressOut io.Writer) []convert.Request {
	reqs := make([]convert.Request, len(inputs))
	for i, in := range inputs {
		out := output
		if out == "" {
			out = convert.DefaultOutputPath(in, format)
		}
		reqs[i] = convert.Request{InputPath: in, OutputPath: out, Format: format}
		if showProgress {
			reqs[i].Progress = progressPrinter(in, progressOut)
		}
	}
	return reqs
}

func progressPrinter(input string, w io.Writer) convert.ProgressFunc {
	return func(p float64) {
		fmt.Fprintln(w, faintStyle.Render(fmt.Sprintf("%s: %3.0f%%", input, p)))
	}
}

func convertOne(ctx context.Context, svc *convert.Service, req convert.Request, w io.Writer) error {
	res, err := svc.Convert(ctx, req)
	printAttempts(w, res.Attempts)
	if err != nil {
		fmt.Fprintf(w, "%s %s\n", failureStyle.Render("failed:"), req.InputPath)
		return err
	}

	fmt.Fprintf(w, "%s %s -> %s%s\n", successStyle.Render("converted:"), req.InputPath, res.OutputPath, resultDetail(res))
	return nil
}

func printAttempts(w io.Writer, attempts []types.Attempt) {
	if len(attempts) < 2 {
		return
	}
	for i, a := range attempts {
		fmt.Fprintf(w, "  %d. %-12s %s\n", i+1, a.Backend, outcomeStyle(a.Outcome).Render(string(a.Outcome)))
	}
}

func resultDetail(res convert.Result) string {
	var parts []string
	if n := len(res.Attempts); n > 0 {
		parts = append(parts, "via "+string(res.Attempts[n-1].Backend))
	}
	if res.Pages > 0 {
		parts = append(parts, fmt.Sprintf("%d page(s)", res.Pages))
	}
	if len(res.Sheets) > 0 {
		parts = append(parts, "sheets: "+strings.Join(res.Sheets, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + faintStyle.Render("("+strings.Join(parts, "; ")+")")
}
