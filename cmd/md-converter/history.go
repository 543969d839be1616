// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/md-converter/internal/journal"
	"github.com/pdiddy/md-converter/pkg/types"
)

const historyTimeLayout = "2006-01-02 15:04:05"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions from the journal",
	Long: `History lists recorded conversions, newest first, with their status and,
for PDFs, the backend that produced the file. Use --json or --yaml to export
the matching entries including every backend attempt.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("format", "", "only show conversions to this format")
	historyCmd.Flags().String("status", "", "only show conversions with this status: succeeded or failed")
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().Bool("json", false, "output entries as JSON")
	historyCmd.Flags().Bool("yaml", false, "output entries as YAML")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	opts, err := listOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asJSON && asYAML {
		return fmt.Errorf("--json and --yaml are mutually exclusive")
	}

	cfg := loadConfig(viper.GetViper())
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	w := cmd.OutOrStdout()
	switch {
	case asJSON:
		return store.ExportJSON(ctx, w, opts)
	case asYAML:
		return store.ExportYAML(ctx, w, opts)
	}

	entries, err := store.List(ctx, opts)
	if err != nil {
		return err
	}
	printHistory(w, entries)
	return nil
}

func listOptionsFromFlags(cmd *cobra.Command) (journal.ListOptions, error) {
	formatName, _ := cmd.Flags().GetString("format")
	status, _ := cmd.Flags().GetString("status")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := journal.ListOptions{Limit: limit}
	if formatName != "" {
		f, err := types.ParseFormat(formatName)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	switch journal.Status(status) {
	case "", journal.StatusSucceeded, journal.StatusFailed:
		opts.Status = journal.Status(status)
	default:
		return opts, fmt.Errorf("unknown status %q: use succeeded or failed", status)
	}
	return opts, nil
}

func printHistory(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-19s  %-4s  %-9s  %-30s  %s",
		"Started", "Fmt", "Status", "Input", "Detail")))
	for _, e := range entries {
		status := successStyle.Render(fmt.Sprintf("%-9s", e.Status))
		if e.Status == journal.StatusFailed {
			status = failureStyle.Render(fmt.Sprintf("%-9s", e.Status))
		}
		fmt.Fprintf(w, "%-19s  %-4s  %s  %s  %s\n",
			e.StartedAt.Local().Format(historyTimeLayout),
			e.Format,
			status,
			runewidth.FillRight(runewidth.Truncate(e.InputPath, 30, "..."), 30),
			entryDetail(e))
	}
	fmt.Fprintf(w, "\n%d conversion(s)\n", len(entries))
}

func entryDetail(e journal.Entry) string {
	if e.Status == journal.StatusFailed {
		msg, _, _ := strings.Cut(e.Error, "\n")
		return msg
	}
	var parts []string
	if n := len(e.Attempts); n > 0 {
		parts = append(parts, "via "+string(e.Attempts[n-1].Backend))
	}
	if e.Pages > 0 {
		parts = append(parts, fmt.Sprintf("%d page(s)", e.Pages))
	}
	if len(e.Sheets) > 0 {
		parts = append(parts, strings.Join(e.Sheets, ", "))
	}
	parts = append(parts, e.Duration().Round(time.Millisecond).String())
	return strings.Join(parts, "; ")
}
