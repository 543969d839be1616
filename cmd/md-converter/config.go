// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/md-converter/internal/journal"
	"github.com/pdiddy/md-converter/internal/pdf"
	"github.com/pdiddy/md-converter/pkg/types"
)

// Configuration keys. Each can be set in the config file or through an
// MD_CONVERTER_ environment variable with dots replaced by underscores,
// e.g. MD_CONVERTER_PDF_NATIVE_EXEC_PATH.
const (
	keyNativeEnabled     = "pdf.native.enabled"
	keyNativeExecPath    = "pdf.native.exec_path"
	keyNativeTimeout     = "pdf.native.timeout"
	keyBrowserCandidates = "pdf.browser.candidates"
	keyWkhtmltopdf       = "pdf.wkhtmltopdf.command"
	keyTempDir           = "pdf.temp_dir"
	keyJournalEnabled    = "journal.enabled"
	keyJournalPath       = "journal.path"
	keyLogLevel          = "log.level"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyNativeEnabled, true)
	v.SetDefault(keyNativeTimeout, 60*time.Second)
	v.SetDefault(keyBrowserCandidates, pdf.DefaultBrowserCandidates)
	v.SetDefault(keyWkhtmltopdf, pdf.DefaultWkhtmltopdfCommand)
	v.SetDefault(keyJournalEnabled, true)
	v.SetDefault(keyLogLevel, "warn")
}

// loadConfig assembles the effective configuration from v.
func loadConfig(v *viper.Viper) types.Config {
	return types.Config{
		PDF: types.PDFConfig{
			Native: types.NativeConfig{
				Enabled:  v.GetBool(keyNativeEnabled),
				ExecPath: v.GetString(keyNativeExecPath),
				Timeout:  v.GetDuration(keyNativeTimeout),
			},
			Browser:     types.BrowserConfig{Candidates: v.GetStringSlice(keyBrowserCandidates)},
			Wkhtmltopdf: types.WkhtmltopdfConfig{Command: v.GetString(keyWkhtmltopdf)},
			TempDir:     v.GetString(keyTempDir),
		},
		Journal: types.JournalConfig{
			Enabled: v.GetBool(keyJournalEnabled),
			Path:    v.GetString(keyJournalPath),
		},
		LogLevel: v.GetString(keyLogLevel),
	}
}

// newLogger builds a console logger on stderr at the named level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel
	return cfg.Build()
}

// openJournal opens the conversion journal when enabled. A journal that
// cannot be opened is logged and skipped so conversions still run.
func openJournal(cfg types.JournalConfig) *journal.Store {
	if !cfg.Enabled {
		return nil
	}
	store, err := journal.Open(cfg.Path)
	if err != nil {
		logger.Warn("conversion journal unavailable", zap.Error(err))
		return nil
	}
	return store
}
