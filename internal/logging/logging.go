package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/amosWeiskopf/seoscout/internal/config"
)

// New builds the logger shared by every pipeline stage.
func New(cfg config.LoggingConfig, w io.Writer) (*log.Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level %q: %w", cfg.Level, err)
	}

	opts := log.Options{
		Level:           level,
		ReportTimestamp: true,
	}
	switch cfg.Format {
	case "json":
		opts.Formatter = log.JSONFormatter
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		opts.Formatter = log.TextFormatter
	}

	return log.NewWithOptions(w, opts), nil
}

// Discard returns a logger that writes nowhere, for tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
