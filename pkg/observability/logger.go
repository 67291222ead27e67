package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotating log file written under LogConfig.Dir.
const LogFileName = "ledger.log"

// LogConfig controls log level and optional file output.
type LogConfig struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Stdout overrides os.Stdout, for tests.
	Stdout io.Writer
}

// ParseLevel maps debug|info|warn|error to a slog level. Unknown text is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger returns a tint logger on stdout. When cfg.Dir is set the same
// records also go to a lumberjack-rotated file; the returned close func then
// closes it.
func NewLogger(cfg LogConfig) (*slog.Logger, func() error, error) {
	var out io.Writer = os.Stdout
	if cfg.Stdout != nil {
		out = cfg.Stdout
	}

	opts := &tint.Options{
		Level:      ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
	}

	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return slog.New(tint.NewHandler(out, opts)), nil, nil
	}

	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, nil, fmt.Errorf("invalid log rotation: size=%d backups=%d age_days=%d",
			cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	// colour codes would end up in the file
	opts.NoColor = true
	return slog.New(tint.NewHandler(io.MultiWriter(out, file), opts)), file.Close, nil
}
