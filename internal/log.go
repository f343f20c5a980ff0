package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogParams contains the parameters for logging console output and errors.
// These will vary depending on whether airsep runs in ticker or tui mode.
// # Ticker mode
// - console output goes to stdout
// - error logs go to stderr
// # TUI mode
// - console output goes to `io.Discard`
// - error logs go to the rotating log file `airsep.log`
// .
type LogParams struct {
	ConsoleOut io.Writer
	ErrorOut   io.Writer
}

// NewRotatingLogFile returns a size-limited log file writer, old files are compressed.
func NewRotatingLogFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // MB
		MaxBackups: 2,
		Compress:   true,
	}
}

// NewLogger creates a JSON slog logger writing to the error output of the given log params.
func NewLogger(params LogParams, level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid log level, using info\n", level)
	}

	out := params.ErrorOut
	if out == nil {
		out = io.Discard
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl}))
}

// discardLogger is used by components constructed without a logger.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
