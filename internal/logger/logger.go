// Package logger builds the rs/zerolog logger instance threaded explicitly
// through a compile/run invocation — no package-level globals, per spec.md
// §9 "Global state: None". The teacher's go.mod declares zerolog but its
// code never imports it (charmbracelet/log is used instead); this package
// adopts zerolog as the real logger rather than dropping the dependency.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New builds a logger that writes colorized console output when w is a TTY
// (the same check the teacher's cmd/streamy/apply.go makes with
// golang.org/x/term before deciding whether to colorize its own output),
// and structured JSON otherwise.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	var output io.Writer = w
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
