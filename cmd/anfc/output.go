package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/lhaig/anfc/internal/diagnostic"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgBlue)
	hintColor    = color.New(color.FgCyan)
	okColor      = color.New(color.FgGreen)
)

func setupColor(cfg *config) {
	if cfg.noColor {
		color.NoColor = true
	}
}

func newLogger(cfg *config) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg.noColor}
	return zerolog.New(out).Level(cfg.logLevel).With().Timestamp().Logger()
}

func severityColor(s diagnostic.Severity) *color.Color {
	switch s {
	case diagnostic.Error:
		return errorColor
	case diagnostic.Warning:
		return warningColor
	}
	return infoColor
}

// printDiagnostics writes diag sorted by position, one line per message
// plus an indented hint line where there is one.
func printDiagnostics(w io.Writer, file string, diag *diagnostic.Diagnostics) {
	if diag == nil {
		return
	}
	for _, d := range diag.Sorted() {
		name := file
		if d.File != "" {
			name = d.File
		}
		fmt.Fprintf(w, "%s[%s:%d:%d]: %s\n", severityColor(d.Severity).Sprint(d.Severity), name, d.Line, d.Column, d.Message)
		if d.Hint != "" {
			fmt.Fprintf(w, "  %s %s\n", hintColor.Sprint("hint:"), d.Hint)
		}
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprint("Error:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}

// internalFailure reports a broken compiler contract and exits with 2.
func internalFailure(err error) {
	fmt.Fprintf(os.Stderr, "%s %+v\n", errorColor.Sprint("internal error:"), err)
	os.Exit(2)
}
