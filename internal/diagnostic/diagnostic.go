package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a single user-facing message tied to a source position.
type Diagnostic struct {
	Severity Severity
	Message  string
	Line     int
	Column   int
	File     string // optional; overrides the name passed to Format
	Hint     string // optional suggestion
}

// Render formats the diagnostic as severity[file:line:col]: message,
// followed by an indented hint line when one is set.
func (d Diagnostic) Render(filename string) string {
	if d.File != "" {
		filename = d.File
	}
	s := fmt.Sprintf("%s[%s:%d:%d]: %s", d.Severity, filename, d.Line, d.Column, d.Message)
	if d.Hint != "" {
		s += "\n  hint: " + d.Hint
	}
	return s
}

// Diagnostics collects the messages reported by one phase over one unit.
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) add(sev Severity, line, col int, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: sev,
		Message:  msg,
		Line:     line,
		Column:   col,
		Hint:     hint,
	})
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(line, col int, format string, args ...interface{}) {
	d.add(Error, line, col, fmt.Sprintf(format, args...), "")
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(line, col int, format string, args ...interface{}) {
	d.add(Warning, line, col, fmt.Sprintf(format, args...), "")
}

// Infof adds an info diagnostic with formatted message
func (d *Diagnostics) Infof(line, col int, format string, args ...interface{}) {
	d.add(Info, line, col, fmt.Sprintf(format, args...), "")
}

// ErrorWithHint adds an error diagnostic carrying a suggestion
func (d *Diagnostics) ErrorWithHint(line, col int, msg, hint string) {
	d.add(Error, line, col, msg, hint)
}

// WarningWithHint adds a warning diagnostic carrying a suggestion
func (d *Diagnostics) WarningWithHint(line, col int, msg, hint string) {
	d.add(Warning, line, col, msg, hint)
}

// Merge appends every diagnostic of other, stamping file on those that
// have none.
func (d *Diagnostics) Merge(file string, other *Diagnostics) {
	if other == nil {
		return
	}
	for _, item := range other.items {
		if item.File == "" {
			item.File = file
		}
		d.items = append(d.items, item)
	}
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	return d.count(Error) > 0
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	var errs []Diagnostic
	for _, item := range d.items {
		if item.Severity == Error {
			errs = append(errs, item)
		}
	}
	return errs
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Sorted returns the diagnostics ordered by file, then position. Reports
// at the same position keep their insertion order.
func (d *Diagnostics) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(d.items))
	copy(out, d.items)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	return d.count(Error)
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	return d.count(Warning)
}

func (d *Diagnostics) count(sev Severity) int {
	n := 0
	for _, item := range d.items {
		if item.Severity == sev {
			n++
		}
	}
	return n
}

// Format returns human-readable messages, one per line:
//
//	error[filename:3:10]: unbound name 'x'
//	  hint: did you mean 'y'?
//	warning[filename:5:1]: rule is unreachable
func (d *Diagnostics) Format(filename string) string {
	lines := make([]string, len(d.items))
	for i, item := range d.items {
		lines[i] = item.Render(filename)
	}
	return strings.Join(lines, "\n")
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = nil
}
