// Package diag holds the positioned-diagnostic types shared by the lex,
// parse, and transpile packages. A Diagnostic never aborts a phase by
// itself; phases collect them into a List and it is the List that is
// examined for fatal members when deciding whether a compile succeeded.
package diag

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// Severity distinguishes a diagnostic that merely explains unusual input
// from one that makes the surrounding phase's output unusable.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Position is a 1-based line and 0-based column, matching the editor
// convention spec.md's diagnostic format calls for, plus the absolute
// rune offset from the start of the source text.
type Position struct {
	Line   int
	Col    int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Diagnostic is a single positioned message produced by the lexer, parser,
// or transpiler.
type Diagnostic struct {
	Pos      Position
	Message  string
	Severity Severity

	// SourceLine is the full text of the line the diagnostic occurred on,
	// used only for Render. It is optional; a zero value just omits the
	// source-context portion of Render's output.
	SourceLine string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Render produces a multi-line, human-facing rendition of the diagnostic:
// its message, followed by the offending source line word-wrapped to 78
// columns, followed by a caret under the offending column.
func (d Diagnostic) Render() string {
	var sb strings.Builder
	sb.WriteString(d.String())

	if d.SourceLine != "" {
		sb.WriteRune('\n')
		wrapped := rosed.Edit(d.SourceLine).Wrap(78).String()
		sb.WriteString(wrapped)
		sb.WriteRune('\n')
		if d.Pos.Col >= 0 && d.Pos.Col < len(d.SourceLine) {
			sb.WriteString(strings.Repeat(" ", d.Pos.Col))
		}
		sb.WriteString("^")
	}

	return sb.String()
}

// List is an ordered collection of Diagnostics produced by a single phase
// (or a single compile, once phases are merged). It implements error so a
// failed compile can return it directly; callers that only want the
// message text can call Error(), and callers that want structured access
// can range over the List itself.
type List []Diagnostic

// Add appends a new Diagnostic to the list.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// Errorf appends a new Error-severity Diagnostic built from a format
// string.
func (l *List) Errorf(pos Position, format string, args ...interface{}) {
	l.Add(Diagnostic{Pos: pos, Severity: Error, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a new Warning-severity Diagnostic built from a format
// string.
func (l *List) Warnf(pos Position, format string, args ...interface{}) {
	l.Add(Diagnostic{Pos: pos, Severity: Warning, Message: fmt.Sprintf(format, args...)})
}

// HasErrors returns whether any member of the list is Error severity. A
// List containing only warnings is not a compile failure.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Error renders every diagnostic in the list on its own line, satisfying
// the error interface so a List can be returned anywhere an error is
// expected. Returns the empty string if the list is empty.
func (l List) Error() string {
	if len(l) == 0 {
		return ""
	}

	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
