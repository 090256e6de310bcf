package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/autoiface/internal/errors"
	"github.com/toyz/autoiface/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	out       io.Writer
	verbose   bool
	useColors bool
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		out:       os.Stderr,
		verbose:   verbose,
		useColors: !color.NoColor,
	}
}

// SetOutput redirects the reporter and disables colors
func (r *DiagnosticReporter) SetOutput(out io.Writer) {
	r.out = out
	r.useColors = false
}

// ReportDiagnostic prints a collected front-end or merge diagnostic
func (r *DiagnosticReporter) ReportDiagnostic(d models.Diagnostic) {
	mark := "!"
	attr := color.FgYellow
	switch d.Severity {
	case models.SeverityError:
		mark, attr = "x", color.FgRed
	case models.SeverityInfo:
		mark, attr = "i", color.FgBlue
	}
	fmt.Fprintf(r.out, "%s %s\n", r.paint(attr, mark), d.String())
}

// ReportError provides comprehensive error reporting. Collected errors are
// reported one after another.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *errors.MultipleErrors
	if errors.As(err, &multi) && multi.Count() > 1 {
		fmt.Fprintf(r.out, "\n%s\n\n", r.paint(color.FgRed, fmt.Sprintf("ERROR: %d problems", multi.Count())))
		for i, e := range multi.Errors {
			fmt.Fprintf(r.out, "%d) ", i+1)
			r.reportCoded(e)
		}
		return
	}

	fmt.Fprintf(r.out, "\n%s\n", r.paint(color.FgRed, "ERROR"))
	var coded errors.CodedError
	if errors.As(err, &coded) {
		r.reportCoded(coded)
		if r.verbose {
			r.printStack(err)
		}
		return
	}

	fmt.Fprintf(r.out, "Message: %s\n", err.Error())
	r.printSuggestions(errors.GetAllHints(err))
	if r.verbose {
		r.printStack(err)
	}
	fmt.Fprintln(r.out)
}

// reportCoded reports a coded error with its location, context and hints
func (r *DiagnosticReporter) reportCoded(err errors.CodedError) {
	fmt.Fprintf(r.out, "Type: %s\n", err.ErrorCode())
	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", loc)
	}
	fmt.Fprintf(r.out, "Message: %s\n", err.Error())

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	r.printSuggestions(err.Suggestions())
	fmt.Fprintln(r.out)
}

// printContext prints context information sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions, skipping repeats
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	seen := make(map[string]bool)
	fmt.Fprintf(r.out, "Suggestions:\n")
	n := 0
	for _, s := range suggestions {
		if seen[s] {
			continue
		}
		seen[s] = true
		n++
		lines := strings.Split(s, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", n, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
}

// printStack prints the full chain with stack traces in verbose mode
func (r *DiagnosticReporter) printStack(err error) {
	fmt.Fprintf(r.out, "Verbose Debug Information:\n%s\n", errors.StackTrace(err))
}

func (r *DiagnosticReporter) paint(attr color.Attribute, text string) string {
	if !r.useColors {
		return text
	}
	c := color.New(attr, color.Bold)
	c.EnableColor()
	return c.Sprint(text)
}
