package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Output handles styled terminal output.
type Output struct {
	noColor bool
	stdout  io.Writer
	stderr  io.Writer
}

// NewOutput creates a new Output instance.
func NewOutput() *Output {
	return &Output{stdout: os.Stdout, stderr: os.Stderr}
}

// NewOutputTo creates an Output writing to the given streams.
func NewOutputTo(stdout, stderr io.Writer) *Output {
	return &Output{stdout: stdout, stderr: stderr}
}

// SetNoColor disables colored output.
func (o *Output) SetNoColor(v bool) {
	o.noColor = v
}

// Success prints a success message with a green checkmark.
func (o *Output) Success(format string, args ...any) {
	o.line(o.stdout, successStyle, "✓", "OK", format, args...)
}

// Error prints an error message with a red X.
func (o *Output) Error(format string, args ...any) {
	o.line(o.stderr, errorStyle, "✗", "FAIL", format, args...)
}

// Warning prints a warning message with a yellow exclamation.
func (o *Output) Warning(format string, args ...any) {
	o.line(o.stderr, warningStyle, "!", "WARN", format, args...)
}

// Debug prints a debug message to stderr.
func (o *Output) Debug(format string, args ...any) {
	o.line(o.stderr, debugStyle, "[debug]", "DEBUG", format, args...)
}

func (o *Output) line(w io.Writer, style lipgloss.Style, mark, plain, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(w, "%s %s\n", plain, msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", style.Render(mark), msg)
}

// Info prints an informational message.
func (o *Output) Info(format string, args ...any) {
	fmt.Fprintf(o.stdout, format+"\n", args...)
}

// Println prints a line to stdout.
func (o *Output) Println(format string, args ...any) {
	fmt.Fprintf(o.stdout, format+"\n", args...)
}

// Title prints a section heading.
func (o *Output) Title(text string) {
	if o.noColor {
		fmt.Fprintln(o.stdout, text)
		return
	}
	fmt.Fprintln(o.stdout, titleStyle.Render(text))
}

// Dim prints a de-emphasised line.
func (o *Output) Dim(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintln(o.stdout, msg)
		return
	}
	fmt.Fprintln(o.stdout, dimStyle.Render(msg))
}

// Table prints a simple aligned table.
func (o *Output) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print header
	for i, h := range headers {
		cell := fmt.Sprintf("%-*s", widths[i], h)
		if !o.noColor {
			cell = headerStyle.Render(cell)
		}
		fmt.Fprintf(o.stdout, "%s  ", cell)
	}
	fmt.Fprintln(o.stdout)

	// Print separator
	for i, w := range widths {
		fmt.Fprint(o.stdout, strings.Repeat("-", w))
		if i < len(widths)-1 {
			fmt.Fprint(o.stdout, "  ")
		}
	}
	fmt.Fprintln(o.stdout)

	// Print rows
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(o.stdout, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(o.stdout)
	}
}
