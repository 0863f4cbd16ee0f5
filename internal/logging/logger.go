// Package logging provides the leveled console logger used in plain (non-TUI) mode.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Logger writes leveled lines. Info, Success and Debug go to out; Warn and
// Error go to errOut. Colour is decided per writer by lipgloss, so piping
// output to a file yields plain text.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool

	info, success, warn, errStyle, debug lipgloss.Style
}

// New returns a Logger writing to out and errOut.
func New(out, errOut io.Writer, verbose bool) *Logger {
	ro := lipgloss.NewRenderer(out)
	re := lipgloss.NewRenderer(errOut)
	return &Logger{
		out:      out,
		errOut:   errOut,
		verbose:  verbose,
		info:     ro.NewStyle().Bold(true).Foreground(lipgloss.Color("#60A5FA")),
		success:  ro.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E")),
		debug:    ro.NewStyle().Foreground(lipgloss.Color("#22D3EE")),
		warn:     re.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
		errStyle: re.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
	}
}

// Default logs to the process's stdout and stderr.
func Default(verbose bool) *Logger {
	return New(os.Stdout, os.Stderr, verbose)
}

func (l *Logger) line(w io.Writer, st lipgloss.Style, level, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(w, st.Render("["+level+"]")+" "+text+"\n")
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.line(l.out, l.info, "INFO", fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level.
func (l *Logger) Success(format string, args ...interface{}) {
	l.line(l.out, l.success, "SUCCESS", fmt.Sprintf(format, args...))
}

// Warn logs at WARN level to errOut.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line(l.errOut, l.warn, "WARN", fmt.Sprintf(format, args...))
}

// Error logs at ERROR level to errOut.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line(l.errOut, l.errStyle, "ERROR", fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level; a no-op unless verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.line(l.out, l.debug, "DEBUG", fmt.Sprintf(format, args...))
}
