// Package output renders CLI results as terminal tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Mode selects how results are written.
type Mode string

// Output modes.
const (
	ModeAuto  Mode = "auto"
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModeYAML  Mode = "yaml"
)

// Styles holds the lipgloss styles used for table output.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is false.
func NewStyles(color bool) *Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return &Styles{
			Header: plain, Success: plain, Error: plain,
			Warning: plain, Info: plain, Muted: plain,
		}
	}
	return &Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a Renderer. ModeAuto becomes ModeTable when w is a
// terminal and ModeJSON otherwise.
func NewRenderer(w, errW io.Writer, mode Mode) *Renderer {
	tty := IsTerminal(w)
	if mode == ModeAuto || mode == "" {
		mode = ModeJSON
		if tty {
			mode = ModeTable
		}
	}
	return &Renderer{
		w:      w,
		errW:   errW,
		mode:   mode,
		styles: NewStyles(tty && mode == ModeTable),
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// Mode returns the resolved output mode.
func (r *Renderer) Mode() Mode { return r.mode }

// Styles returns the styles for table output.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.w }

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errW }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// Errorf writes a styled error line to the error writer.
func (r *Renderer) Errorf(format string, a ...any) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Error.Render(fmt.Sprintf(format, a...)))
}
