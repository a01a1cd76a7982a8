package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"backoffice/pkg/notify"
)

// Styles used by the renderer.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Border  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Label:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Faint(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("#22C55E")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		Header:  r.NewStyle().Bold(true).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		Border:  r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Renderer writes pages and notifications to one output.
type Renderer struct {
	out    io.Writer
	styles Styles
}

// NewRenderer detects the color profile of out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out, styles: newStyles(lipgloss.NewRenderer(out))}
}

// Notification prints one toast line.
func (r *Renderer) Notification(n notify.Notification) {
	style := r.styles.Success
	mark := "✓"
	if n.Level == notify.Error {
		style = r.styles.Error
		mark = "✗"
	}
	fmt.Fprintln(r.out, style.Render(mark+" "+n.Message))
}

func (r *Renderer) Title(text string) {
	fmt.Fprintln(r.out, r.styles.Title.Render(text))
}

// Muted prints secondary text such as empty-state hints.
func (r *Renderer) Muted(text string) {
	fmt.Fprintln(r.out, r.styles.Muted.Render(text))
}

// Table prints rows under headers.
func (r *Renderer) Table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.styles.Header
			}
			return r.styles.Cell
		})
	fmt.Fprintln(r.out, t.String())
}

// Field is one labelled value of a detail view.
type Field struct {
	Label string
	Value string
}

// Fields prints aligned label/value pairs.
func (r *Renderer) Fields(fields []Field) {
	width := 0
	for _, f := range fields {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}
	for _, f := range fields {
		label := r.styles.Label.Render(f.Label + ":" + strings.Repeat(" ", width-len(f.Label)))
		fmt.Fprintln(r.out, label+" "+f.Value)
	}
}
