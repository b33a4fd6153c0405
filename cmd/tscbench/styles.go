package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Bold(true)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	sectionStyle = lipgloss.NewStyle().MarginTop(1).Foreground(lipgloss.Color("86")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // Yellow
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))  // Green
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // Red
	boxStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// field is one label/value line of a report.
type field struct {
	label string
	value string
}

// renderFields lines up labels in a column.
func renderFields(fields []field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.label))
	}
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("\n")
		}
		label := labelStyle.Render(f.label + ":" + strings.Repeat(" ", width-len(f.label)))
		b.WriteString(label + " " + valueStyle.Render(f.value))
	}
	return b.String()
}

func printReport(w io.Writer, title string, fields []field) {
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, boxStyle.Render(renderFields(fields)))
}

func yesNo(ok bool) string {
	if ok {
		return goodStyle.Render("yes")
	}
	return badStyle.Render("no")
}

func ticks(v uint64) string {
	return fmt.Sprintf("%d ticks", v)
}
