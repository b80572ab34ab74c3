package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/calendar"
)

type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	flagged lipgloss.Style
	good    lipgloss.Style
	done    lipgloss.Style
	bad     lipgloss.Style
	faded   lipgloss.Style
}

// newStyles picks colors for w; a writer that is not a terminal gets plain
// text.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		flagged: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		good:    r.NewStyle().Foreground(lipgloss.Color("10")),
		done:    r.NewStyle().Foreground(lipgloss.Color("12")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("9")),
		faded:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// status colors a status word by how the user should read it.
func (s styles) status(v string) string {
	switch v {
	case "upcoming", "active", "new", "normal":
		return s.good.Render(v)
	case "completed", "processed":
		return s.done.Render(v)
	case "cancelled", "discontinued", "elevated":
		return s.bad.Render(v)
	default:
		return s.faded.Render(v)
	}
}

func (s styles) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return s.cell
		}).
		String()
}

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// calendar draws the month grid. Days with appointments carry a star.
func (s styles) calendar(v calendar.View) string {
	var b strings.Builder
	b.WriteString(s.title.Render(v.Title))
	b.WriteString("\n")
	for _, d := range weekdays {
		fmt.Fprintf(&b, "%5s", d)
	}
	b.WriteString("\n")
	for _, week := range v.Weeks {
		for _, c := range week {
			switch {
			case c.Blank():
				b.WriteString(strings.Repeat(" ", 5))
			case c.Flagged:
				b.WriteString(s.flagged.Render(fmt.Sprintf("%4d*", c.Day)))
			default:
				fmt.Fprintf(&b, "%4d ", c.Day)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s styles) field(label, value string) string {
	if value == "" {
		value = s.muted.Render("-")
	}
	return fmt.Sprintf("  %-18s %s", label+":", value)
}
