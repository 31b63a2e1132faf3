// Package goldmark renders characters and universe listings as ANSI-styled
// terminal output. Generated descriptions are parsed as markdown with
// goldmark and styled with lipgloss.
package goldmark

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/multiverse"
)

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width.
func Render(source string, width int, theme multiverse.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme).render([]byte(source), width)
}

// RenderCharacter renders c as a card: a heading naming the universe, one
// line per detail labelled with its field, the description, and a muted
// footer with the model, token usage and save location.
func RenderCharacter(c multiverse.Character, width int, theme multiverse.Theme) string {
	if width <= 0 {
		width = defaultWidth
	}
	s := newStyles(theme)

	var b strings.Builder
	b.WriteString(s.heading.Render(strings.ToUpper(c.Universe) + " CHARACTER"))
	b.WriteString("\n")

	fields := fieldNames(c.Universe, len(c.Details))
	for i, d := range c.Details {
		b.WriteString(s.field.Render(fields[i]+":") + " " + d + "\n")
	}
	b.WriteString("\n")
	b.WriteString(Render(c.Text, width, theme))
	b.WriteString("\n")

	var footer []string
	if c.Model != "" {
		footer = append(footer, c.Model)
	}
	if total := c.Usage.Total(); total > 0 {
		footer = append(footer, strconv.Itoa(total)+" tokens")
	}
	if c.StopReason == multiverse.StopLength {
		footer = append(footer, "truncated at max length")
	}
	if len(footer) > 0 {
		b.WriteString("\n" + s.muted.Render(strings.Join(footer, " · ")) + "\n")
	}
	if c.Path != "" {
		b.WriteString(s.success.Render("saved to "+c.Path) + "\n")
	}
	return b.String()
}

// fieldNames returns the universe's field labels, falling back to numbered
// labels for unknown universes or mismatched counts.
func fieldNames(universe string, n int) []string {
	if u, err := multiverse.LookupUniverse(universe); err == nil && len(u.Fields) == n {
		return u.Fields
	}
	names := make([]string, n)
	for i := range names {
		names[i] = "Detail " + strconv.Itoa(i+1)
	}
	return names
}

// RenderUniverses renders one line per universe: its id and field names.
func RenderUniverses(universes []multiverse.Universe, theme multiverse.Theme) string {
	s := newStyles(theme)
	idWidth := 0
	for _, u := range universes {
		idWidth = max(idWidth, lipgloss.Width(u.ID))
	}
	var b strings.Builder
	for _, u := range universes {
		id := u.ID + strings.Repeat(" ", idWidth-lipgloss.Width(u.ID))
		b.WriteString(s.heading.Render(id) + "  " + s.muted.Render(strings.Join(u.Fields, ", ")) + "\n")
	}
	return b.String()
}

// RenderUniverse renders the fields of u with their example values and the
// command that generates an example character.
func RenderUniverse(u multiverse.Universe, theme multiverse.Theme) string {
	s := newStyles(theme)
	var b strings.Builder
	b.WriteString(s.heading.Render(u.ID) + "\n")
	for i, f := range u.Fields {
		fmt.Fprintf(&b, "  %d. %s %s\n", i+1, s.field.Render(f), s.muted.Render("(e.g. "+u.Examples[i]+")"))
	}
	quoted := make([]string, len(u.Examples))
	for i, ex := range u.Examples {
		quoted[i] = strconv.Quote(ex)
	}
	b.WriteString("\n" + s.accent.Render("multiverse "+u.ID+" "+strings.Join(quoted, " ")) + "\n")
	return b.String()
}

// RenderSummary renders batch counts, coloring failures when there are any.
func RenderSummary(sum multiverse.BatchSummary, theme multiverse.Theme) string {
	s := newStyles(theme)
	ok := s.success.Render(fmt.Sprintf("%d succeeded", sum.Succeeded))
	failed := fmt.Sprintf("%d failed", sum.Failed)
	if sum.Failed > 0 {
		failed = s.err.Render(failed)
	} else {
		failed = s.muted.Render(failed)
	}
	return fmt.Sprintf("%d requests: %s, %s", sum.Total, ok, failed)
}

// RenderError renders err in the theme's error color.
func RenderError(err error, theme multiverse.Theme) string {
	return newStyles(theme).err.Render(err.Error())
}

type styles struct {
	heading lipgloss.Style
	field   lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
	success lipgloss.Style
	accent  lipgloss.Style
}

func newStyles(theme multiverse.Theme) styles {
	return styles{
		heading: lipgloss.NewStyle().Foreground(ansiColor(theme.Heading)).Bold(true),
		field:   lipgloss.NewStyle().Foreground(ansiColor(theme.Field)).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		err:     lipgloss.NewStyle().Foreground(ansiColor(theme.Error)),
		success: lipgloss.NewStyle().Foreground(ansiColor(theme.Success)),
		accent:  lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
