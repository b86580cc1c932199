package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Beastwick18/nyaa/internal/combo"
	"github.com/Beastwick18/nyaa/internal/keymap"
	"github.com/Beastwick18/nyaa/internal/results"
)

var (
	// Adaptive colors for light/dark terminal backgrounds
	accentColor = lipgloss.AdaptiveColor{Light: "#D6249F", Dark: "#FF79C6"}
	greenColor  = lipgloss.AdaptiveColor{Light: "#116620", Dark: "#50FA7B"}
	yellowColor = lipgloss.AdaptiveColor{Light: "#7D5A00", Dark: "#F1FA8C"}
	redColor    = lipgloss.AdaptiveColor{Light: "#B31D28", Dark: "#FF5555"}
	dimColor    = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#6272A4"}
	hlBgColor   = lipgloss.AdaptiveColor{Light: "#E8E8E8", Dark: "#333333"}
	cyanColor   = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#8BE9FD"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			PaddingLeft(1)

	headerStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			PaddingLeft(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	selectedRowStyle = lipgloss.NewStyle().
				Background(hlBgColor)

	seedersStyle = lipgloss.NewStyle().
			Foreground(greenColor)

	leechersStyle = lipgloss.NewStyle().
			Foreground(redColor)

	markStyle = lipgloss.NewStyle().
			Foreground(yellowColor).
			Bold(true)

	downloadedStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	modeStyle = lipgloss.NewStyle().
			Foreground(cyanColor).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(redColor).
			Bold(true)

	inputLabelStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimColor).
			Padding(0, 1)

	popupTitleStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(yellowColor).
			Bold(true)
)

// pad right-pads s to width with spaces (based on visual width, not byte count).
func pad(s string, width int) string {
	visual := lipgloss.Width(s)
	if visual >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visual)
}

// padLeft left-pads s to width.
func padLeft(s string, width int) string {
	visual := lipgloss.Width(s)
	if visual >= width {
		return s
	}
	return strings.Repeat(" ", width-visual) + s
}

// truncate shortens s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// Title
	order := "↓"
	if m.reverse {
		order = "↑"
	}
	b.WriteString(titleStyle.Render("nyaa"))
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d/%d  sort: %s %s", len(m.filtered), len(m.items), m.sortKey, order)))
	if m.category != "" {
		b.WriteString(headerStyle.Render("category: " + m.category))
	}
	if m.client != nil {
		b.WriteString(headerStyle.Render("client: " + m.client.Name()))
	}
	b.WriteString("\n")

	// Search line
	if m.mode == keymap.Search || m.query != "" {
		b.WriteString(inputLabelStyle.Render(" / "))
		if m.mode == keymap.Search {
			b.WriteString(m.input.View())
		} else {
			b.WriteString(m.query)
		}
	}
	b.WriteString("\n")

	m.renderList(&b)

	switch {
	case m.mode == keymap.Category:
		m.renderMenu(&b, "Category", m.categoryLabels())
	case m.mode == keymap.Sort:
		m.renderMenu(&b, "Sort by", sortLabels())
	case m.mode == keymap.Clients:
		m.renderMenu(&b, "Client", m.clientLabels())
	case m.mode == keymap.Help:
		m.renderHelp(&b)
	case m.last.Status == combo.Pending && len(m.last.Hints) > 0:
		renderHints(&b, m.last.Hints)
	}

	m.renderStatus(&b)
	return b.String()
}

func (m Model) renderList(b *strings.Builder) {
	if len(m.filtered) == 0 {
		b.WriteString("  No results.\n")
		return
	}

	const (
		wSize  = 10
		wCount = 6
		wDate  = 10
	)
	width := m.width
	if width <= 0 {
		width = 100
	}
	wTitle := max(10, width-4-2-wSize-3*wCount-wDate-10)

	header := "    " + pad("TITLE", wTitle) + "  " + padLeft("SIZE", wSize) + "  " +
		padLeft("SE", wCount) + " " + padLeft("LE", wCount) + " " + padLeft("DL", wCount) + "  " + pad("DATE", wDate)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	maxVis := m.maxVisibleRows()
	end := min(len(m.filtered), m.scroll+maxVis)
	for i := m.scroll; i < end; i++ {
		it := m.filtered[i]

		flag := " "
		switch {
		case m.marked[it.Link]:
			flag = markStyle.Render("*")
		case m.downloaded[it.Link]:
			flag = downloadedStyle.Render("✓")
		}

		date := ""
		if !it.Date.IsZero() {
			date = it.Date.Format("2006-01-02")
		}
		row := flag + " " + pad(truncate(it.Title, wTitle), wTitle) + "  " +
			padLeft(it.Size.String(), wSize) + "  " +
			padLeft(seedersStyle.Render(fmt.Sprint(it.Seeders)), wCount) + " " +
			padLeft(leechersStyle.Render(fmt.Sprint(it.Leechers)), wCount) + " " +
			padLeft(fmt.Sprint(it.Downloads), wCount) + "  " + date

		if i == m.cursor {
			b.WriteString(cursorStyle.Render(" >"))
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString("  ")
			b.WriteString(row)
		}
		b.WriteString("\n")
	}
}

func (m Model) categoryLabels() []string {
	opts := m.categoryOptions()
	labels := make([]string, len(opts))
	for i, c := range opts {
		if c == "" {
			c = "All categories"
		}
		labels[i] = c
	}
	return labels
}

func sortLabels() []string {
	var labels []string
	for _, k := range results.SortKeys() {
		labels = append(labels, k.String())
	}
	return labels
}

func (m Model) clientLabels() []string {
	labels := make([]string, len(m.clients))
	for i, c := range m.clients {
		labels[i] = c.Name()
	}
	return labels
}

func (m Model) renderMenu(b *strings.Builder, title string, labels []string) {
	var inner strings.Builder
	inner.WriteString(popupTitleStyle.Render(title))
	for i, l := range labels {
		inner.WriteString("\n")
		if i == m.menuCursor {
			inner.WriteString(cursorStyle.Render("> ") + l)
		} else {
			inner.WriteString("  " + l)
		}
	}
	b.WriteString(popupStyle.Render(inner.String()))
	b.WriteString("\n")
}

// renderHints draws the which-key popup for a pending combo.
func renderHints(b *strings.Builder, hints []combo.Hint) {
	width := 0
	for _, h := range hints {
		width = max(width, lipgloss.Width(h.Keys.String()))
	}
	var inner strings.Builder
	for i, h := range hints {
		if i > 0 {
			inner.WriteString("\n")
		}
		inner.WriteString(hintKeyStyle.Render(pad(h.Keys.String(), width)))
		inner.WriteString("  ")
		inner.WriteString(h.Label)
	}
	b.WriteString(popupStyle.Render(inner.String()))
	b.WriteString("\n")
}

func (m Model) renderHelp(b *strings.Builder) {
	entries := m.bindings.Keymap(m.prevMode, keymap.Normal).Entries()
	width := 0
	for _, e := range entries {
		width = max(width, lipgloss.Width(e.Keys.String()))
	}
	var inner strings.Builder
	inner.WriteString(popupTitleStyle.Render("Keys: " + m.prevMode.String()))
	for _, e := range entries {
		inner.WriteString("\n")
		inner.WriteString(hintKeyStyle.Render(pad(e.Keys.String(), width)))
		inner.WriteString("  ")
		inner.WriteString(e.Spec.Label(Describe))
	}
	b.WriteString(popupStyle.Render(inner.String()))
	b.WriteString("\n")
}

// renderStatus draws the bottom line: mode, combo colored by status, and the
// latest message or error.
func (m Model) renderStatus(b *strings.Builder) {
	b.WriteString(" ")
	b.WriteString(modeStyle.Render(strings.ToUpper(m.mode.String())))
	if m.last.Combo != "" {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(m.last.Status.Color()).Render(m.last.Combo))
	}
	if n := len(m.marked); n > 0 {
		b.WriteString(markStyle.Render(fmt.Sprintf("  %d marked", n)))
	}
	switch {
	case m.err != nil:
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.message != "":
		b.WriteString(helpStyle.Render(m.message))
	default:
		b.WriteString(helpStyle.Render("? help  q quit"))
	}
	b.WriteString("\n")
}
