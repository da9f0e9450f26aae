package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

const (
	heroTitle   = "✨ Quote Generator (with translation)"
	heroTagline = "Inspiring quotations from public figures, each with a Chinese translation."
	minWidth    = 40
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	helperStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	buttonStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 2)
	quoteStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("39")).Padding(0, 1)
	successStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("42")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func (m *model) View() string {
	parts := []string{
		titleStyle.Render(heroTitle),
		helperStyle.Render(heroTagline),
		m.selectorView(),
		buttonStyle.Render("🎲 Generate & translate (g)"),
	}
	if m.busy {
		parts = append(parts, helperStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), m.busyLabel)))
	}
	if m.notice != "" {
		parts = append(parts, errorStyle.Render(m.notice))
	}
	parts = append(parts, headerStyle.Render("💡 Original Quote"), quoteStyle.Render(m.wrap(quoted(m.state.Quotation))))
	if m.state.Translation != "" {
		parts = append(parts, headerStyle.Render("🏮 Chinese Translation"), successStyle.Render(m.wrapCJK(quoted(m.state.Translation))))
	}
	parts = append(parts, helperStyle.Render(m.caption()), helperStyle.Render("↑/↓ choose · enter select · g generate · q quit"))
	return strings.Join(parts, "\n\n") + "\n"
}

func (m *model) selectorView() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Choose a subject"))
	nameWidth := m.innerWidth() - 4
	for i, s := range m.config.Subjects.All() {
		b.WriteString("\n")
		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		mark := "○ "
		if m.state.Selected && m.state.Subject == s {
			mark = "● "
		}
		b.WriteString(pointer + mark + runewidth.Truncate(s.Name, nameWidth, "…"))
	}
	return b.String()
}

func (m *model) caption() string {
	name := "-"
	if m.state.Selected {
		name = m.state.Subject.Name
	}
	engine := m.config.Engine
	if engine == "" {
		engine = "unknown"
	}
	return fmt.Sprintf("Source: %s (%s) | Translation engine: %s", m.config.DataSource, name, engine)
}

func (m *model) innerWidth() int {
	w := m.width - 4
	if w < minWidth {
		w = minWidth
	}
	return w
}

func (m *model) wrap(s string) string {
	return wordwrap.String(s, m.innerWidth())
}

// wrapCJK hard-wraps on display width since CJK text has no spaces to break on.
func (m *model) wrapCJK(s string) string {
	return runewidth.Wrap(s, m.innerWidth())
}

func quoted(s string) string {
	return "“ " + s + " ”"
}
