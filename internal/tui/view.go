package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	labelStyle    = lipgloss.NewStyle().Width(18)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	helpStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("dimveil settings"))
	b.WriteString("  ")
	if m.daemonConnected {
		state := fmt.Sprintf("daemon: connected (style %s", m.daemonStyle)
		if m.daemonOverride {
			state += ", overridden"
		}
		state += ")"
		b.WriteString(connectedStyle.Render(state))
	} else {
		b.WriteString(disconnectedStyle.Render("daemon: not running"))
	}
	b.WriteString("\n\n")

	rows := []struct {
		f     field
		label string
		value string
	}{
		{fieldStyle, "Style", m.cfg.Style},
		{fieldIntensity, "Intensity", fmt.Sprintf("%s %.2f", m.intensityBar.ViewAs(m.cfg.Intensity), m.cfg.Intensity)},
		{fieldColor, "Color", m.renderColor()},
		{fieldBlur, "Blur", fmt.Sprintf("%s %.2f", m.blurBar.ViewAs(m.cfg.BlurAmount), m.cfg.BlurAmount)},
		{fieldMode, "Highlight mode", m.cfg.HighlightMode},
		{fieldAnimation, "Animation", fmt.Sprintf("%.2fs", m.cfg.AnimationDuration)},
		{fieldCornerRadius, "Corner radius", fmt.Sprintf("%dpx", m.cfg.CornerRadius)},
	}

	for _, row := range rows {
		line := labelStyle.Render(row.label) + valueStyle.Render(row.value)
		if row.f == m.selected {
			line = selectedStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.lastError != "" {
		b.WriteString(errorStyle.Render("error: " + m.lastError))
		b.WriteString("\n")
	} else if m.statusMsg != "" {
		b.WriteString(noteStyle.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k navigate · h/l adjust · t toggle · s save · r reload · q quit"))

	return b.String()
}

func (m model) renderColor() string {
	swatch := lipgloss.NewStyle().
		Background(lipgloss.Color(m.cfg.Color)).
		Render("    ")
	return swatch + " " + m.cfg.Color
}
