// Package components provides reusable TUI components.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/mtdock/internal/core/styles"
)

// maxKeyWidth caps the key column so one long binding can't squeeze descriptions.
const maxKeyWidth = 14

// HelpSection groups key bindings under a title.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpDialog lists every enabled binding grouped by section.
type HelpDialog struct {
	title    string
	sections []HelpSection
}

func NewHelpDialog(title string, sections []HelpSection) *HelpDialog {
	return &HelpDialog{title: title, sections: sections}
}

func (h *HelpDialog) keyWidth() int {
	w := 0
	for _, s := range h.sections {
		for _, b := range s.Bindings {
			if b.Enabled() {
				w = max(w, lipgloss.Width(b.Help().Key))
			}
		}
	}
	return min(w+2, maxKeyWidth)
}

func (h *HelpDialog) View() string {
	kw := h.keyWidth()

	var lines []string
	for _, section := range h.sections {
		var rows []string
		for _, b := range section.Bindings {
			if !b.Enabled() {
				continue
			}
			help := b.Help()
			rows = append(rows, styles.HelpKeyStyle.Render(Fit(help.Key, kw))+styles.ValueStyle.Render(help.Desc))
		}
		if len(rows) == 0 {
			continue
		}

		if len(lines) > 0 {
			lines = append(lines, "")
		}
		if section.Title != "" {
			lines = append(lines, styles.HelpSectionStyle.Render(section.Title))
			lines = append(lines, styles.DividerStyle.Render(strings.Repeat("─", kw+16)))
		}
		lines = append(lines, rows...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(h.title),
		"",
		strings.Join(lines, "\n"),
		"",
		styles.ModalHelpStyle.Render("esc/? close"),
	)

	return styles.ModalStyle.Render(content)
}
