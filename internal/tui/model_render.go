package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/mtdock/internal/core/styles"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/tui/components"
)

const (
	editorHeight = 5
	minPaneWidth = 20
)

// layout sizes the inner components for the current window.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	// header + tabs + comments + help, plus borders for article and editor.
	chrome := 1 + 1 + 1 + 1 + 4
	body := max(m.height-chrome-editorHeight, 6)

	m.article.Width = max(m.width-4, 10)
	m.article.Height = max(body/3, 3)

	m.editor.SetWidth(max(m.width-4, 10))
	m.editor.SetHeight(editorHeight)
	m.comments.Width = max(m.width-6, 10)

	m.help.Width = m.width
	m.queue.SetSize(m.width, m.height-4)
}

// paneHeight is the text height available to each provider pane.
func (m Model) paneHeight() int {
	chrome := 1 + 1 + 1 + 1 + 4 + 2
	return max(m.height-chrome-editorHeight-m.article.Height, 3)
}

// renderArticle renders the original article as markdown.
func renderArticle(a translation.Article, width int) string {
	out, err := styles.RenderMarkdown(a.Markdown(), width-2)
	if err != nil {
		return a.Body()
	}
	return out
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var main string
	switch m.view {
	case viewQueue:
		main = m.queue.View()
	default:
		main = m.dashboardView()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.tabsView(),
		main,
		m.statusView(),
	)

	switch {
	case m.confirm != nil:
		return components.Center(m.confirm.View(), m.width, m.height)
	case m.showHelp:
		dialog := components.NewHelpDialog("mtdock keys", m.keys.helpSections())
		return components.Center(dialog.View(), m.width, m.height)
	}

	return m.toastView.Overlay(content, m.width, m.height)
}

func (m Model) headerView() string {
	from, to := m.cursor.Languages()

	state := navigatorStateLabel(m.navigating)
	if m.navigating {
		state = m.spinner.View() + " " + state
	}

	index := styles.HeaderIndexStyle.Render(fmt.Sprintf("#%d", m.position))
	line := fmt.Sprintf("%s  %s → %s  %s", index, from, to, state)

	return styles.HeaderStyle.Width(max(m.width, lipgloss.Width(line))).Render(line)
}

func navigatorStateLabel(navigating bool) string {
	if navigating {
		return "navigating"
	}
	return "idle"
}

func (m Model) tabsView() string {
	tab := func(label string, active bool) string {
		if active {
			return styles.ViewSelectedStyle.Render(label)
		}
		return styles.ViewNormalStyle.Render(label)
	}
	return tab("Review", m.view == viewDashboard) + "  " + tab("Queue", m.view == viewQueue)
}

func (m Model) dashboardView() string {
	article := styles.PaneStyle.Render(
		styles.PaneTitleStyle.Render("Original") + "\n" + m.article.View(),
	)

	editorStyle := styles.PaneStyle
	if m.input == inputEditor {
		editorStyle = styles.PaneFocusedStyle
	}
	editor := editorStyle.Render(
		styles.PaneTitleStyle.Render("Base translation") + "\n" + m.editor.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		article,
		m.providersView(),
		editor,
		m.comments.View(),
	)
}

func (m Model) providersView() string {
	if len(m.providers) == 0 {
		return ""
	}

	width := max(m.width/len(m.providers)-4, minPaneWidth)
	height := m.paneHeight()

	panes := make([]string, 0, len(m.providers))
	for i, p := range m.providers {
		style := styles.PaneStyle
		if i == m.focused {
			style = styles.PaneFocusedStyle
		}
		panes = append(panes, style.Width(width).Render(m.providerPane(p, width, height)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m Model) providerPane(p translation.Provider, width, height int) string {
	title := styles.PaneTitleStyle.Render(strings.ToUpper(p.Name))
	if p.Name == m.winner {
		title += " " + styles.PaneWinnerStyle.Render("✓")
	}
	title += "  " + renderRating(m.ratings[p.Name])

	r, ok := m.results[p.Name]
	var body string
	switch {
	case !ok:
		body = styles.PaneEmptyStyle.Render("—")
	case r.NoMore():
		body = styles.PaneEmptyStyle.Render("no more")
	case r.Err != nil:
		body = styles.PaneErrorStyle.Render(truncateLine(r.Err.Error(), width))
	case !r.Found():
		body = styles.PaneEmptyStyle.Render("no result")
	default:
		body = clampLines(lipgloss.NewStyle().Width(width).Render(r.Candidate.Body()), height)
	}

	return title + "\n" + body
}

func renderRating(n int) string {
	return styles.RatingOnStyle.Render(strings.Repeat("★", n)) +
		styles.RatingOffStyle.Render(strings.Repeat("☆", translation.MaxRating-n))
}

func (m Model) statusView() string {
	if m.input != inputNone {
		return styles.HelpStyle.Render("esc done editing")
	}
	if m.view == viewQueue {
		return styles.HelpStyle.Render("r reload • x remove • Q/esc back • ? help")
	}
	return m.help.View(m.keys)
}

func clampLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n-1], "\n") + "\n…"
}

func truncateLine(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:max(width-1, 0)]
	}
	return string(r) + "…"
}
