package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/mtdock/internal/core/styles"
)

type answer int

const (
	unanswered answer = iota
	answeredYes
	answeredNo
)

// ConfirmModal asks a yes/no question about a destructive or outward action.
// Left/right/tab move between the buttons, enter picks the highlighted one,
// y and n answer directly and esc always declines.
type ConfirmModal struct {
	title  string
	detail string
	yes    bool
	answer answer
}

// NewConfirmModal creates a modal with "No" highlighted.
func NewConfirmModal(title, detail string) ConfirmModal {
	return ConfirmModal{title: title, detail: detail}
}

func (m ConfirmModal) Update(msg tea.Msg) (ConfirmModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.answer != unanswered {
		return m, nil
	}

	switch keyMsg.String() {
	case "left", "right", "tab", "h", "l":
		m.yes = !m.yes
	case "enter":
		if m.yes {
			m.answer = answeredYes
		} else {
			m.answer = answeredNo
		}
	case "y", "Y":
		m.answer = answeredYes
	case "n", "N", "esc":
		m.answer = answeredNo
	}

	return m, nil
}

func (m ConfirmModal) View() string {
	button := lipgloss.NewStyle().Padding(0, 2).Foreground(styles.ColorMuted)
	active := button.Foreground(styles.ColorBackground).Background(styles.ColorPrimary).Bold(true)

	yes, no := button.Render("Yes"), active.Render("No")
	if m.yes {
		yes, no = active.Render("Yes"), button.Render("No")
	}

	parts := []string{styles.ModalTitleStyle.Render(m.title)}
	if m.detail != "" {
		parts = append(parts, styles.ValueStyle.Render(m.detail))
	}
	parts = append(parts, "", lipgloss.JoinHorizontal(lipgloss.Top, yes, " ", no))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Confirmed reports whether the user accepted.
func (m ConfirmModal) Confirmed() bool { return m.answer == answeredYes }

// Done reports whether the user answered either way.
func (m ConfirmModal) Done() bool { return m.answer != unanswered }
