package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/mtdock/internal/core/notify"
	"github.com/colonyops/mtdock/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders toast notifications.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View renders the toast stack as a single string with toasts stacked
// vertically (oldest at top, newest at bottom).
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}

	return strings.Join(rendered, "\n")
}

func renderToast(t toast) string {
	var icon string
	var style lipgloss.Style

	switch t.notification.Level {
	case notify.LevelError:
		icon = "✗"
		style = styles.ToastErrorStyle
	case notify.LevelWarning:
		icon = "!"
		style = styles.ToastWarningStyle
	default:
		icon = "i"
		style = styles.ToastInfoStyle
	}

	text := icon + " " + t.notification.Message
	if t.repeats > 0 {
		text += fmt.Sprintf(" (×%d)", t.repeats+1)
	}
	return style.Width(toastWidth).Render(text)
}

// Overlay places the toast stack in the lower-right corner of background,
// replacing the bottom lines it covers.
func (v *ToastView) Overlay(background string, width, height int) string {
	content := v.View()
	if content == "" {
		return background
	}

	toastLines := strings.Split(content, "\n")
	bgLines := strings.Split(background, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	start := max(len(bgLines)-len(toastLines), 0)
	for i, line := range toastLines {
		idx := start + i
		if idx >= len(bgLines) {
			break
		}
		bgLines[idx] = lipgloss.PlaceHorizontal(width, lipgloss.Right, line)
	}

	return strings.Join(bgLines, "\n")
}
