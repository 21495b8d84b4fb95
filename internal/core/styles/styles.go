// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	LabelStyle         lipgloss.Style
	ValueStyle         lipgloss.Style

	// Dashboard panes.
	HeaderStyle       lipgloss.Style
	HeaderIndexStyle  lipgloss.Style
	PaneStyle         lipgloss.Style
	PaneFocusedStyle  lipgloss.Style
	PaneTitleStyle    lipgloss.Style
	PaneWinnerStyle   lipgloss.Style
	PaneEmptyStyle    lipgloss.Style
	PaneErrorStyle    lipgloss.Style
	RatingOnStyle     lipgloss.Style
	RatingOffStyle    lipgloss.Style
	StatusBarStyle    lipgloss.Style
	ViewSelectedStyle lipgloss.Style
	ViewNormalStyle   lipgloss.Style

	// Toasts.
	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style

	// Modals and help.
	ModalStyle       lipgloss.Style
	ModalTitleStyle  lipgloss.Style
	ModalHelpStyle   lipgloss.Style
	HelpStyle        lipgloss.Style
	HelpKeyStyle     lipgloss.Style
	HelpSectionStyle lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	LabelStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ValueStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(ColorSurface).
		Padding(0, 1)
	HeaderIndexStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Background(ColorSurface).
		Bold(true)

	PaneStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Padding(0, 1)
	PaneFocusedStyle = PaneStyle.
		BorderForeground(ColorPrimary)
	PaneTitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	PaneWinnerStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)
	PaneEmptyStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)
	PaneErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	RatingOnStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	RatingOffStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	ViewSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	ViewNormalStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	toast := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Foreground(ColorForeground)
	ToastInfoStyle = toast.BorderForeground(ColorPrimary)
	ToastWarningStyle = toast.BorderForeground(ColorWarning)
	ToastErrorStyle = toast.BorderForeground(ColorError)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	HelpKeyStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	HelpSectionStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)
}

// UseTheme activates the named theme and reports whether it exists. Unknown
// names leave the current theme in place.
func UseTheme(name string) bool {
	p, ok := GetPalette(name)
	if ok {
		SetTheme(p)
	}
	return ok
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
