package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/colonyops/mtdock/internal/tui/components"
)

// keyMap holds the dashboard key bindings.
type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Focus      key.Binding
	Use        key.Binding
	Rate       key.Binding
	ClearRate  key.Binding
	Edit       key.Binding
	Comment    key.Binding
	Back       key.Binding
	Queue      key.Binding
	Submit     key.Binding
	Language   key.Binding
	QueueTab   key.Binding
	Reload     key.Binding
	Remove     key.Binding
	Help       key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "previous"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus provider"),
		),
		Use: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "use as base"),
		),
		Rate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "rate"),
		),
		ClearRate: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear rating"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit base"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back/dismiss"),
		),
		Queue: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "queue retranslation"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "submit"),
		),
		Language: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "cycle language"),
		),
		QueueTab: key.NewBinding(
			key.WithKeys("Q"),
			key.WithHelp("Q", "queue tab"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload queue"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove entry"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "scroll article"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "scroll article"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Focus, k.Rate, k.Submit, k.Help}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Language, k.ScrollUp, k.ScrollDown},
		{k.Focus, k.Use, k.Rate, k.ClearRate, k.Edit, k.Comment},
		{k.Queue, k.Submit, k.QueueTab, k.Reload, k.Remove},
		{k.Back, k.Help, k.Quit},
	}
}

// helpSections groups the full help for the help dialog.
func (k keyMap) helpSections() []components.HelpSection {
	titles := []string{"Navigate", "Review", "Queue", "General"}

	groups := k.FullHelp()
	sections := make([]components.HelpSection, len(groups))
	for i, group := range groups {
		sections[i] = components.HelpSection{Title: titles[i], Bindings: group}
	}
	return sections
}
