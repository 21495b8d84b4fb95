package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/mtdock/internal/core/styles"
	"github.com/colonyops/mtdock/internal/core/translation"
)

// QueueView renders the translation queue status as a table.
type QueueView struct {
	table   table.Model
	items   []translation.QueueItem
	loading bool
	err     error
}

func NewQueueView() *QueueView {
	t := table.New(
		table.WithColumns(queueColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ColorMuted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.ColorBackground).
		Background(styles.ColorPrimary)
	t.SetStyles(s)

	return &QueueView{table: t}
}

func queueColumns(width int) []table.Column {
	fixed := 8 + 14 + 6 + 6
	title := max(width-fixed-10, 10)
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Status", Width: 14},
		{Title: "From", Width: 6},
		{Title: "To", Width: 6},
		{Title: "Title", Width: title},
	}
}

// SetSize fits the table to the given area.
func (v *QueueView) SetSize(width, height int) {
	v.table.SetColumns(queueColumns(width))
	v.table.SetWidth(width)
	v.table.SetHeight(max(height, 3))
}

// SetLoading marks the listing as being refreshed.
func (v *QueueView) SetLoading() {
	v.loading = true
	v.err = nil
}

// SetError records a failed refresh.
func (v *QueueView) SetError(err error) {
	v.loading = false
	v.err = err
}

// SetItems replaces the listing.
func (v *QueueView) SetItems(items []translation.QueueItem) {
	v.loading = false
	v.err = nil
	v.items = items

	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, table.Row{
			strconv.Itoa(it.ID),
			it.Status,
			it.LangFrom,
			it.LangTo,
			it.Title,
		})
	}
	v.table.SetRows(rows)
	if v.table.Cursor() >= len(rows) {
		v.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Items returns the current listing.
func (v *QueueView) Items() []translation.QueueItem {
	return v.items
}

// Selected returns the highlighted queue entry.
func (v *QueueView) Selected() (translation.QueueItem, bool) {
	idx := v.table.Cursor()
	if idx < 0 || idx >= len(v.items) {
		return translation.QueueItem{}, false
	}
	return v.items[idx], true
}

// Update forwards navigation keys to the table.
func (v *QueueView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return cmd
}

func (v *QueueView) View() string {
	switch {
	case v.loading:
		return styles.PaneEmptyStyle.Render("loading queue…")
	case v.err != nil:
		return styles.PaneErrorStyle.Render(fmt.Sprintf("queue unavailable: %v", v.err))
	case len(v.items) == 0:
		return styles.PaneEmptyStyle.Render("queue is empty")
	}
	return v.table.View()
}
