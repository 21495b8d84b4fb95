package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/mtdock/internal/core/navigator"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/tui/components"
)

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
	if m.articleLoaded {
		m.article.SetContent(renderArticle(m.articleData, m.article.Width))
	}
	return m, nil
}

func (m Model) handleToastTick(_ toastTickMsg) (tea.Model, tea.Cmd) {
	m.toastController.Tick(toastTickInterval)
	if m.toastController.HasToasts() {
		return m, scheduleToastTick()
	}
	m.toastController.SetTicking(false)
	return m, nil
}

// --- Notifications ---

func (m Model) handleNotification(msg notificationMsg) (tea.Model, tea.Cmd) {
	m.notifyBus.Publish(msg.notification)
	return m, m.ensureToastTick()
}

// --- Navigation ---

func (m Model) startAdvance(dir translation.Direction) (tea.Model, tea.Cmd) {
	if m.navigating {
		return m, nil
	}
	m.navigating = true
	return m, tea.Batch(m.spinner.Tick, advanceCmd(m.cursor, dir))
}

func (m Model) handleNavigated(msg navigatedMsg) (tea.Model, tea.Cmd) {
	m.navigating = false

	if msg.err != nil && isBusy(msg.err) {
		return m, nil
	}

	// A language switch seeks before advancing, so the cursor can move even
	// when the step itself does not.
	m.position = m.cursor.Position()

	if msg.err != nil {
		return m, m.notifyError("navigation failed: %v", msg.err)
	}

	out := msg.outcome
	var cmds []tea.Cmd

	if out.Notified {
		cmds = append(cmds, m.notifyWarn("%s", navigator.NoMoreMessage))
	}

	if !out.Moved() {
		return m, tea.Batch(cmds...)
	}

	m.winner = out.Winner.Provider.Name
	m.results = make(map[string]navigator.ProviderResult, len(out.Results))
	for _, r := range out.Results {
		m.results[r.Provider.Name] = r
	}
	m.ratings = map[string]int{}
	m.editor.SetValue(out.Winner.Candidate.Body())
	m.comments.SetValue("")

	if out.ArticleErr != nil {
		m.articleLoaded = false
		m.article.SetContent(fmt.Sprintf("article #%d unavailable", out.Position))
		cmds = append(cmds, m.notifyError("article #%d: %v", out.Position, out.ArticleErr))
	} else {
		m.articleLoaded = true
		m.articleData = out.Article
		m.article.SetContent(renderArticle(out.Article, m.article.Width))
		m.article.GotoTop()
	}

	return m, tea.Batch(cmds...)
}

// nextLanguage returns the language after the current target in the cycle.
func (m Model) nextLanguage() string {
	_, to := m.cursor.Languages()
	idx := slices.Index(m.languages, to)
	return m.languages[(idx+1)%len(m.languages)]
}

// --- Input ---

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Back, m.keys.Help) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.input != inputNone {
		return m.handleInputKey(msg)
	}

	if m.view == viewQueue {
		return m.handleQueueKey(msg)
	}

	return m.handleDashboardKey(msg)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modal, cmd := m.confirm.Update(msg)
	if !modal.Done() {
		m.confirm = &modal
		return m, cmd
	}

	action := m.pendingConfirm
	m.confirm = nil
	m.pendingConfirm = nil

	if modal.Confirmed() && action != nil {
		next := action(&m)
		return m, tea.Batch(cmd, next)
	}
	return m, cmd
}

func (m *Model) askConfirm(title, detail string, action confirmAction) {
	modal := components.NewConfirmModal(title, detail)
	m.confirm = &modal
	m.pendingConfirm = action
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.editor.Blur()
		m.comments.Blur()
		m.input = inputNone
		return m, nil
	}

	var cmd tea.Cmd
	switch m.input {
	case inputEditor:
		m.editor, cmd = m.editor.Update(msg)
	case inputComment:
		if msg.Type == tea.KeyEnter {
			m.comments.Blur()
			m.input = inputNone
			return m, nil
		}
		m.comments, cmd = m.comments.Update(msg)
	}
	return m, cmd
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		return m.startAdvance(translation.Next)
	case key.Matches(msg, m.keys.Prev):
		return m.startAdvance(translation.Previous)
	case key.Matches(msg, m.keys.Focus):
		if len(m.providers) > 0 {
			m.focused = (m.focused + 1) % len(m.providers)
		}
		return m, nil
	case key.Matches(msg, m.keys.Use):
		r, ok := m.results[m.focusedProvider().Name]
		if !ok || !r.Found() {
			return m, m.notifyWarn("%s has no translation here", m.focusedProvider().Name)
		}
		m.editor.SetValue(r.Candidate.Body())
		return m, nil
	case key.Matches(msg, m.keys.Rate):
		m.ratings[m.focusedProvider().Name] = int(msg.Runes[0] - '0')
		return m, nil
	case key.Matches(msg, m.keys.ClearRate):
		delete(m.ratings, m.focusedProvider().Name)
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		m.input = inputEditor
		return m, m.editor.Focus()
	case key.Matches(msg, m.keys.Comment):
		m.input = inputComment
		return m, m.comments.Focus()
	case key.Matches(msg, m.keys.Back):
		m.toastController.Dismiss()
		return m, nil
	case key.Matches(msg, m.keys.Queue):
		return m.queueCurrent()
	case key.Matches(msg, m.keys.Submit):
		return m.submitCurrent()
	case key.Matches(msg, m.keys.Language):
		if m.navigating || len(m.languages) < 2 {
			return m, nil
		}
		m.navigating = true
		m.resetPanes()
		return m, tea.Batch(m.spinner.Tick, resumeCmd(m.cursor, m.nextLanguage()))
	case key.Matches(msg, m.keys.QueueTab):
		m.view = viewQueue
		m.queue.SetLoading()
		return m, loadQueueCmd(m.backend)
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.article, cmd = m.article.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) focusedProvider() translation.Provider {
	if len(m.providers) == 0 {
		return translation.Provider{}
	}
	return m.providers[m.focused]
}

func (m *Model) resetPanes() {
	m.results = map[string]navigator.ProviderResult{}
	m.winner = ""
	m.ratings = map[string]int{}
	m.articleLoaded = false
	m.article.SetContent("")
	m.editor.SetValue("")
	m.comments.SetValue("")
}

func (m Model) hasCurrent() bool {
	return m.winner != ""
}

func (m Model) queueCurrent() (tea.Model, tea.Cmd) {
	if !m.hasCurrent() {
		return m, m.notifyWarn("no article selected")
	}
	from, to := m.cursor.Languages()
	return m, pushCmd(m.backend, m.position, from, to)
}

// submission builds the final translation from the editor, comments and ratings.
func (m Model) submission() translation.Submission {
	title, text := translation.SplitTitleText(m.editor.Value())

	ratings := make(map[string]int, len(m.ratings))
	for name, r := range m.ratings {
		ratings[name] = r
	}

	return translation.Submission{
		ID:       m.position,
		Title:    title,
		Text:     text,
		Comments: m.comments.Value(),
		Ratings:  ratings,
	}
}

func (m Model) submitCurrent() (tea.Model, tea.Cmd) {
	if !m.hasCurrent() {
		return m, m.notifyWarn("no article selected")
	}

	sub := m.submission()
	if err := sub.Validate(); err != nil {
		return m, m.notifyError("cannot submit: %v", err)
	}

	from, to := m.cursor.Languages()
	detail := fmt.Sprintf("%s→%s  %q", from, to, sub.Title)
	m.askConfirm(fmt.Sprintf("Submit final translation for #%d?", sub.ID), detail, func(m *Model) tea.Cmd {
		log.Debug().Int("id", sub.ID).Str("to_lang", to).Msg("submitting final translation")
		return submitCmd(m.backend, m.reviews, to, sub)
	})
	return m, nil
}

// --- Queue tab ---

func (m Model) handleQueueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.QueueTab, m.keys.Back):
		m.view = viewDashboard
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.queue.SetLoading()
		return m, loadQueueCmd(m.backend)
	case key.Matches(msg, m.keys.Remove):
		item, ok := m.queue.Selected()
		if !ok {
			return m, nil
		}
		title := fmt.Sprintf("Remove #%d (%s→%s) from the queue?", item.ID, item.LangFrom, item.LangTo)
		m.askConfirm(title, item.Title, func(m *Model) tea.Cmd {
			m.queue.SetLoading()
			return removeQueueCmd(m.backend, item)
		})
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}

	return m, m.queue.Update(msg)
}

func (m Model) handleQueueLoaded(msg queueLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.queue.SetError(msg.err)
		return m, m.notifyError("queue status: %v", msg.err)
	}
	m.queue.SetItems(msg.items)
	return m, nil
}
