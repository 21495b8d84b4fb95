// Package tui implements the review dashboard.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/mtdock/internal/core/navigator"
	"github.com/colonyops/mtdock/internal/core/notify"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/data/stores"
	"github.com/colonyops/mtdock/internal/tui/components"
)

// Backend is the part of the translation API the dashboard calls directly.
type Backend interface {
	PushToFIFO(ctx context.Context, id int, fromLang, toLang string) (string, error)
	QueueStatus(ctx context.Context) ([]translation.QueueItem, error)
	RemoveFromQueue(ctx context.Context, id int, fromLang, toLang string) error
	SubmitFinal(ctx context.Context, s translation.Submission) (string, error)
}

// ReviewRecorder stores accepted submissions locally.
type ReviewRecorder interface {
	Record(ctx context.Context, toLang string, sub translation.Submission, response string) (stores.Review, error)
}

// Options configures the dashboard.
type Options struct {
	Cursor    *navigator.Cursor
	Backend   Backend
	Reviews   ReviewRecorder // optional
	Bus       *notify.Bus
	Languages []string // selectable target languages, cycled with L
	ToastTTL  time.Duration
}

// activeView is the tab shown in the main area.
type activeView int

const (
	viewDashboard activeView = iota
	viewQueue
)

// inputMode tracks which text input owns the keyboard.
type inputMode int

const (
	inputNone inputMode = iota
	inputEditor
	inputComment
)

// confirmAction is run when the pending confirmation is accepted.
type confirmAction func(m *Model) tea.Cmd

// --- Messages ---

// navigatedMsg carries a settled Advance back into the Update loop.
type navigatedMsg struct {
	outcome navigator.Outcome
	err     error
}

// notificationMsg carries a notification from an async tea.Cmd into the Update loop.
type notificationMsg struct {
	notification notify.Notification
}

// queueLoadedMsg carries a queue status listing.
type queueLoadedMsg struct {
	items []translation.QueueItem
	err   error
}

// Model is the main Bubble Tea model for the dashboard.
type Model struct {
	cursor    *navigator.Cursor
	backend   Backend
	reviews   ReviewRecorder
	notifyBus *notify.Bus

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	article  viewport.Model
	editor   textarea.Model
	comments textinput.Model
	queue    *QueueView

	toastController *ToastController
	toastView       *ToastView

	confirm        *components.ConfirmModal
	pendingConfirm confirmAction

	view       activeView
	input      inputMode
	showHelp   bool
	navigating bool
	quitting   bool

	providers []translation.Provider
	focused   int
	results   map[string]navigator.ProviderResult
	winner    string
	ratings   map[string]int

	position      int
	articleLoaded bool
	articleData   translation.Article
	languages     []string

	width  int
	height int
}

// New creates the dashboard model. The first navigation (resuming from the
// saved checkpoint) starts in Init.
func New(opts Options) Model {
	toasts := NewToastController(opts.ToastTTL)

	bus := opts.Bus
	if bus == nil {
		bus = notify.NewBus(nil)
	}
	bus.Subscribe(toasts.Push)

	editor := textarea.New()
	editor.Placeholder = "Base translation: first line is the title"
	editor.ShowLineNumbers = false
	editor.CharLimit = 0

	comments := textinput.New()
	comments.Placeholder = "Comments"
	comments.Prompt = "› "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	_, to := opts.Cursor.Languages()
	languages := opts.Languages
	if len(languages) == 0 {
		languages = []string{to}
	}

	return Model{
		cursor:          opts.Cursor,
		backend:         opts.Backend,
		reviews:         opts.Reviews,
		notifyBus:       bus,
		keys:            defaultKeyMap(),
		help:            help.New(),
		spinner:         sp,
		article:         viewport.New(80, 8),
		editor:          editor,
		comments:        comments,
		queue:           NewQueueView(),
		toastController: toasts,
		toastView:       NewToastView(toasts),
		providers:       opts.Cursor.Providers(),
		results:         map[string]navigator.ProviderResult{},
		ratings:         map[string]int{},
		position:        opts.Cursor.Position(),
		languages:       languages,
		navigating:      true,
	}
}

// Init resumes at the saved position.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, resumeCmd(m.cursor, ""))
}

// Update handles messages and returns the updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if !m.navigating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case toastTickMsg:
		return m.handleToastTick(msg)
	case navigatedMsg:
		return m.handleNavigated(msg)
	case notificationMsg:
		return m.handleNotification(msg)
	case queueLoadedMsg:
		return m.handleQueueLoaded(msg)
	}

	return m, nil
}

// Quitting reports whether the user asked to exit.
func (m Model) Quitting() bool {
	return m.quitting
}

func (m *Model) ensureToastTick() tea.Cmd {
	if m.toastController.HasToasts() && !m.toastController.Ticking() {
		m.toastController.SetTicking(true)
		return scheduleToastTick()
	}
	return nil
}

// notifyError publishes an error-level notification and returns a command
// to start the toast tick timer if needed.
func (m *Model) notifyError(format string, args ...any) tea.Cmd {
	m.notifyBus.Errorf(format, args...)
	return m.ensureToastTick()
}

func (m *Model) notifyInfo(format string, args ...any) tea.Cmd {
	m.notifyBus.Infof(format, args...)
	return m.ensureToastTick()
}

func (m *Model) notifyWarn(format string, args ...any) tea.Cmd {
	m.notifyBus.Warnf(format, args...)
	return m.ensureToastTick()
}

func isBusy(err error) bool {
	return errors.Is(err, navigator.ErrBusy)
}
