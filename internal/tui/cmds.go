package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/mtdock/internal/core/navigator"
	"github.com/colonyops/mtdock/internal/core/notify"
	"github.com/colonyops/mtdock/internal/core/translation"
)

func advanceCmd(c *navigator.Cursor, dir translation.Direction) tea.Cmd {
	return func() tea.Msg {
		out, err := c.Advance(context.Background(), dir)
		return navigatedMsg{outcome: out, err: err}
	}
}

// resumeCmd shows the checkpointed article for lang (or the current target
// language when lang is empty). A language without a checkpoint starts from
// the beginning.
func resumeCmd(c *navigator.Cursor, lang string) tea.Cmd {
	return func() tea.Msg {
		if lang != "" {
			if err := c.SetTargetLanguage(lang); err != nil {
				return navigatedMsg{err: err}
			}
			if err := c.Seek(0); err != nil {
				return navigatedMsg{err: err}
			}
		}
		out, err := c.Resume(context.Background())
		return navigatedMsg{outcome: out, err: err}
	}
}

func notification(level notify.Level, format string, args ...any) tea.Msg {
	return notificationMsg{notification: notify.Notification{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}}
}

func pushCmd(b Backend, id int, from, to string) tea.Cmd {
	return func() tea.Msg {
		ack, err := b.PushToFIFO(context.Background(), id, from, to)
		if err != nil {
			return notification(notify.LevelError, "queue #%d: %v", id, err)
		}
		if ack == "" {
			ack = "queued"
		}
		return notification(notify.LevelInfo, "#%d %s→%s: %s", id, from, to, ack)
	}
}

func submitCmd(b Backend, reviews ReviewRecorder, toLang string, sub translation.Submission) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		resp, err := b.SubmitFinal(ctx, sub)
		if err != nil {
			return notification(notify.LevelError, "submit #%d: %v", sub.ID, err)
		}

		if reviews != nil {
			if _, err := reviews.Record(ctx, toLang, sub, resp); err != nil {
				log.Error().Err(err).Int("id", sub.ID).Msg("failed to record review")
			}
		}

		return notification(notify.LevelInfo, "submitted final translation for #%d", sub.ID)
	}
}

func loadQueueCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		items, err := b.QueueStatus(context.Background())
		return queueLoadedMsg{items: items, err: err}
	}
}

func removeQueueCmd(b Backend, item translation.QueueItem) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := b.RemoveFromQueue(ctx, item.ID, item.LangFrom, item.LangTo); err != nil {
			return notification(notify.LevelError, "remove #%d: %v", item.ID, err)
		}
		items, err := b.QueueStatus(ctx)
		return queueLoadedMsg{items: items, err: err}
	}
}
