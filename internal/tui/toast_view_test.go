package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/mtdock/internal/core/notify"
	"github.com/colonyops/mtdock/pkg/tuitest"
)

func TestToastView_View_empty(t *testing.T) {
	v := NewToastView(NewToastController(0))
	assert.Empty(t, v.View())
}

func TestToastView_View_renders_each_level(t *testing.T) {
	for _, level := range []notify.Level{notify.LevelInfo, notify.LevelWarning, notify.LevelError} {
		t.Run(string(level), func(t *testing.T) {
			c := NewToastController(0)
			c.Push(notify.Notification{Level: level, Message: "No more articles"})

			out := tuitest.StripANSI(NewToastView(c).View())
			assert.Contains(t, out, "No more articles")
		})
	}
}

func TestToastView_View_stacks_multiple(t *testing.T) {
	c := NewToastController(0)
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "first"})
	c.Push(notify.Notification{Level: notify.LevelError, Message: "second"})

	out := tuitest.StripANSI(NewToastView(c).View())
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}

func TestToastView_View_shows_repeat_count(t *testing.T) {
	c := NewToastController(0)
	for range 3 {
		c.Push(notify.Notification{Level: notify.LevelWarning, Message: "No more articles"})
	}

	out := tuitest.StripANSI(NewToastView(c).View())
	assert.Contains(t, out, "(×3)")
}

func TestToastView_Overlay_empty_returns_background(t *testing.T) {
	v := NewToastView(NewToastController(0))
	assert.Equal(t, "bg", v.Overlay("bg", 80, 1))
}

func TestToastView_Overlay_positions_lower_right(t *testing.T) {
	c := NewToastController(0)
	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "hi"})
	v := NewToastView(c)

	bg := strings.Repeat("line\n", 9) + "line"
	out := tuitest.StripANSI(v.Overlay(bg, 80, 10))
	lines := strings.Split(out, "\n")

	assert.Equal(t, "line", lines[0], "top is untouched")
	last := lines[len(lines)-2]
	assert.Contains(t, last, "hi")
	assert.Greater(t, strings.Index(last, "hi"), 30, "toast is right aligned")
}
