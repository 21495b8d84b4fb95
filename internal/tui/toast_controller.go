package tui

import (
	"time"

	"github.com/colonyops/mtdock/internal/core/notify"
)

const (
	defaultToastTTL   = 4 * time.Second
	defaultMaxToasts  = 5
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 44

	// errorTTLFactor keeps error toasts up longer than info and warnings.
	errorTTLFactor = 2
)

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	// repeats counts identical notifications folded into this toast.
	repeats int
}

// ToastController keeps the on-screen toast stack: newest last, at most
// defaultMaxToasts entries. Pressing n at the end of the list produces the
// same warning over and over, so a notification matching the newest toast
// refreshes it instead of stacking a copy.
type ToastController struct {
	toasts  []toast
	ttl     time.Duration
	ticking bool
}

// NewToastController creates a controller whose toasts live for ttl.
// A non-positive ttl uses the default.
func NewToastController(ttl time.Duration) *ToastController {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	return &ToastController{ttl: ttl}
}

func (c *ToastController) lifetime(level notify.Level) time.Duration {
	if level == notify.LevelError {
		return c.ttl * errorTTLFactor
	}
	return c.ttl
}

// Push shows n, folding it into the newest toast when level and message match.
func (c *ToastController) Push(n notify.Notification) {
	if last := len(c.toasts) - 1; last >= 0 {
		t := &c.toasts[last]
		if t.notification.Level == n.Level && t.notification.Message == n.Message {
			t.notification = n
			t.remaining = c.lifetime(n.Level)
			t.repeats++
			return
		}
	}

	c.toasts = append(c.toasts, toast{notification: n, remaining: c.lifetime(n.Level)})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick ages every toast by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking reports whether a toastTickMsg is already scheduled.
func (c *ToastController) Ticking() bool {
	return c.ticking
}

func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
