// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"strings"
	"sync"
	"time"

	"github.com/Work-Fort/Intake/pkg/config"
	"github.com/Work-Fort/Intake/pkg/notify"
)

// DefaultToastTTL is how long a toast stays on screen
const DefaultToastTTL = 4 * time.Second

// Toast is one on-screen notice
type Toast struct {
	Notice  notify.Notice
	Expires time.Time
}

// Toasts is a notify.Notifier that queues notices for rendering. Notify may
// be called from any goroutine; the TUI renders on its own.
type Toasts struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	queue []Toast
}

// NewToasts creates an empty toast queue. A zero ttl uses DefaultToastTTL.
func NewToasts(ttl time.Duration) *Toasts {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Toasts{ttl: ttl, now: time.Now}
}

// Notify implements notify.Notifier
func (t *Toasts) Notify(message string, severity notify.Severity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, Toast{
		Notice:  notify.Notice{Message: message, Severity: severity},
		Expires: t.now().Add(t.ttl),
	})
}

// Active drops expired toasts and returns the rest, oldest first
func (t *Toasts) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	live := t.queue[:0]
	for _, toast := range t.queue {
		if now.Before(toast.Expires) {
			live = append(live, toast)
		}
	}
	t.queue = live
	out := make([]Toast, len(live))
	copy(out, live)
	return out
}

// Render draws the active toasts, one per line
func (t *Toasts) Render() string {
	theme := config.CurrentTheme
	active := t.Active()
	lines := make([]string, 0, len(active))
	for _, toast := range active {
		switch toast.Notice.Severity {
		case notify.Success:
			lines = append(lines, theme.SuccessMessage(toast.Notice.Message))
		case notify.Error:
			lines = append(lines, theme.ErrorMessage(toast.Notice.Message))
		default:
			lines = append(lines, theme.InfoMessage(toast.Notice.Message))
		}
	}
	return strings.Join(lines, "\n")
}
