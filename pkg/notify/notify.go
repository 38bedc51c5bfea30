// SPDX-License-Identifier: Apache-2.0
package notify

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Severity classifies a user-facing notice
type Severity int

const (
	Info Severity = iota
	Success
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier delivers fire-and-forget notices to the user
type Notifier interface {
	Notify(message string, severity Severity)
}

// Func adapts a function to Notifier
type Func func(message string, severity Severity)

// Notify implements Notifier
func (f Func) Notify(message string, severity Severity) {
	f(message, severity)
}

// Log writes notices to a charmbracelet logger
type Log struct {
	Logger *log.Logger
}

// Notify implements Notifier
func (l Log) Notify(message string, severity Severity) {
	logger := l.Logger
	if logger == nil {
		logger = log.Default()
	}
	switch severity {
	case Error:
		logger.Error("notify", "message", message)
	case Success:
		logger.Info("notify", "message", message, "severity", severity)
	default:
		logger.Info("notify", "message", message)
	}
}

// Multi fans a notice out to several notifiers in order
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(message string, severity Severity) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, severity)
		}
	}
}

// Notice is one recorded notification
type Notice struct {
	Message  string
	Severity Severity
}

// Recorder keeps every notice it receives
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier
func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Message: message, Severity: severity})
}

// Notices returns a copy of everything recorded so far
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Count returns how many notices of the given severity were recorded
func (r *Recorder) Count(severity Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.notices {
		if notice.Severity == severity {
			n++
		}
	}
	return n
}

// Last returns the most recent notice
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
