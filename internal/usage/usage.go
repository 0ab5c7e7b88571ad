// Package usage accumulates token usage across a run and formats it for
// display.
package usage

import (
	"fmt"
	"sync"

	"github.com/sapiens-run/sapiens/internal/message"
)

// Tracker accumulates the *message.Usage attached to each message a Runtime
// produces into a running total, plus a per-message-kind breakdown (so a
// run summary can show how much of the budget went to, say, Decision
// messages versus Action messages in the multi-step chain).
type Tracker struct {
	mu      sync.Mutex
	total   message.Usage
	byKind  map[message.Kind]message.Usage
	entries int
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{byKind: map[message.Kind]message.Usage{}}
}

// Record adds one message's usage to the running totals. A nil usage (a
// model that didn't report one) is a no-op.
func (t *Tracker) Record(kind message.Kind, u *message.Usage) {
	if u == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total.Prompt += u.Prompt
	t.total.Completion += u.Completion
	t.total.Total += u.Total
	k := t.byKind[kind]
	k.Prompt += u.Prompt
	k.Completion += u.Completion
	k.Total += u.Total
	t.byKind[kind] = k
	t.entries++
}

// Total returns a snapshot of the accumulated usage across all messages.
func (t *Tracker) Total() message.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// ByKind returns a snapshot of the accumulated usage broken down by message
// kind.
func (t *Tracker) ByKind() map[message.Kind]message.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[message.Kind]message.Usage, len(t.byKind))
	for k, v := range t.byKind {
		out[k] = v
	}
	return out
}

// Entries reports how many non-nil usage records have been added.
func (t *Tracker) Entries() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries
}

// String renders a one-line summary suitable for CLI output.
func (t *Tracker) String() string {
	total := t.Total()
	return fmt.Sprintf("%s prompt + %s completion = %s total",
		FormatTokenCount(total.Prompt), FormatTokenCount(total.Completion), FormatTokenCount(total.Total))
}
