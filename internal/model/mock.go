package model

import (
	"context"
	"strings"

	"github.com/sapiens-run/sapiens/internal/chathistory"
	"github.com/sapiens-run/sapiens/internal/message"
)

// Mock is a test double satisfying Model. It counts tokens by splitting on
// whitespace (a mock that counts characters or words is explicitly
// sanctioned for tests by the design notes), and returns canned replies
// from Replies in order; once exhausted it repeats the last reply.
type Mock struct {
	Replies     []string
	MaxContext  int
	calls       int
	LastInput   chathistory.Input
}

// NewMock constructs a Mock that yields the given replies in sequence.
func NewMock(replies ...string) *Mock {
	return &Mock{Replies: replies, MaxContext: 100000}
}

func (m *Mock) Query(ctx context.Context, in chathistory.Input, maxTokens int) (Response, error) {
	m.LastInput = in
	var text string
	if len(m.Replies) == 0 {
		text = ""
	} else if m.calls < len(m.Replies) {
		text = m.Replies[m.calls]
	} else {
		text = m.Replies[len(m.Replies)-1]
	}
	m.calls++
	n, _ := m.NumTokens(ctx, in)
	return Response{
		Text: text,
		Usage: &message.Usage{
			Prompt:     n,
			Completion: len(strings.Fields(text)),
			Total:      n + len(strings.Fields(text)),
		},
	}, nil
}

func (m *Mock) NumTokens(ctx context.Context, in chathistory.Input) (int, error) {
	total := 0
	for _, e := range in.Context {
		total += len(strings.Fields(e.Text))
	}
	for _, ex := range in.Examples {
		total += len(strings.Fields(ex.User.Text)) + len(strings.Fields(ex.Assistant.Text))
	}
	for _, e := range in.Chitchat {
		total += len(strings.Fields(e.Text))
	}
	return total, nil
}

func (m *Mock) ContextSize() int {
	if m.MaxContext == 0 {
		return 100000
	}
	return m.MaxContext
}
