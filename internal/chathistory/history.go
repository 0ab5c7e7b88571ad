// Package chathistory implements the bounded-token prefix+examples+dialogue
// buffer described in §4.D: a pinned context segment, an ordered list of
// user→assistant exemplar pairs, and the live chitchat dialogue, with
// deterministic examples-first pruning.
package chathistory

import (
	"context"
	"errors"
)

// Role is the speaker role of a ChatEntry.
type Role int

const (
	RoleSystem Role = iota
	RoleUser
	RoleAssistant
	RoleTool
	RoleFunction
)

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleTool:
		return "tool"
	case RoleFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Entry is a single turn in a chat history.
type Entry struct {
	Role Role
	Text string
}

// ExamplePair is an ordered (user, assistant) exemplar installed via
// AddExample.
type ExamplePair struct {
	User      Entry
	Assistant Entry
}

// Input is a self-contained snapshot of a ChatHistory suitable for handing
// to a Model.
type Input struct {
	Context  []Entry
	Examples []ExamplePair
	Chitchat []Entry
}

// TokenCounter delegates token counting to the Model, so that pruning is
// tokenizer-accurate. A mock that counts characters or words is acceptable
// for tests (§9 design notes).
type TokenCounter interface {
	NumTokens(ctx context.Context, in Input) (int, error)
}

// ErrPromptTooLong is returned by Purge when the budget cannot be met even
// after dropping every example and every chitchat entry but the last.
var ErrPromptTooLong = errors.New("chathistory: prompt too long")

// History holds the three ordered segments described in §3/§4.D.
type History struct {
	maxTokens               int
	minTokensForCompletion  int
	counter                 TokenCounter

	contextEntries []Entry
	examples       []ExamplePair
	chitchat       []Entry
}

// New constructs an empty History. maxTokens is the upper bound on the
// serialized input length; minTokensForCompletion is headroom reserved for
// the model's reply.
func New(maxTokens, minTokensForCompletion int, counter TokenCounter) *History {
	return &History{
		maxTokens:              maxTokens,
		minTokensForCompletion: minTokensForCompletion,
		counter:                counter,
	}
}

// SetContext replaces the pinned prefix.
func (h *History) SetContext(entries []Entry) {
	h.contextEntries = append([]Entry(nil), entries...)
}

// AddExample appends a user→assistant exemplar pair.
func (h *History) AddExample(user, assistant Entry) {
	h.examples = append(h.examples, ExamplePair{User: user, Assistant: assistant})
}

// AddChitchat appends to the live dialogue, collapsing with the previous
// entry if roles match: the new entry replaces the old one rather than
// being appended alongside it. This enforces strict role alternation.
func (h *History) AddChitchat(entry Entry) {
	if n := len(h.chitchat); n > 0 && h.chitchat[n-1].Role == entry.Role {
		h.chitchat[n-1] = entry
		return
	}
	h.chitchat = append(h.chitchat, entry)
}

// MakeInput returns a self-contained snapshot of the three segments.
func (h *History) MakeInput() Input {
	return Input{
		Context:  append([]Entry(nil), h.contextEntries...),
		Examples: append([]ExamplePair(nil), h.examples...),
		Chitchat: append([]Entry(nil), h.chitchat...),
	}
}

// budget is the token ceiling the packed input must fit under.
func (h *History) budget() int {
	return h.maxTokens - h.minTokensForCompletion
}

// Purge drops the oldest example repeatedly until num_tokens(MakeInput()) is
// within budget; once examples are exhausted it drops the oldest chitchat
// entry, never dropping the last remaining one. If the budget still cannot
// be met with a single chitchat entry, it returns ErrPromptTooLong. The
// context segment is never touched.
func (h *History) Purge(ctx context.Context) error {
	for {
		n, err := h.counter.NumTokens(ctx, h.MakeInput())
		if err != nil {
			return err
		}
		if n <= h.budget() {
			return nil
		}
		if len(h.examples) > 0 {
			h.examples = h.examples[1:]
			continue
		}
		if len(h.chitchat) > 1 {
			h.chitchat = h.chitchat[1:]
			continue
		}
		return ErrPromptTooLong
	}
}
