package chathistory

import (
	"context"
	"testing"
)

// wordCounter counts tokens as the number of entries/pairs times a fixed
// weight, giving predictable, test-controllable token pressure without
// depending on a real tokenizer.
type wordCounter struct{ perEntry int }

func (w wordCounter) NumTokens(ctx context.Context, in Input) (int, error) {
	total := 0
	total += len(in.Context) * w.perEntry
	total += len(in.Examples) * 2 * w.perEntry
	total += len(in.Chitchat) * w.perEntry
	return total, nil
}

func TestSetContextReplacesPrefix(t *testing.T) {
	h := New(1000, 0, wordCounter{perEntry: 1})
	h.SetContext([]Entry{{Role: RoleSystem, Text: "a"}})
	h.SetContext([]Entry{{Role: RoleSystem, Text: "b"}, {Role: RoleSystem, Text: "c"}})

	in := h.MakeInput()
	if len(in.Context) != 2 {
		t.Fatalf("expected SetContext to replace, got %d entries", len(in.Context))
	}
	if in.Context[0].Text != "b" || in.Context[1].Text != "c" {
		t.Errorf("unexpected context contents: %v", in.Context)
	}
}

func TestAddExampleAppendsInOrder(t *testing.T) {
	h := New(1000, 0, wordCounter{perEntry: 1})
	h.AddExample(Entry{Role: RoleUser, Text: "q1"}, Entry{Role: RoleAssistant, Text: "a1"})
	h.AddExample(Entry{Role: RoleUser, Text: "q2"}, Entry{Role: RoleAssistant, Text: "a2"})

	in := h.MakeInput()
	if len(in.Examples) != 2 {
		t.Fatalf("expected 2 examples, got %d", len(in.Examples))
	}
	if in.Examples[0].User.Text != "q1" || in.Examples[1].User.Text != "q2" {
		t.Errorf("unexpected example order: %v", in.Examples)
	}
}

func TestAddChitchatCollapsesConsecutiveSameRole(t *testing.T) {
	h := New(1000, 0, wordCounter{perEntry: 1})
	h.AddChitchat(Entry{Role: RoleUser, Text: "hello"})
	h.AddChitchat(Entry{Role: RoleUser, Text: "actually, hello again"})
	h.AddChitchat(Entry{Role: RoleAssistant, Text: "hi there"})

	in := h.MakeInput()
	if len(in.Chitchat) != 2 {
		t.Fatalf("expected same-role entries to collapse, got %d entries: %v", len(in.Chitchat), in.Chitchat)
	}
	if in.Chitchat[0].Text != "actually, hello again" {
		t.Errorf("expected the later same-role entry to replace the former, got %q", in.Chitchat[0].Text)
	}
	if in.Chitchat[1].Role != RoleAssistant {
		t.Errorf("expected the assistant turn to follow, got role %v", in.Chitchat[1].Role)
	}
}

func TestAddChitchatNeverProducesConsecutiveSameRole(t *testing.T) {
	h := New(1000, 0, wordCounter{perEntry: 1})
	roles := []Role{RoleUser, RoleUser, RoleUser, RoleAssistant, RoleAssistant, RoleUser}
	for _, r := range roles {
		h.AddChitchat(Entry{Role: r, Text: "x"})
	}
	in := h.MakeInput()
	for i := 1; i < len(in.Chitchat); i++ {
		if in.Chitchat[i].Role == in.Chitchat[i-1].Role {
			t.Fatalf("found consecutive same-role entries at index %d: %v", i, in.Chitchat)
		}
	}
}

func TestPurgeWithinBudgetIsNoOp(t *testing.T) {
	h := New(100, 0, wordCounter{perEntry: 1})
	h.SetContext([]Entry{{Role: RoleSystem, Text: "sys"}})
	h.AddExample(Entry{Role: RoleUser, Text: "q"}, Entry{Role: RoleAssistant, Text: "a"})
	h.AddChitchat(Entry{Role: RoleUser, Text: "hi"})

	if err := h.Purge(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := h.MakeInput()
	if len(in.Examples) != 1 || len(in.Chitchat) != 1 {
		t.Errorf("expected nothing pruned, got examples=%d chitchat=%d", len(in.Examples), len(in.Chitchat))
	}
}

func TestPurgeDropsExamplesBeforeChitchat(t *testing.T) {
	// context = 1 entry (1 token), each example = 2 tokens, each chitchat = 1 token.
	// budget = 4: context(1) + examples(2*2=4) + chitchat(2) = 7 > 4.
	// Dropping one example -> 1 + 2 + 2 = 5 > 4. Dropping the second example -> 1 + 0 + 2 = 3 <= 4.
	h := New(4, 0, wordCounter{perEntry: 1})
	h.SetContext([]Entry{{Role: RoleSystem, Text: "sys"}})
	h.AddExample(Entry{Role: RoleUser, Text: "q1"}, Entry{Role: RoleAssistant, Text: "a1"})
	h.AddExample(Entry{Role: RoleUser, Text: "q2"}, Entry{Role: RoleAssistant, Text: "a2"})
	h.AddChitchat(Entry{Role: RoleUser, Text: "hi"})
	h.AddChitchat(Entry{Role: RoleAssistant, Text: "hello"})

	if err := h.Purge(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := h.MakeInput()
	if len(in.Examples) != 0 {
		t.Errorf("expected all examples dropped before chitchat, got %d remaining", len(in.Examples))
	}
	if len(in.Chitchat) != 2 {
		t.Errorf("expected chitchat untouched while examples still existed, got %d", len(in.Chitchat))
	}
}

func TestPurgeDropsOldestExampleFirst(t *testing.T) {
	h := New(5, 0, wordCounter{perEntry: 1})
	h.AddExample(Entry{Role: RoleUser, Text: "oldest"}, Entry{Role: RoleAssistant, Text: "a1"})
	h.AddExample(Entry{Role: RoleUser, Text: "newest"}, Entry{Role: RoleAssistant, Text: "a2"})
	// budget = 5, 2 examples = 4 tokens -> fits already; tighten the budget further via minTokensForCompletion.
	h2 := New(3, 0, wordCounter{perEntry: 1})
	h2.AddExample(Entry{Role: RoleUser, Text: "oldest"}, Entry{Role: RoleAssistant, Text: "a1"})
	h2.AddExample(Entry{Role: RoleUser, Text: "newest"}, Entry{Role: RoleAssistant, Text: "a2"})
	if err := h2.Purge(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := h2.MakeInput()
	if len(in.Examples) != 1 {
		t.Fatalf("expected exactly one example to remain, got %d", len(in.Examples))
	}
	if in.Examples[0].User.Text != "newest" {
		t.Errorf("expected the oldest example dropped first, kept %q", in.Examples[0].User.Text)
	}
}

func TestPurgeNeverDropsLastChitchatEntry(t *testing.T) {
	h := New(1, 0, wordCounter{perEntry: 1})
	h.AddChitchat(Entry{Role: RoleUser, Text: "only message"})

	err := h.Purge(context.Background())
	if err != ErrPromptTooLong {
		t.Fatalf("expected ErrPromptTooLong when a single chitchat entry alone exceeds budget, got %v", err)
	}
	in := h.MakeInput()
	if len(in.Chitchat) != 1 {
		t.Errorf("expected the last chitchat entry to survive even on failure, got %d entries", len(in.Chitchat))
	}
}

func TestPurgeDropsChitchatAfterExamplesExhausted(t *testing.T) {
	h := New(2, 0, wordCounter{perEntry: 1})
	h.AddExample(Entry{Role: RoleUser, Text: "q"}, Entry{Role: RoleAssistant, Text: "a"})
	h.AddChitchat(Entry{Role: RoleUser, Text: "first"})
	h.AddChitchat(Entry{Role: RoleAssistant, Text: "second"})
	h.AddChitchat(Entry{Role: RoleUser, Text: "third"})

	if err := h.Purge(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := h.MakeInput()
	if len(in.Examples) != 0 {
		t.Errorf("expected the example dropped, got %d remaining", len(in.Examples))
	}
	if len(in.Chitchat) != 2 {
		t.Fatalf("expected budget met after dropping examples and one chitchat entry, got %d chitchat entries", len(in.Chitchat))
	}
	if in.Chitchat[0].Text != "second" {
		t.Errorf("expected the oldest chitchat entry dropped first, got %v", in.Chitchat)
	}
}

func TestRoleString(t *testing.T) {
	cases := map[Role]string{
		RoleSystem:    "system",
		RoleUser:      "user",
		RoleAssistant: "assistant",
		RoleTool:      "tool",
		RoleFunction:  "function",
	}
	for r, want := range cases {
		if got := r.String(); got != want {
			t.Errorf("Role(%d).String() = %q, want %q", r, got, want)
		}
	}
}
