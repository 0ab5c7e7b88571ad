package model

import (
	"strings"

	"github.com/sapiens-run/sapiens/internal/chathistory"
)

// estimateTokens approximates a token count for providers whose SDK
// exposes no standalone tokenizer call, using the same whitespace-split
// heuristic Mock uses. Good enough for chathistory.Purge's budget check;
// never used to bill a caller.
func estimateTokens(in chathistory.Input) int {
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
	return total
}
