package agent

import (
	"errors"
	"fmt"
)

// ErrAgentFailed is the sentinel fatal error surfaced to the Runtime when an
// Agent cannot produce a message: chat-history overflow or a model error.
// It wraps the underlying cause, so callers should use errors.Is/errors.As
// to recover it.
var ErrAgentFailed = errors.New("agent: failed to produce a message")

// FailedError wraps a cause (chathistory.ErrPromptTooLong or a model error)
// as an ErrAgentFailed.
type FailedError struct {
	Cause error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrAgentFailed, e.Cause)
}

func (e *FailedError) Unwrap() []error {
	return []error{ErrAgentFailed, e.Cause}
}

func failed(cause error) error {
	return &FailedError{Cause: cause}
}
