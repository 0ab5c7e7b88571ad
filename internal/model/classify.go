package model

import (
	"strings"

	"github.com/sapiens-run/sapiens/internal/retry"
)

// permanentErrorMarkers are substrings of provider error messages that
// indicate a permanent failure (bad credentials, malformed request) which
// retrying will never fix. Matched the same way the provider SDKs surface
// them: embedded in the error text rather than a typed status field, since
// each SDK wraps its own HTTP client differently.
var permanentErrorMarkers = []string{
	"401", "403", "400", "404",
	"unauthorized", "invalid_api_key", "invalid api key",
	"permission denied", "forbidden", "bad request", "not found",
}

// classifyPermanent wraps err with retry.Permanent when its message matches
// a known permanent-failure marker, so the retry loop gives up immediately
// instead of burning through every configured attempt on a request that can
// never succeed.
func classifyPermanent(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range permanentErrorMarkers {
		if strings.Contains(msg, marker) {
			return retry.Permanent(err)
		}
	}
	return err
}

// errorKind labels a failed query for the error-kind metric dimension,
// distinguishing a permanent failure (bad key, malformed request) from a
// transient one retry already gave up on (exhausted attempts, timeout).
func errorKind(err error) string {
	if retry.IsRetryable(err) {
		return "transient"
	}
	return "permanent"
}
