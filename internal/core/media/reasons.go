package media

import (
	"fmt"
	"strings"
)

// Backend failure reason codes for batch delete.
const (
	ReasonNotFound    = "not_found"
	ReasonPermission  = "permission_denied"
	ReasonLocked      = "locked"
	ReasonStorage     = "storage_error"
	ReasonInUse       = "in_use"
	ReasonReadOnly    = "read_only_source"
	genericRetryHint  = "Something went wrong. Please try again."
	friendlyListLimit = 3
)

var friendlyReasons = map[string]string{
	ReasonNotFound:   "The file no longer exists on the server.",
	ReasonPermission: "You do not have permission to delete this file.",
	ReasonLocked:     "The file is locked by another process.",
	ReasonStorage:    "The storage backend could not remove the file.",
	ReasonInUse:      "The file is in use. Close it and try again.",
	ReasonReadOnly:   "The media source is read-only.",
}

// FriendlyReason maps a backend reason code to a user-facing message.
// Unknown codes fall back to a generic retry prompt.
func FriendlyReason(code string) string {
	if msg, ok := friendlyReasons[strings.ToLower(strings.TrimSpace(code))]; ok {
		return msg
	}
	return genericRetryHint
}

// FriendlyFailures aggregates failures into one message. Distinct reasons are
// listed once each.
func FriendlyFailures(failed []DeleteFailure) string {
	if len(failed) == 0 {
		return ""
	}

	var reasons []string
	seen := make(map[string]bool)
	for _, f := range failed {
		msg := FriendlyReason(f.Reason)
		if seen[msg] {
			continue
		}
		seen[msg] = true
		reasons = append(reasons, msg)
	}

	if len(reasons) > friendlyListLimit {
		reasons = reasons[:friendlyListLimit]
	}

	if len(failed) == 1 {
		return fmt.Sprintf("Could not delete 1 item. %s", reasons[0])
	}
	return fmt.Sprintf("Could not delete %d items. %s", len(failed), strings.Join(reasons, " "))
}
