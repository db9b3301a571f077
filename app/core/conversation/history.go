package conversation

import (
	"strings"

	"focusdesk/app/pkg/types"
)

// HistoryWindow is the number of transcript entries handed to the model.
const HistoryWindow = 10

// BoundedHistory normalizes a raw transcript into the window the model call
// accepts: strictly alternating roles starting with a user turn and ending
// with an assistant turn, at most limit entries, blank turns dropped.
//
// The pass is intentionally order-sensitive. A turn whose role matches the
// last *kept* turn is discarded before its content is inspected, so a blank
// turn never breaks an alternation decision that already happened. The
// function is pure and idempotent; degenerate input yields an empty slice.
func BoundedHistory(history []types.ConversationMessage, limit int) []types.ConversationMessage {
	kept := make([]types.ConversationMessage, 0, len(history))
	lastRole := ""
	for _, msg := range history {
		role := types.MessageRoleAssistant
		if msg.Role == types.MessageRoleUser {
			role = types.MessageRoleUser
		}
		if role == lastRole {
			continue
		}
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		msg.Role = role
		kept = append(kept, msg)
		lastRole = role
	}

	kept = trimEnds(kept)
	if limit > 0 && len(kept) > limit {
		// An odd limit slices the window mid-pair, leaving an assistant
		// turn in front; trim again so the window still opens on a user.
		kept = trimEnds(kept[len(kept)-limit:])
	}
	return kept
}

// trimEnds drops leading non-user turns and a trailing user turn. The
// current user turn is sent separately, so the window must not end on a
// user turn of its own.
func trimEnds(kept []types.ConversationMessage) []types.ConversationMessage {
	for len(kept) > 0 && kept[0].Role != types.MessageRoleUser {
		kept = kept[1:]
	}
	if len(kept) > 0 && kept[len(kept)-1].Role == types.MessageRoleUser {
		kept = kept[:len(kept)-1]
	}
	return kept
}
