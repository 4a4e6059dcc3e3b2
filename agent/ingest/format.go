package ingest

import (
	"fmt"
	"strings"

	"github.com/jitmemory/jitmemory/types"
)

// FormatTurn renders a conversation turn into the page content layout:
// a timestamped header line, then labelled user and assistant blocks,
// then an optional tool-calls block. The result depends only on turn's
// fields, so the same turn always formats to the same bytes.
func FormatTurn(turn types.ConversationTurn) string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Conversation Turn: %s ===\n", turn.Timestamp.UTC().Format("2006-01-02T15:04:05Z"))
	if turn.ConversationID != "" {
		fmt.Fprintf(&b, "Conversation: %s\n", turn.ConversationID)
	}
	if turn.TurnNumber != 0 {
		fmt.Fprintf(&b, "Turn: %d\n", turn.TurnNumber)
	}
	b.WriteString("\n")

	b.WriteString("USER:\n")
	b.WriteString(turn.UserUtterance)
	b.WriteString("\n\n")

	b.WriteString("ASSISTANT:\n")
	b.WriteString(turn.AssistantUtterance)

	if len(turn.ToolCalls) > 0 {
		b.WriteString("\n\nTOOL CALLS:\n")
		for _, call := range turn.ToolCalls {
			fmt.Fprintf(&b, "- tool: %s\n  arguments: %s\n  result: %s\n", call.Tool, call.Arguments, call.Result)
		}
	}

	return b.String()
}
