package conversation

import (
	"encoding/json"

	v1 "github.com/furisto/taskview/api/go/v1"
)

// DisplayContent returns the text shown for msg. Agents sometimes answer with a
// JSON object whose string field "result" holds the actual reply; that value is
// shown instead of the raw payload. Anything else is shown verbatim.
func DisplayContent(msg v1.TaskMessage) string {
	if msg.Role != v1.MessageRoleAgent {
		return msg.Content
	}
	return unwrapResult(msg.Content)
}

func unwrapResult(content string) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return content
	}

	raw, ok := payload["result"]
	if !ok {
		return content
	}

	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return content
	}
	return result
}
