package types

import "encoding/json"

// Item kinds in a session's conversation history.
const (
	ItemMessage = "message"
	ItemAction  = "action"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Item is one entry in a session's conversation history: either a text
// message attributed to a role, or an action request carrying the raw
// tagged payload the model produced.
type Item struct {
	Type    string          `json:"type"`
	Role    string          `json:"role,omitempty"`
	Content string          `json:"content,omitempty"`
	Action  json.RawMessage `json:"action,omitempty"`
}

// UserMessage builds a user-authored message item.
func UserMessage(content string) Item {
	return Item{Type: ItemMessage, Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-authored message item.
func AssistantMessage(content string) Item {
	return Item{Type: ItemMessage, Role: RoleAssistant, Content: content}
}

// ActionRequest builds an action-request item from a raw tagged payload.
func ActionRequest(payload json.RawMessage) Item {
	return Item{Type: ItemAction, Role: RoleAssistant, Action: payload}
}

// IsAction reports whether the item requests an action.
func (i Item) IsAction() bool {
	return i.Type == ItemAction
}
