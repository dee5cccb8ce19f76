// Package messages defines the chat message model and the in-memory
// thread store fed by the session controller and by capability side
// effects.
package messages

import (
	"time"

	"github.com/balrampariyarath/cedar-OS/pkg/uuidx"
	"github.com/go-openapi/strfmt"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// TypeText is the default message type. The type space is open: hosts
// may append messages of custom types (for example "todo-card") and
// render them specially.
const TypeText = "text"

// Message is one chat message. Immutable once created except through an
// explicit Update by id.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Type      string          `json:"type"`
	Content   string          `json:"content,omitempty"`
	CreatedAt strfmt.DateTime `json:"created_at"`
	Fields    map[string]any  `json:"fields,omitempty"`
}

// New builds a message with a fresh id and timestamp. An empty type
// defaults to TypeText.
func New(role Role, msgType, content string) Message {
	if msgType == "" {
		msgType = TypeText
	}
	return Message{
		ID:        uuidx.NewString(),
		Role:      role,
		Type:      msgType,
		Content:   content,
		CreatedAt: strfmt.DateTime(time.Now()),
	}
}
