package cedar

import (
	"context"
	"time"

	"github.com/balrampariyarath/cedar-OS/events"
	"github.com/balrampariyarath/cedar-OS/messages"
	"github.com/go-openapi/strfmt"
	"github.com/tidwall/gjson"
)

// handleResult routes a completed round-trip. An action payload invokes
// the named setter and appends nothing; a message payload appends a
// message with its declared role; anything else falls back to the plain
// text so a response is never dropped silently.
func (s *Session) handleResult(ctx context.Context, text string, payload gjson.Result) {
	switch payload.Get("type").String() {
	case "action":
		s.executeAction(ctx, payload)
		return

	case "message":
		role := messages.Role(payload.Get("role").String())
		switch role {
		case messages.RoleUser, messages.RoleAssistant, messages.RoleSystem:
		default:
			role = messages.RoleAssistant
		}
		s.appendMessage(ctx, messages.New(role, messages.TypeText, payload.Get("content").String()))
		return
	}

	if text == "" && payload.Exists() {
		// Unknown structured kind with no prose alongside: surface the
		// payload itself rather than dropping it.
		text = payload.Raw
	}
	if text == "" {
		return
	}
	s.appendMessage(ctx, messages.New(messages.RoleAssistant, messages.TypeText, text))
}

func (s *Session) executeAction(ctx context.Context, payload gjson.Result) {
	stateKey := payload.Get("stateKey").String()
	setterKey := payload.Get("setterKey").String()

	var args []any
	for _, arg := range payload.Get("args").Array() {
		args = append(args, arg.Value())
	}

	// Unknown keys and setters are swallowed inside the registry; a
	// malformed agent action must not take the session down.
	if err := s.registry.ExecuteCustomSetter(ctx, stateKey, setterKey, args...); err != nil {
		s.hook.OnError(ctx, err)
		s.publish(events.Error{SessionID: s.id, Err: err, Timestamp: strfmt.DateTime(time.Now())})
		return
	}

	s.hook.OnActionExecuted(ctx, stateKey, setterKey, args)
	s.publish(events.ActionExecuted{
		SessionID: s.id,
		StateKey:  stateKey,
		SetterKey: setterKey,
		Args:      args,
		Timestamp: strfmt.DateTime(time.Now()),
	})
}
