package events

import (
	"context"
	"log/slog"
	"slices"

	"github.com/balrampariyarath/cedar-OS/messages"
	"github.com/balrampariyarath/cedar-OS/pkg/slogx"
	json "github.com/goccy/go-json"
)

// Hook receives the session lifecycle as it happens. Every method must
// be implemented; there is deliberately no no-op base so that adding an
// event forces every consumer to decide how to handle it.
type Hook interface {
	OnUserMessage(context.Context, messages.Message)

	OnAssistantChunk(ctx context.Context, text string)

	OnAssistantMessage(context.Context, messages.Message)

	OnActionExecuted(ctx context.Context, stateKey, setterKey string, args []any)

	OnError(context.Context, error)
}

func LoggingHook() Hook {
	return &loggingHook{}
}

type loggingHook struct{}

// asJSON renders a value for a log line. Hosts put arbitrary values in
// message fields, so a value the codec rejects degrades to an error
// string instead of failing the log call.
func asJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "<unserializable: " + err.Error() + ">"
	}
	return string(b)
}

func (loggingHook) OnUserMessage(ctx context.Context, msg messages.Message) {
	slog.InfoContext(ctx, "User message", "message", asJSON(msg))
}

func (loggingHook) OnAssistantChunk(ctx context.Context, text string) {
	slog.DebugContext(ctx, "Assistant chunk", "text", text)
}

func (loggingHook) OnAssistantMessage(ctx context.Context, msg messages.Message) {
	slog.InfoContext(ctx, "Assistant message", "message", asJSON(msg))
}

func (loggingHook) OnActionExecuted(ctx context.Context, stateKey, setterKey string, args []any) {
	slog.InfoContext(ctx, "Action executed",
		slog.String("state_key", stateKey),
		slog.String("setter_key", setterKey),
		"args", asJSON(args),
	)
}

func (loggingHook) OnError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "session error", slogx.Error(err))
}

func NewCompositeHook(hooks ...Hook) Hook {
	return CompositeHook(hooks)
}

// CompositeHook fans every event out to each wrapped hook in order.
type CompositeHook []Hook

func (c CompositeHook) OnUserMessage(ctx context.Context, msg messages.Message) {
	for h := range slices.Values(c) {
		h.OnUserMessage(ctx, msg)
	}
}

func (c CompositeHook) OnAssistantChunk(ctx context.Context, text string) {
	for h := range slices.Values(c) {
		h.OnAssistantChunk(ctx, text)
	}
}

func (c CompositeHook) OnAssistantMessage(ctx context.Context, msg messages.Message) {
	for h := range slices.Values(c) {
		h.OnAssistantMessage(ctx, msg)
	}
}

func (c CompositeHook) OnActionExecuted(ctx context.Context, stateKey, setterKey string, args []any) {
	for h := range slices.Values(c) {
		h.OnActionExecuted(ctx, stateKey, setterKey, args)
	}
}

func (c CompositeHook) OnError(ctx context.Context, err error) {
	for h := range slices.Values(c) {
		h.OnError(ctx, err)
	}
}

// Dispatch routes a wire event to the matching hook method. It is the
// bridge between broker subscriptions and in-process hooks.
func Dispatch(ctx context.Context, hook Hook, event Event) {
	switch ev := event.(type) {
	case UserMessage:
		hook.OnUserMessage(ctx, ev.Message)
	case AssistantChunk:
		hook.OnAssistantChunk(ctx, ev.Text)
	case AssistantMessage:
		hook.OnAssistantMessage(ctx, ev.Message)
	case ActionExecuted:
		hook.OnActionExecuted(ctx, ev.StateKey, ev.SetterKey, ev.Args)
	case Error:
		hook.OnError(ctx, ev.Err)
	}
}
