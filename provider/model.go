package provider

import (
	"context"

	"github.com/tidwall/gjson"
)

// Client is implemented by every vendor adapter. Complete performs a
// single-shot call; Stream delivers events to the handler until a
// terminal event. Both normalize the vendor's wire format into the
// internal Response / StreamEvent shapes.
type Client interface {
	Complete(ctx context.Context, params CallParams) (Response, error)
	Stream(ctx context.Context, params CallParams, handler Handler) error
}

// Handler receives normalized stream events in arrival order. A stream
// delivers zero or more Chunk and Metadata events followed by exactly
// one terminal event (Done or ErrorEvent); nothing after the terminal
// event.
type Handler func(StreamEvent)

// CallParams carries one round-trip's request. Model is required for
// direct-vendor kinds, Route for the agent-backend kind; the gateway
// rejects a params/config mismatch before any network I/O.
type CallParams struct {
	// Prompt is the fully assembled user payload.
	Prompt string

	// SystemPrompt optionally overrides the backend's system prompt.
	SystemPrompt string

	// Model names the vendor model for direct-vendor kinds. The
	// multi-vendor routed kind expects "vendor/model" identifiers.
	Model string

	// Route is the agent-backend path the call is issued to, for
	// example "/chat". Streaming appends the /stream suffix.
	Route string

	Temperature float64
	MaxTokens   int

	// Extra carries vendor-specific request fields merged verbatim
	// into the outbound body by adapters that speak raw JSON.
	Extra map[string]any

	// Prevents unkeyed literals
	_ struct{}
}

// Usage reports token accounting when the backend provides it.
type Usage struct {
	PromptTokens     int `json:"promptTokens,omitempty"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens,omitempty"`
}

// Response is the normalized single-shot envelope. Object carries the
// backend's structured payload (an action or message directive) when
// one was returned; gjson.Result zero value means absent.
type Response struct {
	Text   string
	Object gjson.Result
	Usage  Usage
}
