// Package cedar connects a conversational agent to live application
// state. A Session assembles prompts from editor content and context
// entries, sends them through a provider gateway, and routes the
// response: plain text becomes an assistant message, a structured
// action payload executes a named setter on the capability registry.
//
// The surrounding packages supply the pieces: state holds the
// capability registry, prompt assembles context, provider and gateway
// talk to LLM backends, sse decodes the streaming wire format, messages
// stores the conversation, and events fans the session lifecycle out to
// hooks and brokers.
package cedar
