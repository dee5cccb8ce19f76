// Package events defines the session lifecycle events a conversation
// emits: the user prompt, assistant chunks and messages, executed state
// actions, and failures. Events serialize to tagged JSON so they can
// travel over a broker unchanged, and the Hook interface fans them out
// to observers.
package events
