// Package prompt assembles the outbound prompt for one round-trip: the
// current editor content plus every contextual reference (mentions,
// subscriptions, manual entries) serialized into a single string.
package prompt

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

// Source tags how a context entry was attached.
type Source string

const (
	// SourceMention entries come from @-mentions typed by the user.
	// They are removable and are cleared as a batch when a new
	// round-trip begins.
	SourceMention Source = "mention"
	// SourceSubscription entries mirror subscribed external state and
	// are replaced wholesale whenever that state changes.
	SourceSubscription Source = "subscription"
	// SourceManual entries are attached explicitly by host code.
	SourceManual Source = "manual"
)

// Metadata carries presentation hints for a context entry.
type Metadata struct {
	Label string `json:"label,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// Entry is one contextual reference grouped under a logical key.
type Entry struct {
	ID       string   `json:"id"`
	Source   Source   `json:"source"`
	Data     any      `json:"data,omitempty"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// Assembler tracks context entries keyed by logical name together with
// the current editor document. Safe for concurrent use.
type Assembler struct {
	mu      sync.Mutex
	entries map[string][]Entry
	editor  Document
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{entries: make(map[string][]Entry)}
}

// SetEditorContent replaces the tracked editor document.
func (a *Assembler) SetEditorContent(doc Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.editor = doc
}

// AddEntry attaches an entry under key. Idempotent: an entry whose id
// already exists under the key is left untouched.
func (a *Assembler) AddEntry(key string, entry Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, existing := range a.entries[key] {
		if existing.ID == entry.ID {
			return
		}
	}
	a.entries[key] = append(a.entries[key], entry)
}

// RemoveEntry removes the entry with the given id from key.
func (a *Assembler) RemoveEntry(key, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.entries[key][:0]
	for _, entry := range a.entries[key] {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		delete(a.entries, key)
		return
	}
	a.entries[key] = kept
}

// ClearBySource removes every entry with the given source across all
// keys. Called with SourceMention at the start of each round-trip so
// stale mentions don't leak into later prompts.
func (a *Assembler) ClearBySource(source Source) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, entries := range a.entries {
		kept := entries[:0]
		for _, entry := range entries {
			if entry.Source != source {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			delete(a.entries, key)
			continue
		}
		a.entries[key] = kept
	}
}

// UpdateSubscription replaces all subscription-sourced entries under
// key with the given batch, tagging each entry's source. Entries from
// other sources are untouched.
func (a *Assembler) UpdateSubscription(key string, entries ...Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.entries[key][:0]
	for _, entry := range a.entries[key] {
		if entry.Source != SourceSubscription {
			kept = append(kept, entry)
		}
	}
	for _, entry := range entries {
		entry.Source = SourceSubscription
		kept = append(kept, entry)
	}
	if len(kept) == 0 {
		delete(a.entries, key)
		return
	}
	a.entries[key] = kept
}

// Entries returns a snapshot of the entries under key.
func (a *Assembler) Entries(key string) []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Entry(nil), a.entries[key]...)
}

// StringifyEditorContent flattens the tracked editor document to plain
// text.
func (a *Assembler) StringifyEditorContent() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editor.Stringify()
}

// StringifyForPrompt renders the editor text followed by a
// deterministic, human-readable serialization of all context entries
// grouped by key. The result is used verbatim as the outbound prompt
// payload.
func (a *Assembler) StringifyForPrompt() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(a.editor.Stringify())

	if len(a.entries) == 0 {
		return sb.String()
	}

	keys := make([]string, 0, len(a.entries))
	for key := range a.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sb.WriteString("\n\nContext:")
	for _, key := range keys {
		sb.WriteString("\n")
		sb.WriteString(key)
		sb.WriteString(":")
		for _, entry := range a.entries[key] {
			label := entry.Metadata.Label
			if label == "" {
				label = entry.ID
			}
			sb.WriteString("\n- ")
			sb.WriteString(label)
			if entry.Data != nil {
				sb.WriteString(": ")
				sb.WriteString(sanitize(entry.Data))
			}
		}
	}
	return sb.String()
}

// sanitize serializes an entry's data for the prompt. Values the JSON
// codec cannot represent (function references, UI element handles)
// become placeholder strings rather than a panic or an error.
func sanitize(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("<unserializable %T>", value)
	}
	return string(b)
}
