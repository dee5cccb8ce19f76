package state

import (
	json "github.com/goccy/go-json"
)

// DescribeForPrompt renders a capability snapshot as compact JSON, the
// form handed to a backend inside a system prompt.
func DescribeForPrompt(capabilities []Capability) string {
	b, err := json.Marshal(capabilities)
	if err != nil {
		return ""
	}
	return string(b)
}
