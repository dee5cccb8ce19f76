package provider

import (
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ObjectFromText recognizes a response that is entirely a JSON object,
// which downstream routing treats as a structured directive. Anything
// else yields the zero Result.
func ObjectFromText(text string) gjson.Result {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return gjson.Result{}
	}
	return gjson.Parse(trimmed)
}

// UsageFrame wraps token accounting in a metadata payload, the shape
// shared by every adapter that reports usage mid-stream.
func UsageFrame(usage Usage) (gjson.Result, error) {
	uj, err := json.Marshal(usage)
	if err != nil {
		return gjson.Result{}, err
	}
	raw, err := sjson.SetRawBytes([]byte(`{}`), "usage", uj)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(raw), nil
}
