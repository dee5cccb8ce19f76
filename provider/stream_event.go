package provider

import (
	"errors"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	chunkJSON    = []byte(`{"type":"chunk"}`)
	metadataJSON = []byte(`{"type":"metadata"}`)
	doneJSON     = []byte(`{"type":"done"}`)
	errorJSON    = []byte(`{"type":"error"}`)
)

// StreamEvent is the closed set of events a streaming call delivers to
// its handler: zero or more Chunk and Metadata events followed by
// exactly one terminal Done or Error.
type StreamEvent interface {
	streamEvent()
}

// Chunk carries an incremental piece of assistant text.
type Chunk struct {
	Text      string          `json:"text"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Chunk) streamEvent() {}

// Metadata carries a structured frame the backend emitted alongside the
// text stream, for example an action directive or usage accounting. The
// payload is kept raw; routing happens downstream.
type Metadata struct {
	Data gjson.Result `json:"data"`
}

func (Metadata) streamEvent() {}

// Done marks normal end of stream. Events after Done are not delivered.
type Done struct{}

func (Done) streamEvent() {}

// Error marks abnormal end of stream. It is terminal like Done.
type Error struct {
	Err       error           `json:"error"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Error) streamEvent() {}

func (e Error) Error() string {
	if e.Timestamp.IsZero() {
		return fmt.Sprintf("stream error: %v", e.Err)
	}
	return fmt.Sprintf("timestamp: %s, stream error: %v", e.Timestamp, e.Err)
}

func (e Error) Unwrap() error { return e.Err }

// MarshalJSON implements custom JSON marshaling for Chunk
func (c Chunk) MarshalJSON() ([]byte, error) {
	result := chunkJSON

	var err error
	result, err = sjson.SetBytes(result, "text", c.Text)
	if err != nil {
		return nil, err
	}

	if !c.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", c.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Chunk
func (c *Chunk) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "chunk" {
		return fmt.Errorf("missing or invalid type, expected 'chunk'")
	}

	text := gjson.GetBytes(data, "text")
	if !text.Exists() {
		return fmt.Errorf("missing required field 'text'")
	}
	c.Text = text.String()

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := c.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Metadata
func (m Metadata) MarshalJSON() ([]byte, error) {
	result := metadataJSON

	if m.Data.Exists() {
		var err error
		result, err = sjson.SetRawBytes(result, "data", []byte(m.Data.Raw))
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Metadata
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "metadata" {
		return fmt.Errorf("missing or invalid type, expected 'metadata'")
	}

	if payload := gjson.GetBytes(data, "data"); payload.Exists() {
		m.Data = payload
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Done
func (Done) MarshalJSON() ([]byte, error) {
	return doneJSON, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Done
func (*Done) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "done" {
		return fmt.Errorf("missing or invalid type, expected 'done'")
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling for Error
func (e Error) MarshalJSON() ([]byte, error) {
	result := errorJSON

	var err error
	if e.Err != nil {
		result, err = sjson.SetBytes(result, "error", e.Err.Error())
		if err != nil {
			return nil, err
		}
	}

	if !e.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", e.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for Error
func (e *Error) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != "error" {
		return fmt.Errorf("missing or invalid type, expected 'error'")
	}

	errMsg := gjson.GetBytes(data, "error")
	if !errMsg.Exists() {
		return errors.New("missing required field 'error'")
	}
	e.Err = errors.New(errMsg.String())

	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := e.Timestamp.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}

	return nil
}
