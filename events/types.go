package events

import (
	"errors"
	"fmt"

	"github.com/balrampariyarath/cedar-OS/messages"
	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	userMessageJSON      = []byte(`{"type":"user_message"}`)
	assistantChunkJSON   = []byte(`{"type":"assistant_chunk"}`)
	assistantMessageJSON = []byte(`{"type":"assistant_message"}`)
	actionExecutedJSON   = []byte(`{"type":"action_executed"}`)
	errorJSON            = []byte(`{"type":"error"}`)
)

// Event is the closed set of session lifecycle events.
type Event interface {
	sessionEvent()
}

type UserMessage struct {
	SessionID uuid.UUID        `json:"session_id"`
	Message   messages.Message `json:"message"`
}

func (UserMessage) sessionEvent() {}

type AssistantChunk struct {
	SessionID uuid.UUID       `json:"session_id"`
	Text      string          `json:"text"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (AssistantChunk) sessionEvent() {}

type AssistantMessage struct {
	SessionID uuid.UUID        `json:"session_id"`
	Message   messages.Message `json:"message"`
}

func (AssistantMessage) sessionEvent() {}

type ActionExecuted struct {
	SessionID uuid.UUID       `json:"session_id"`
	StateKey  string          `json:"state_key"`
	SetterKey string          `json:"setter_key"`
	Args      []any           `json:"args,omitempty"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (ActionExecuted) sessionEvent() {}

type Error struct {
	SessionID uuid.UUID       `json:"session_id"`
	Err       error           `json:"error"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Error) sessionEvent() {}

func (e Error) Error() string {
	return fmt.Sprintf("session_id: %s, error: %v", e.SessionID, e.Err)
}

// MarshalJSON implements custom JSON marshaling for UserMessage
func (u UserMessage) MarshalJSON() ([]byte, error) {
	result := userMessageJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", u.SessionID.String())
	if err != nil {
		return nil, err
	}

	msgBytes, err := json.Marshal(u.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return sjson.SetRawBytes(result, "message", msgBytes)
}

// UnmarshalJSON implements custom JSON unmarshaling for UserMessage
func (u *UserMessage) UnmarshalJSON(data []byte) error {
	if err := checkEventType(data, "user_message"); err != nil {
		return err
	}
	if err := readSessionID(data, &u.SessionID); err != nil {
		return err
	}

	message := gjson.GetBytes(data, "message")
	if !message.Exists() {
		return errors.New("missing required field 'message'")
	}
	if err := json.Unmarshal([]byte(message.Raw), &u.Message); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return nil
}

// MarshalJSON implements custom JSON marshaling for AssistantChunk
func (c AssistantChunk) MarshalJSON() ([]byte, error) {
	result := assistantChunkJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", c.SessionID.String())
	if err != nil {
		return nil, err
	}

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

// UnmarshalJSON implements custom JSON unmarshaling for AssistantChunk
func (c *AssistantChunk) UnmarshalJSON(data []byte) error {
	if err := checkEventType(data, "assistant_chunk"); err != nil {
		return err
	}
	if err := readSessionID(data, &c.SessionID); err != nil {
		return err
	}

	text := gjson.GetBytes(data, "text")
	if !text.Exists() {
		return errors.New("missing required field 'text'")
	}
	c.Text = text.String()

	return readTimestamp(data, &c.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for AssistantMessage
func (a AssistantMessage) MarshalJSON() ([]byte, error) {
	result := assistantMessageJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", a.SessionID.String())
	if err != nil {
		return nil, err
	}

	msgBytes, err := json.Marshal(a.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return sjson.SetRawBytes(result, "message", msgBytes)
}

// UnmarshalJSON implements custom JSON unmarshaling for AssistantMessage
func (a *AssistantMessage) UnmarshalJSON(data []byte) error {
	if err := checkEventType(data, "assistant_message"); err != nil {
		return err
	}
	if err := readSessionID(data, &a.SessionID); err != nil {
		return err
	}

	message := gjson.GetBytes(data, "message")
	if !message.Exists() {
		return errors.New("missing required field 'message'")
	}
	if err := json.Unmarshal([]byte(message.Raw), &a.Message); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return nil
}

// MarshalJSON implements custom JSON marshaling for ActionExecuted
func (a ActionExecuted) MarshalJSON() ([]byte, error) {
	result := actionExecutedJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", a.SessionID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "state_key", a.StateKey)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "setter_key", a.SetterKey)
	if err != nil {
		return nil, err
	}

	if len(a.Args) > 0 {
		argBytes, err := json.Marshal(a.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal args: %w", err)
		}
		result, err = sjson.SetRawBytes(result, "args", argBytes)
		if err != nil {
			return nil, err
		}
	}

	if !a.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", a.Timestamp.String())
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UnmarshalJSON implements custom JSON unmarshaling for ActionExecuted
func (a *ActionExecuted) UnmarshalJSON(data []byte) error {
	if err := checkEventType(data, "action_executed"); err != nil {
		return err
	}
	if err := readSessionID(data, &a.SessionID); err != nil {
		return err
	}

	stateKey := gjson.GetBytes(data, "state_key")
	if !stateKey.Exists() {
		return errors.New("missing required field 'state_key'")
	}
	a.StateKey = stateKey.String()

	setterKey := gjson.GetBytes(data, "setter_key")
	if !setterKey.Exists() {
		return errors.New("missing required field 'setter_key'")
	}
	a.SetterKey = setterKey.String()

	if args := gjson.GetBytes(data, "args"); args.Exists() {
		if err := json.Unmarshal([]byte(args.Raw), &a.Args); err != nil {
			return fmt.Errorf("invalid args: %w", err)
		}
	}

	return readTimestamp(data, &a.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for Error
func (e Error) MarshalJSON() ([]byte, error) {
	result := errorJSON

	var err error
	result, err = sjson.SetBytes(result, "session_id", e.SessionID.String())
	if err != nil {
		return nil, err
	}

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
	if err := checkEventType(data, "error"); err != nil {
		return err
	}
	if err := readSessionID(data, &e.SessionID); err != nil {
		return err
	}

	errMsg := gjson.GetBytes(data, "error")
	if !errMsg.Exists() {
		return errors.New("missing required field 'error'")
	}
	e.Err = errors.New(errMsg.String())

	return readTimestamp(data, &e.Timestamp)
}

func checkEventType(data []byte, want string) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}
	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != want {
		return fmt.Errorf("missing or invalid type, expected %q", want)
	}
	return nil
}

func readSessionID(data []byte, dst *uuid.UUID) error {
	sessionID := gjson.GetBytes(data, "session_id")
	if !sessionID.Exists() {
		return errors.New("missing required field 'session_id'")
	}
	if err := dst.UnmarshalText([]byte(sessionID.String())); err != nil {
		return fmt.Errorf("invalid session_id: %w", err)
	}
	return nil
}

func readTimestamp(data []byte, dst *strfmt.DateTime) error {
	if timestamp := gjson.GetBytes(data, "timestamp"); timestamp.Exists() {
		if err := dst.UnmarshalText([]byte(timestamp.String())); err != nil {
			return fmt.Errorf("invalid timestamp: %w", err)
		}
	}
	return nil
}

// ToJSON serializes an event with its type marker for broker transport.
func ToJSON(event Event) ([]byte, error) {
	return json.Marshal(event)
}

// FromJSON decodes a wire event by its type marker. Brokers use it to
// rebuild the concrete event on the subscriber side.
func FromJSON(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	switch kind := gjson.GetBytes(data, "type").String(); kind {
	case "user_message":
		var event UserMessage
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case "assistant_chunk":
		var event AssistantChunk
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case "assistant_message":
		var event AssistantMessage
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case "action_executed":
		var event ActionExecuted
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	case "error":
		var event Error
		if err := json.Unmarshal(data, &event); err != nil {
			return nil, err
		}
		return event, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", kind)
	}
}
