// Package sse decodes text/event-stream HTTP response bodies into
// discrete named events. The decoder buffers partial data across read
// boundaries, so callers may hand it a network stream that splits
// events at arbitrary byte offsets.
package sse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// DefaultEventType is assumed for event blocks that carry no event: line.
const DefaultEventType = "message"

// EventTypeDone is the protocol's sole termination signal. Decoding
// stops as soon as a done event is seen, even when more bytes are
// already buffered.
const EventTypeDone = "done"

// eventTypeSuggestion marks payloads assembled token by token into
// flowing prose; its data lines are joined with single spaces instead
// of being concatenated directly.
const eventTypeSuggestion = "suggestion"

// ErrStreamClosed reports a connection that ended without a done event.
// The protocol treats that as an abnormal end, not a silent success.
var ErrStreamClosed = errors.New("sse: stream closed before done event")

// Event is one decoded server-sent event.
type Event struct {
	Type string
	Data string
}

// Handler receives decoded events. OnEvent is invoked for every event
// except the terminal done event, which is delivered through OnDone.
type Handler struct {
	OnEvent func(Event) error
	OnDone  func()
}

const readChunkSize = 4 << 10

// Decode reads r until a done event, an error, or context cancellation.
// Event blocks are terminated by a blank line; bytes are never lost or
// duplicated across reads. Malformed blocks are skipped with a debug
// log rather than aborting the stream.
func Decode(ctx context.Context, r io.Reader, handler Handler) error {
	if r == nil {
		return errors.New("sse: nil reader")
	}

	var pending bytes.Buffer
	chunk := make([]byte, readChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := r.Read(chunk)
		if n > 0 {
			pending.Write(chunk[:n])

			done, err := drainBlocks(&pending, handler)
			if err != nil {
				return err
			}
			if done {
				if handler.OnDone != nil {
					handler.OnDone()
				}
				return nil
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return ErrStreamClosed
			}
			// A read failing because the caller cancelled is a
			// cancellation, not a transport error.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("sse: read stream: %w", readErr)
		}
	}
}

// DecodeResponse validates the HTTP response, then decodes its body.
// A non-OK status or missing body fails immediately without reading.
func DecodeResponse(ctx context.Context, resp *http.Response, handler Handler) error {
	if resp == nil {
		return errors.New("sse: nil response")
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sse: unexpected status %d", resp.StatusCode)
	}
	if resp.Body == nil {
		return errors.New("sse: response has no body")
	}
	return Decode(ctx, resp.Body, handler)
}

// drainBlocks parses every complete event block currently buffered.
// It reports true when a done event was seen, in which case any bytes
// still buffered are discarded.
func drainBlocks(pending *bytes.Buffer, handler Handler) (bool, error) {
	for {
		raw := pending.Bytes()
		idx := bytes.Index(raw, []byte("\n\n"))
		if idx < 0 {
			return false, nil
		}

		block := string(raw[:idx])
		pending.Next(idx + 2)

		event, ok := parseBlock(block)
		if !ok {
			slog.Debug("skipping malformed event block", slog.String("block", block))
			continue
		}

		if event.Type == EventTypeDone {
			pending.Reset()
			return true, nil
		}

		if handler.OnEvent != nil {
			if err := handler.OnEvent(event); err != nil {
				return false, err
			}
		}
	}
}

// parseBlock splits one event block into its event: and data: fields.
// Unlabeled events default to type "message". Data lines concatenate
// with no separator, except suggestion events which join with spaces.
func parseBlock(block string) (Event, bool) {
	eventType := DefaultEventType
	var dataLines []string
	sawField := false

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			sawField = true
		case strings.HasPrefix(line, "data:"):
			value := strings.TrimPrefix(line, "data:")
			value = strings.TrimPrefix(value, " ")
			dataLines = append(dataLines, value)
			sawField = true
		case strings.HasPrefix(line, ":"):
			// comment line, ignored
		default:
			// unknown field, tolerated per the wire format
		}
	}

	if !sawField {
		return Event{}, false
	}

	separator := ""
	if eventType == eventTypeSuggestion {
		separator = " "
	}

	return Event{
		Type: eventType,
		Data: strings.Join(dataLines, separator),
	}, true
}
