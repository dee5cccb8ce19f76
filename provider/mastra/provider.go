package mastra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/balrampariyarath/cedar-OS/provider"
	"github.com/balrampariyarath/cedar-OS/sse"
	"github.com/go-openapi/strfmt"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func New(cfg provider.Mastra, client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{}
	}
	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

func buildBody(params provider.CallParams) ([]byte, error) {
	body := []byte(`{}`)

	var err error
	body, err = sjson.SetBytes(body, "prompt", params.Prompt)
	if err != nil {
		return nil, err
	}
	if params.SystemPrompt != "" {
		body, err = sjson.SetBytes(body, "systemPrompt", params.SystemPrompt)
		if err != nil {
			return nil, err
		}
	}
	if params.Temperature > 0 {
		body, err = sjson.SetBytes(body, "temperature", params.Temperature)
		if err != nil {
			return nil, err
		}
	}
	if params.MaxTokens > 0 {
		body, err = sjson.SetBytes(body, "maxTokens", params.MaxTokens)
		if err != nil {
			return nil, err
		}
	}
	for key, value := range params.Extra {
		body, err = sjson.SetBytes(body, key, value)
		if err != nil {
			return nil, fmt.Errorf("extra field %q: %w", key, err)
		}
	}
	return body, nil
}

func (p *Provider) newRequest(ctx context.Context, route string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	return req, nil
}

func (p *Provider) Complete(ctx context.Context, params provider.CallParams) (provider.Response, error) {
	body, err := buildBody(params)
	if err != nil {
		return provider.Response{}, err
	}

	req, err := p.newRequest(ctx, params.Route, body)
	if err != nil {
		return provider.Response{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return provider.Response{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Response{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.Response{}, fmt.Errorf("backend returned %s: %s", resp.Status, bytes.TrimSpace(payload))
	}

	return parseResponse(payload), nil
}

// parseResponse accepts both envelope shapes the backend emits: a JSON
// object with text/content plus optional usage and object fields, or a
// bare string body.
func parseResponse(payload []byte) provider.Response {
	if !gjson.ValidBytes(payload) {
		return provider.Response{Text: string(bytes.TrimSpace(payload))}
	}

	parsed := gjson.ParseBytes(payload)
	if parsed.Type == gjson.String {
		return provider.Response{Text: parsed.String()}
	}

	var resp provider.Response
	if text := parsed.Get("text"); text.Exists() {
		resp.Text = text.String()
	} else if content := parsed.Get("content"); content.Exists() {
		resp.Text = content.String()
	}

	if object := parsed.Get("object"); object.IsObject() {
		resp.Object = object
	} else if resp.Text == "" && parsed.IsObject() {
		// No envelope fields at all: the whole body is the directive.
		resp.Object = parsed
	}

	if usage := parsed.Get("usage"); usage.Exists() {
		resp.Usage = provider.Usage{
			PromptTokens:     int(usage.Get("promptTokens").Int()),
			CompletionTokens: int(usage.Get("completionTokens").Int()),
			TotalTokens:      int(usage.Get("totalTokens").Int()),
		}
	}
	return resp
}

func (p *Provider) Stream(ctx context.Context, params provider.CallParams, handler provider.Handler) error {
	body, err := buildBody(params)
	if err != nil {
		return err
	}

	req, err := p.newRequest(ctx, params.Route+"/stream", body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		handler(provider.Error{Err: err, Timestamp: strfmt.DateTime(time.Now())})
		return err
	}

	err = sse.DecodeResponse(ctx, resp, sse.Handler{
		OnEvent: func(event sse.Event) error {
			// A backend error frame is terminal: stop decoding so
			// nothing trails the Error event.
			if event.Type == "error" {
				return fmt.Errorf("backend stream error: %s", event.Data)
			}
			handler(toStreamEvent(event))
			return nil
		},
		OnDone: func() {
			handler(provider.Done{})
		},
	})
	if err != nil {
		handler(provider.Error{Err: err, Timestamp: strfmt.DateTime(time.Now())})
		return err
	}
	return nil
}

func toStreamEvent(event sse.Event) provider.StreamEvent {
	switch event.Type {
	case sse.DefaultEventType, "chunk":
		return provider.Chunk{Text: event.Data, Timestamp: strfmt.DateTime(time.Now())}
	default:
		return provider.Metadata{Data: metadataPayload(event)}
	}
}

// metadataPayload preserves structured frames verbatim and wraps the
// rest so the event type survives routing.
func metadataPayload(event sse.Event) gjson.Result {
	if obj := provider.ObjectFromText(event.Data); obj.Exists() {
		return obj
	}
	raw := []byte(`{}`)
	raw, _ = sjson.SetBytes(raw, "type", event.Type)
	raw, _ = sjson.SetBytes(raw, "data", event.Data)
	return gjson.ParseBytes(raw)
}
