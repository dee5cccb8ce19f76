package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/balrampariyarath/cedar-OS/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(provider.OpenAI{APIKey: "sk-test", BaseURL: srv.URL + "/"})
}

func TestComplete_NormalizesEnvelope(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", gjson.GetBytes(body, "model").String())
		assert.Equal(t, "system", gjson.GetBytes(body, "messages.0.role").String())
		assert.Equal(t, "hi there", gjson.GetBytes(body, "messages.1.content").String())

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 0,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "{\"type\":\"action\",\"stateKey\":\"nodes\"}"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10}
		}`)
	})

	resp, err := p.Complete(context.Background(), provider.CallParams{
		Prompt:       "hi there",
		SystemPrompt: "be brief",
		Model:        "gpt-4o-mini",
	})
	require.NoError(t, err)

	assert.Equal(t, `{"type":"action","stateKey":"nodes"}`, resp.Text)
	assert.Equal(t, "nodes", resp.Object.Get("stateKey").String())
	assert.Equal(t, provider.Usage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10}, resp.Usage)
}

func TestComplete_PlainTextHasNoObject(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-2",
			"object": "chat.completion",
			"created": 0,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "plain prose"},
				"finish_reason": "stop"
			}]
		}`)
	})

	resp, err := p.Complete(context.Background(), provider.CallParams{Prompt: "hi", Model: "gpt-4o-mini"})
	require.NoError(t, err)

	assert.Equal(t, "plain prose", resp.Text)
	assert.False(t, resp.Object.Exists())
	assert.Zero(t, resp.Usage)
}

func TestStream_ChunksUsageThenDone(t *testing.T) {
	t.Parallel()

	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, `data: {"id":"c1","object":"chat.completion.chunk","created":0,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"role":"assistant","content":"hel"},"finish_reason":null}]}`+"\n\n")
		io.WriteString(w, `data: {"id":"c1","object":"chat.completion.chunk","created":0,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":"stop"}]}`+"\n\n")
		io.WriteString(w, `data: {"id":"c1","object":"chat.completion.chunk","created":0,"model":"gpt-4o-mini","choices":[],"usage":{"prompt_tokens":7,"completion_tokens":3,"total_tokens":10}}`+"\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	})

	var got []provider.StreamEvent
	err := p.Stream(context.Background(), provider.CallParams{Prompt: "hi", Model: "gpt-4o-mini"}, func(ev provider.StreamEvent) {
		got = append(got, ev)
	})
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, "hel", got[0].(provider.Chunk).Text)
	assert.Equal(t, "lo", got[1].(provider.Chunk).Text)

	usage := got[2].(provider.Metadata)
	assert.Equal(t, int64(10), usage.Data.Get("usage.totalTokens").Int())

	assert.IsType(t, provider.Done{}, got[3])
}
