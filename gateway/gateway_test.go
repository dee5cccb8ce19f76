package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/balrampariyarath/cedar-OS/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient plays back a fixed sequence of stream events and a
// final error, and records the params it was called with.
type scriptedClient struct {
	response provider.Response
	events   []provider.StreamEvent
	finalErr error

	lastParams provider.CallParams
	blockOnCtx bool
}

func (c *scriptedClient) Complete(_ context.Context, params provider.CallParams) (provider.Response, error) {
	c.lastParams = params
	return c.response, c.finalErr
}

func (c *scriptedClient) Stream(ctx context.Context, params provider.CallParams, handler provider.Handler) error {
	c.lastParams = params
	for _, event := range c.events {
		handler(event)
	}
	if c.blockOnCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	return c.finalErr
}

func newTestGateway(t *testing.T, client provider.Client) *Gateway {
	t.Helper()
	g, err := New(provider.Custom{Client: client})
	require.NoError(t, err)
	return g
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)

	_, err = New(provider.OpenAI{})
	var cfgErr *provider.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, provider.KindOpenAI, cfgErr.Kind)
}

func TestNew_BuildsEveryKind(t *testing.T) {
	t.Parallel()

	configs := []provider.Config{
		provider.OpenAI{APIKey: "k"},
		provider.Anthropic{APIKey: "k"},
		provider.Mastra{BaseURL: "http://localhost:4111"},
		provider.AISDK{OpenAIKey: "k"},
		provider.Custom{Client: &scriptedClient{}},
	}
	for _, cfg := range configs {
		g, err := New(cfg)
		require.NoError(t, err, "kind %s", cfg.Kind())
		assert.Equal(t, cfg.Kind(), g.Kind())
	}
}

func TestCall_DelegatesToClient(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{response: provider.Response{Text: "hi there"}}
	g := newTestGateway(t, client)

	resp, err := g.Call(context.Background(), provider.CallParams{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text)
	assert.Equal(t, "hi", client.lastParams.Prompt)
}

func TestCall_ChecksParamsBeforeIO(t *testing.T) {
	t.Parallel()

	// A mastra config demands a route; the client must not be reached.
	g, err := New(provider.Mastra{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = g.Call(context.Background(), provider.CallParams{Prompt: "hi"})
	var cfgErr *provider.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestStream_DeliversEventsThenNilDone(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{events: []provider.StreamEvent{
		provider.Chunk{Text: "hel"},
		provider.Chunk{Text: "lo"},
		provider.Done{},
	}}
	g := newTestGateway(t, client)

	var got []provider.StreamEvent
	events := make(chan provider.StreamEvent, 8)
	handle, err := g.Stream(context.Background(), provider.CallParams{Prompt: "hi"}, func(ev provider.StreamEvent) {
		events <- ev
	})
	require.NoError(t, err)

	require.NoError(t, <-handle.Done())
	close(events)
	for ev := range events {
		got = append(got, ev)
	}

	require.Len(t, got, 3)
	assert.Equal(t, provider.Chunk{Text: "hel"}, got[0])
	assert.Equal(t, provider.Chunk{Text: "lo"}, got[1])
	assert.Equal(t, provider.Done{}, got[2])
}

func TestStream_FailureReportedOnDone(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	client := &scriptedClient{finalErr: boom}
	g := newTestGateway(t, client)

	handle, err := g.Stream(context.Background(), provider.CallParams{Prompt: "hi"}, func(provider.StreamEvent) {})
	require.NoError(t, err)

	assert.ErrorIs(t, <-handle.Done(), boom)
}

func TestStream_AbortYieldsNilAndIsIdempotent(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{blockOnCtx: true}
	g := newTestGateway(t, client)

	var sawError bool
	handle, err := g.Stream(context.Background(), provider.CallParams{Prompt: "hi"}, func(ev provider.StreamEvent) {
		if _, ok := ev.(provider.Error); ok {
			sawError = true
		}
	})
	require.NoError(t, err)

	handle.Abort()
	handle.Abort()

	select {
	case err := <-handle.Done():
		assert.NoError(t, err, "abort is not a stream failure")
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish after abort")
	}
	assert.False(t, sawError, "abort must not reach the handler as an error event")

	// Aborting after completion stays safe.
	handle.Abort()
}
