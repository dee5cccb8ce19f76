// Package gateway fronts the vendor adapters behind a single call and
// stream surface. The dispatch table over provider kinds is built once
// at startup; an unknown kind is a construction error, never a runtime
// branch.
package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alphadose/haxmap"
	"github.com/balrampariyarath/cedar-OS/pkg/slogx"
	"github.com/balrampariyarath/cedar-OS/provider"
	"github.com/balrampariyarath/cedar-OS/provider/aisdk"
	"github.com/balrampariyarath/cedar-OS/provider/anthropic"
	"github.com/balrampariyarath/cedar-OS/provider/mastra"
	"github.com/balrampariyarath/cedar-OS/provider/openai"
)

type builderFunc func(provider.Config) (provider.Client, error)

var builders = func() *haxmap.Map[string, builderFunc] {
	reg := haxmap.New[string, builderFunc]()
	reg.Set(string(provider.KindOpenAI), func(cfg provider.Config) (provider.Client, error) {
		return openai.New(cfg.(provider.OpenAI)), nil
	})
	reg.Set(string(provider.KindAnthropic), func(cfg provider.Config) (provider.Client, error) {
		return anthropic.New(cfg.(provider.Anthropic)), nil
	})
	reg.Set(string(provider.KindMastra), func(cfg provider.Config) (provider.Client, error) {
		return mastra.New(cfg.(provider.Mastra), http.DefaultClient), nil
	})
	reg.Set(string(provider.KindAISDK), func(cfg provider.Config) (provider.Client, error) {
		return aisdk.New(cfg.(provider.AISDK)), nil
	})
	reg.Set(string(provider.KindCustom), func(cfg provider.Config) (provider.Client, error) {
		return cfg.(provider.Custom).Client, nil
	})
	return reg
}()

// Gateway validates call parameters against its configuration before
// delegating to the adapter built for the configured kind.
type Gateway struct {
	config provider.Config
	client provider.Client
}

func New(cfg provider.Config) (*Gateway, error) {
	if cfg == nil {
		return nil, &provider.ConfigError{Kind: "", Reason: "configuration is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	build, ok := builders.Get(string(cfg.Kind()))
	if !ok {
		return nil, &provider.ConfigError{Kind: cfg.Kind(), Reason: "no adapter registered"}
	}
	client, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return &Gateway{config: cfg, client: client}, nil
}

// Kind reports the configured provider kind.
func (g *Gateway) Kind() provider.Kind { return g.config.Kind() }

func (g *Gateway) Call(ctx context.Context, params provider.CallParams) (provider.Response, error) {
	if err := g.config.CheckParams(params); err != nil {
		return provider.Response{}, err
	}
	return g.client.Complete(ctx, params)
}

// Stream starts a streaming call and returns immediately. Events are
// delivered to the handler on the stream goroutine; the handle's Done
// channel yields the stream's final error, nil on clean completion and
// nil on abort. An abort is never surfaced to the handler as an error
// event.
func (g *Gateway) Stream(ctx context.Context, params provider.CallParams, handler provider.Handler) (*Handle, error) {
	if err := g.config.CheckParams(params); err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	handle := &Handle{cancel: cancel, done: make(chan error, 1)}

	go func() {
		defer cancel()

		err := g.client.Stream(streamCtx, params, func(event provider.StreamEvent) {
			// Events raced against an abort are dropped rather than
			// delivered to a handler that already moved on.
			if streamCtx.Err() != nil {
				return
			}
			handler(event)
		})
		if err != nil && streamCtx.Err() == nil {
			slog.Warn("stream failed", slogx.Error(err))
			handle.done <- err
			return
		}
		handle.done <- nil
	}()

	return handle, nil
}

// Handle controls one in-flight streaming call.
type Handle struct {
	cancel context.CancelFunc
	done   chan error
}

// Abort cancels the stream. Safe to call more than once and after the
// stream already finished.
func (h *Handle) Abort() { h.cancel() }

// Done yields the stream's final error once. Aborted streams yield nil.
func (h *Handle) Done() <-chan error { return h.done }
