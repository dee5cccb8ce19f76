package aisdk

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/balrampariyarath/cedar-OS/provider"
	"github.com/balrampariyarath/cedar-OS/provider/anthropic"
	"github.com/balrampariyarath/cedar-OS/provider/openai"
)

type vendorClient struct {
	build  func() provider.Client
	once   sync.Once
	client provider.Client
}

func (v *vendorClient) get() provider.Client {
	v.once.Do(func() { v.client = v.build() })
	return v.client
}

type Provider struct {
	vendors *haxmap.Map[string, *vendorClient]
}

func New(cfg provider.AISDK) *Provider {
	vendors := haxmap.New[string, *vendorClient]()
	if cfg.OpenAIKey != "" {
		vendors.Set("openai", &vendorClient{build: func() provider.Client {
			return openai.New(provider.OpenAI{APIKey: cfg.OpenAIKey})
		}})
	}
	if cfg.AnthropicKey != "" {
		vendors.Set("anthropic", &vendorClient{build: func() provider.Client {
			return anthropic.New(provider.Anthropic{APIKey: cfg.AnthropicKey})
		}})
	}
	return &Provider{vendors: vendors}
}

// resolve splits a "vendor/model" identifier and rewrites the params to
// carry the bare model name for the underlying client.
func (p *Provider) resolve(params provider.CallParams) (provider.Client, provider.CallParams, error) {
	vendor, model, ok := strings.Cut(params.Model, "/")
	if !ok {
		return nil, params, fmt.Errorf("model %q must take the form vendor/model", params.Model)
	}
	vc, ok := p.vendors.Get(vendor)
	if !ok {
		return nil, params, fmt.Errorf("no client configured for vendor %q", vendor)
	}
	params.Model = model
	return vc.get(), params, nil
}

func (p *Provider) Complete(ctx context.Context, params provider.CallParams) (provider.Response, error) {
	client, params, err := p.resolve(params)
	if err != nil {
		return provider.Response{}, err
	}
	return client.Complete(ctx, params)
}

func (p *Provider) Stream(ctx context.Context, params provider.CallParams, handler provider.Handler) error {
	client, params, err := p.resolve(params)
	if err != nil {
		return err
	}
	return client.Stream(ctx, params, handler)
}
