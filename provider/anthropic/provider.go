package anthropic

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/balrampariyarath/cedar-OS/provider"
	"github.com/go-openapi/strfmt"
)

const defaultMaxTokens = 4096

type Provider struct {
	client anthropic.Client
}

func New(cfg provider.Anthropic, options ...option.RequestOption) *Provider {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, options...)
	return &Provider{client: anthropic.NewClient(reqOpts...)}
}

func buildRequest(params provider.CallParams) anthropic.MessageNewParams {
	maxTokens := params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(params.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(params.Prompt)),
		},
	}
	if strings.TrimSpace(params.SystemPrompt) != "" {
		req.System = []anthropic.TextBlockParam{{Type: "text", Text: params.SystemPrompt}}
	}
	if params.Temperature > 0 {
		req.Temperature = anthropic.Float(params.Temperature)
	}
	return req
}

func (p *Provider) Complete(ctx context.Context, params provider.CallParams) (provider.Response, error) {
	msg, err := p.client.Messages.New(ctx, buildRequest(params))
	if err != nil {
		return provider.Response{}, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}

	resp := provider.Response{
		Text: text.String(),
		Usage: provider.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
	resp.Object = provider.ObjectFromText(resp.Text)
	return resp, nil
}

func (p *Provider) Stream(ctx context.Context, params provider.CallParams, handler provider.Handler) error {
	stream := p.client.Messages.NewStreaming(ctx, buildRequest(params))
	defer stream.Close()

	var usage provider.Usage
	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		event := stream.Current()
		switch event.Type {
		case "message_start":
			start := event.AsMessageStart()
			usage.PromptTokens = int(start.Message.Usage.InputTokens)

		case "content_block_delta":
			delta := event.AsContentBlockDelta().Delta
			if delta.Type == "text_delta" && delta.Text != "" {
				handler(provider.Chunk{Text: delta.Text, Timestamp: strfmt.DateTime(time.Now())})
			}

		case "message_delta":
			usage.CompletionTokens = int(event.AsMessageDelta().Usage.OutputTokens)

		case "message_stop":
			usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
			if frame, err := provider.UsageFrame(usage); err == nil {
				handler(provider.Metadata{Data: frame})
			}
			handler(provider.Done{})
			return nil
		}
	}
	if err := stream.Err(); err != nil {
		handler(provider.Error{Err: err, Timestamp: strfmt.DateTime(time.Now())})
		return err
	}

	// The backend closed the stream without a message_stop.
	handler(provider.Done{})
	return nil
}
