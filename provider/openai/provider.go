package openai

import (
	"context"
	"strings"
	"time"

	"github.com/balrampariyarath/cedar-OS/provider"
	"github.com/go-openapi/strfmt"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Provider struct {
	client *openai.Client
}

func New(cfg provider.OpenAI, options ...option.RequestOption) *Provider {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, options...)
	return &Provider{client: openai.NewClient(reqOpts...)}
}

func buildRequest(params provider.CallParams) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(params.SystemPrompt) != "" {
		msgs = append(msgs, openai.SystemMessage(params.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(params.Prompt))

	oaiParams := openai.ChatCompletionNewParams{
		Messages: openai.F(msgs),
		Model:    openai.F(params.Model),
		N:        openai.Int(1),
	}
	if params.Temperature > 0 {
		oaiParams.Temperature = openai.Float(params.Temperature)
	}
	if params.MaxTokens > 0 {
		oaiParams.MaxTokens = openai.Int(int64(params.MaxTokens))
	}
	return oaiParams
}

func (p *Provider) Complete(ctx context.Context, params provider.CallParams) (provider.Response, error) {
	chat, err := p.client.Chat.Completions.New(ctx, buildRequest(params))
	if err != nil {
		return provider.Response{}, err
	}
	return completionToResponse(chat), nil
}

func (p *Provider) Stream(ctx context.Context, params provider.CallParams, handler provider.Handler) error {
	strm := p.client.Chat.Completions.NewStreaming(ctx, buildRequest(params))
	defer strm.Close()

	var acc openai.ChatCompletionAccumulator
	for strm.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk := strm.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if text := chunk.Choices[0].Delta.Content; text != "" {
			handler(provider.Chunk{Text: text, Timestamp: strfmt.DateTime(time.Now())})
		}
	}
	if err := strm.Err(); err != nil {
		handler(provider.Error{Err: err, Timestamp: strfmt.DateTime(time.Now())})
		return err
	}

	if acc.Usage.TotalTokens > 0 {
		if frame, err := provider.UsageFrame(usageFromCompletion(&acc.ChatCompletion)); err == nil {
			handler(provider.Metadata{Data: frame})
		}
	}
	handler(provider.Done{})
	return nil
}

func completionToResponse(chat *openai.ChatCompletion) provider.Response {
	resp := provider.Response{Usage: usageFromCompletion(chat)}
	if len(chat.Choices) == 0 {
		return resp
	}
	resp.Text = chat.Choices[0].Message.Content
	resp.Object = provider.ObjectFromText(resp.Text)
	return resp
}

func usageFromCompletion(chat *openai.ChatCompletion) provider.Usage {
	return provider.Usage{
		PromptTokens:     int(chat.Usage.PromptTokens),
		CompletionTokens: int(chat.Usage.CompletionTokens),
		TotalTokens:      int(chat.Usage.TotalTokens),
	}
}


