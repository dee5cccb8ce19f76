package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.Error(t, OpenAI{}.Validate())
	assert.NoError(t, OpenAI{APIKey: "sk-test"}.Validate())

	assert.Error(t, Anthropic{}.Validate())
	assert.NoError(t, Anthropic{APIKey: "sk-ant-test"}.Validate())

	assert.Error(t, Mastra{}.Validate())
	assert.Error(t, Mastra{BaseURL: "localhost:4111"}.Validate())
	assert.NoError(t, Mastra{BaseURL: "http://localhost:4111"}.Validate())

	assert.Error(t, AISDK{}.Validate())
	assert.NoError(t, AISDK{OpenAIKey: "sk-test"}.Validate())

	assert.Error(t, Custom{}.Validate())
}

func TestCheckParams_ModelRequired(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		OpenAI{APIKey: "k"},
		Anthropic{APIKey: "k"},
		AISDK{OpenAIKey: "k"},
	} {
		err := cfg.CheckParams(CallParams{Prompt: "hi"})
		require.Error(t, err, "kind %s", cfg.Kind())

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, cfg.Kind(), cfgErr.Kind)
	}
}

func TestCheckParams_RouteRequired(t *testing.T) {
	t.Parallel()

	cfg := Mastra{BaseURL: "http://localhost:4111"}
	assert.Error(t, cfg.CheckParams(CallParams{Prompt: "hi", Model: "gpt-4o"}))
	assert.NoError(t, cfg.CheckParams(CallParams{Prompt: "hi", Route: "/chat"}))
}

func TestCheckParams_AISDKVendorRouting(t *testing.T) {
	t.Parallel()

	cfg := AISDK{OpenAIKey: "k"}
	assert.NoError(t, cfg.CheckParams(CallParams{Model: "openai/gpt-4o"}))
	assert.Error(t, cfg.CheckParams(CallParams{Model: "gpt-4o"}), "missing vendor segment")
	assert.Error(t, cfg.CheckParams(CallParams{Model: "anthropic/claude-sonnet-4-0"}), "no anthropic credential")
	assert.Error(t, cfg.CheckParams(CallParams{Model: "mistral/large"}), "unknown vendor")
}

func TestObjectFromText(t *testing.T) {
	t.Parallel()

	obj := ObjectFromText(`  {"type":"action","stateKey":"nodes"}  `)
	require.True(t, obj.Exists())
	assert.Equal(t, "action", obj.Get("type").String())

	assert.False(t, ObjectFromText("plain prose").Exists())
	assert.False(t, ObjectFromText(`["not","an","object"]`).Exists())
	assert.False(t, ObjectFromText(`{"truncated":`).Exists())
}

func TestUsageFrame(t *testing.T) {
	t.Parallel()

	frame, err := UsageFrame(Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	require.NoError(t, err)
	assert.EqualValues(t, 15, frame.Get("usage.totalTokens").Int())
}
