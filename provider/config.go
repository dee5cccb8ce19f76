package provider

import (
	"fmt"
	"strings"
)

// Kind identifies a provider backend. The set is closed; the gateway
// builds its dispatch table over exactly these values at startup.
type Kind string

const (
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
	KindMastra    Kind = "mastra"
	KindAISDK     Kind = "ai-sdk"
	KindCustom    Kind = "custom"
)

// Config is the sealed union of provider configurations. Implementations
// live in this package only.
type Config interface {
	Kind() Kind

	// Validate reports malformed credentials or endpoints. It is
	// called before any client is built, so a bad config fails fast
	// instead of at the first network call.
	Validate() error

	// CheckParams rejects call parameters the kind cannot serve, for
	// example a missing model for a direct vendor. Checked before any
	// network I/O.
	CheckParams(params CallParams) error

	providerConfig()
}

// ConfigError reports a provider configuration or parameter mismatch.
type ConfigError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider config (%s): %s", e.Kind, e.Reason)
}

// OpenAI configures the direct OpenAI adapter.
type OpenAI struct {
	APIKey string
	// BaseURL overrides the default API endpoint, for compatible
	// self-hosted backends. Empty means the vendor default.
	BaseURL string
}

func (OpenAI) Kind() Kind       { return KindOpenAI }
func (OpenAI) providerConfig()  {}

func (c OpenAI) Validate() error {
	if c.APIKey == "" {
		return &ConfigError{Kind: KindOpenAI, Reason: "api key is required"}
	}
	return nil
}

func (OpenAI) CheckParams(params CallParams) error {
	if params.Model == "" {
		return &ConfigError{Kind: KindOpenAI, Reason: "model is required"}
	}
	return nil
}

// Anthropic configures the direct Anthropic adapter.
type Anthropic struct {
	APIKey  string
	BaseURL string
}

func (Anthropic) Kind() Kind       { return KindAnthropic }
func (Anthropic) providerConfig()  {}

func (c Anthropic) Validate() error {
	if c.APIKey == "" {
		return &ConfigError{Kind: KindAnthropic, Reason: "api key is required"}
	}
	return nil
}

func (Anthropic) CheckParams(params CallParams) error {
	if params.Model == "" {
		return &ConfigError{Kind: KindAnthropic, Reason: "model is required"}
	}
	return nil
}

// Mastra configures the agent-backend adapter. Calls are routed to
// BaseURL+Route; streaming appends the /stream suffix to the route.
type Mastra struct {
	BaseURL string
	// APIKey is optional. When set it is sent as a bearer token.
	APIKey string
}

func (Mastra) Kind() Kind       { return KindMastra }
func (Mastra) providerConfig()  {}

func (c Mastra) Validate() error {
	if c.BaseURL == "" {
		return &ConfigError{Kind: KindMastra, Reason: "base url is required"}
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return &ConfigError{Kind: KindMastra, Reason: "base url must be http or https"}
	}
	return nil
}

func (Mastra) CheckParams(params CallParams) error {
	if params.Route == "" {
		return &ConfigError{Kind: KindMastra, Reason: "route is required"}
	}
	return nil
}

// AISDK configures the multi-vendor routed adapter. Model identifiers
// take the form "vendor/model"; the vendor segment selects the
// credential set and underlying client.
type AISDK struct {
	OpenAIKey    string
	AnthropicKey string
}

func (AISDK) Kind() Kind       { return KindAISDK }
func (AISDK) providerConfig()  {}

func (c AISDK) Validate() error {
	if c.OpenAIKey == "" && c.AnthropicKey == "" {
		return &ConfigError{Kind: KindAISDK, Reason: "at least one vendor credential is required"}
	}
	return nil
}

func (c AISDK) CheckParams(params CallParams) error {
	if params.Model == "" {
		return &ConfigError{Kind: KindAISDK, Reason: "model is required"}
	}
	vendor, _, ok := strings.Cut(params.Model, "/")
	if !ok {
		return &ConfigError{Kind: KindAISDK, Reason: fmt.Sprintf("model %q must take the form vendor/model", params.Model)}
	}
	switch vendor {
	case "openai":
		if c.OpenAIKey == "" {
			return &ConfigError{Kind: KindAISDK, Reason: "no openai credential configured"}
		}
	case "anthropic":
		if c.AnthropicKey == "" {
			return &ConfigError{Kind: KindAISDK, Reason: "no anthropic credential configured"}
		}
	default:
		return &ConfigError{Kind: KindAISDK, Reason: fmt.Sprintf("unknown vendor %q", vendor)}
	}
	return nil
}

// Custom wraps a caller-supplied Client. The gateway applies no
// parameter checks beyond the client's own.
type Custom struct {
	Client Client
}

func (Custom) Kind() Kind       { return KindCustom }
func (Custom) providerConfig()  {}

func (c Custom) Validate() error {
	if c.Client == nil {
		return &ConfigError{Kind: KindCustom, Reason: "client is required"}
	}
	return nil
}

func (Custom) CheckParams(CallParams) error { return nil }
