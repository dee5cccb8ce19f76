package cedar

import (
	"github.com/balrampariyarath/cedar-OS/events"
	"github.com/balrampariyarath/cedar-OS/gateway"
	"github.com/balrampariyarath/cedar-OS/internal/broker"
	"github.com/balrampariyarath/cedar-OS/messages"
	"github.com/balrampariyarath/cedar-OS/prompt"
	"github.com/balrampariyarath/cedar-OS/state"
	"github.com/fogfish/opts"
	"github.com/nats-io/nats.go"
)

// Option configures a Session at construction time.
type Option = opts.Option[Session]

// WithSystemPrompt sets the base system prompt. The capability surface
// is appended to it on every round-trip.
func WithSystemPrompt(systemPrompt string) Option {
	return opts.Type[Session](func(s *Session) error {
		s.systemPrompt = systemPrompt
		return nil
	})
}

// WithDefaultModel is used when SendOptions omits a model.
func WithDefaultModel(model string) Option {
	return opts.Type[Session](func(s *Session) error {
		s.defaultModel = model
		return nil
	})
}

// WithDefaultRoute is used when SendOptions omits a route.
func WithDefaultRoute(route string) Option {
	return opts.Type[Session](func(s *Session) error {
		s.defaultRoute = route
		return nil
	})
}

func WithTemperature(temperature float64) Option {
	return opts.Type[Session](func(s *Session) error {
		s.temperature = temperature
		return nil
	})
}

func WithMaxTokens(maxTokens int) Option {
	return opts.Type[Session](func(s *Session) error {
		s.maxTokens = maxTokens
		return nil
	})
}

// WithStreaming selects between streaming and single-shot round-trips.
// Sessions stream by default.
func WithStreaming(enabled bool) Option {
	return opts.Type[Session](func(s *Session) error {
		s.streaming = enabled
		return nil
	})
}

// WithHook replaces the default logging hook. Use
// events.NewCompositeHook to keep logging alongside another observer.
func WithHook(hook events.Hook) Option {
	return opts.Type[Session](func(s *Session) error {
		s.hook = hook
		return nil
	})
}

// WithNATS publishes session events over the given connection instead
// of the in-process broker, so observers in other processes can follow
// the conversation.
func WithNATS(conn *nats.Conn) Option {
	return opts.Type[Session](func(s *Session) error {
		s.events = broker.NATS(conn)
		return nil
	})
}

// WithGateway supplies a prebuilt gateway, bypassing the provider
// configuration passed to New.
func WithGateway(gw *gateway.Gateway) Option {
	return opts.Type[Session](func(s *Session) error {
		s.gw = gw
		return nil
	})
}

// WithRegistry shares a capability registry across sessions.
func WithRegistry(registry *state.Store) Option {
	return opts.Type[Session](func(s *Session) error {
		s.registry = registry
		return nil
	})
}

// WithMessageStore shares a message store across sessions.
func WithMessageStore(store *messages.Store) Option {
	return opts.Type[Session](func(s *Session) error {
		s.store = store
		return nil
	})
}

// WithAssembler shares a context assembler across sessions.
func WithAssembler(assembler *prompt.Assembler) Option {
	return opts.Type[Session](func(s *Session) error {
		s.assembler = assembler
		return nil
	})
}
