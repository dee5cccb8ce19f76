package cedar

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/balrampariyarath/cedar-OS/events"
	"github.com/balrampariyarath/cedar-OS/gateway"
	"github.com/balrampariyarath/cedar-OS/internal/broker"
	"github.com/balrampariyarath/cedar-OS/messages"
	"github.com/balrampariyarath/cedar-OS/pkg/uuidx"
	"github.com/balrampariyarath/cedar-OS/prompt"
	"github.com/balrampariyarath/cedar-OS/provider"
	"github.com/balrampariyarath/cedar-OS/state"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Phase is the session's observable position in its round-trip state
// machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSending   Phase = "sending"
	PhaseStreaming Phase = "streaming"
	PhaseWaiting   Phase = "waiting"
	PhaseRouting   Phase = "routing"
	PhaseError     Phase = "error"
)

// failureMessage is what the user sees when a round-trip fails for any
// reason other than an abort.
const failureMessage = "Something went wrong while talking to the assistant. Please try again."

// Session drives one conversation against one provider configuration.
// A session owns its message store, capability registry and context
// assembler; all of them are also reachable directly so host code can
// register state and context outside a round-trip.
type Session struct {
	id uuid.UUID

	registry  *state.Store
	store     *messages.Store
	assembler *prompt.Assembler
	gw        *gateway.Gateway
	hook      events.Hook
	events    broker.Broker
	topic     broker.Topic

	systemPrompt string
	defaultModel string
	defaultRoute string
	temperature  float64
	maxTokens    int
	streaming    bool

	mu         sync.Mutex
	phase      Phase
	processing bool
	current    *inflight
}

// inflight identifies one round-trip so a superseded call cannot tear
// down the state of the call that replaced it.
type inflight struct {
	cancel context.CancelFunc
}

// SendOptions shapes one round-trip. Content, when set, replaces the
// assembler's editor document before the prompt is built; empty Model
// and Route fall back to the session defaults.
type SendOptions struct {
	Content string
	Model   string
	Route   string
	Extra   map[string]any

	_ struct{}
}

func New(cfg provider.Config, options ...Option) (*Session, error) {
	s := &Session{
		id:        uuidx.New(),
		phase:     PhaseIdle,
		registry:  state.NewStore(),
		store:     messages.NewStore(),
		assembler: prompt.NewAssembler(),
		hook:      events.LoggingHook(),
		events:    broker.Local(),
		streaming: true,
	}
	if err := opts.Apply(s, options); err != nil {
		return nil, err
	}

	if s.gw == nil {
		gw, err := gateway.New(cfg)
		if err != nil {
			return nil, err
		}
		s.gw = gw
	}
	s.topic = s.events.Topic(context.Background(), "cedar.session."+s.id.String())
	return s, nil
}

func (s *Session) ID() uuid.UUID               { return s.id }
func (s *Session) Registry() *state.Store      { return s.registry }
func (s *Session) Messages() *messages.Store   { return s.store }
func (s *Session) Context() *prompt.Assembler  { return s.assembler }
func (s *Session) Subscribe(ctx context.Context, hook events.Hook) (broker.Subscription, error) {
	return s.topic.Subscribe(ctx, hook)
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

func (s *Session) setPhase(phase Phase) {
	s.mu.Lock()
	s.phase = phase
	s.mu.Unlock()
}

// Abort cancels the in-flight round-trip, if any. Safe to call at any
// time; an abort never produces a failure message.
func (s *Session) Abort() {
	s.mu.Lock()
	run := s.current
	s.mu.Unlock()
	if run != nil {
		run.cancel()
	}
}

// begin aborts any prior in-flight round-trip and installs this one as
// the abort target.
func (s *Session) begin(ctx context.Context) (context.Context, *inflight) {
	sendCtx, cancel := context.WithCancel(ctx)
	run := &inflight{cancel: cancel}

	s.mu.Lock()
	prev := s.current
	s.current = run
	s.processing = true
	s.phase = PhaseSending
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}
	return sendCtx, run
}

// finish releases a round-trip's resources. A call that was superseded
// by a newer one leaves the session state alone: it belongs to the
// newer call now.
func (s *Session) finish(run *inflight) {
	run.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != run {
		return
	}
	if s.phase != PhaseError {
		s.phase = PhaseIdle
	}
	s.processing = false
	s.current = nil
}

// SendMessage runs one full round-trip: assemble the prompt, append the
// user message, call the provider, route the result. It blocks until
// the round-trip finishes; starting a new round-trip from another
// goroutine aborts this one. An aborted round-trip returns nil without
// appending anything. Any other failure appends a generic assistant
// failure message and returns the error.
func (s *Session) SendMessage(ctx context.Context, options SendOptions) error {
	sendCtx, run := s.begin(ctx)
	defer s.finish(run)

	if options.Content != "" {
		s.assembler.SetEditorContent(prompt.DocumentFromText(options.Content))
	}

	fullPrompt := s.assembler.StringifyForPrompt()
	userText := s.assembler.StringifyEditorContent()

	userMsg := s.store.Append(messages.New(messages.RoleUser, messages.TypeText, userText))
	s.hook.OnUserMessage(sendCtx, userMsg)
	s.publish(events.UserMessage{SessionID: s.id, Message: userMsg})

	// Mentions are one-shot: they ride along with the message that
	// introduced them and are gone for the next round-trip.
	s.assembler.ClearBySource(prompt.SourceMention)

	params := s.buildParams(fullPrompt, options)

	var err error
	if s.streaming {
		err = s.runStream(sendCtx, params)
	} else {
		err = s.runOnce(sendCtx, params)
	}

	if sendCtx.Err() != nil {
		// Aborted or caller cancelled: not an error, nothing appended.
		return nil
	}
	if err != nil {
		s.setPhase(PhaseError)
		s.hook.OnError(sendCtx, err)
		s.publish(events.Error{SessionID: s.id, Err: err, Timestamp: strfmt.DateTime(time.Now())})
		s.appendMessage(sendCtx, messages.New(messages.RoleAssistant, messages.TypeText, failureMessage))
		return err
	}
	return nil
}

func (s *Session) buildParams(fullPrompt string, options SendOptions) provider.CallParams {
	model := options.Model
	if model == "" {
		model = s.defaultModel
	}
	route := options.Route
	if route == "" {
		route = s.defaultRoute
	}
	return provider.CallParams{
		Prompt:       fullPrompt,
		SystemPrompt: s.composeSystemPrompt(),
		Model:        model,
		Route:        route,
		Temperature:  s.temperature,
		MaxTokens:    s.maxTokens,
		Extra:        options.Extra,
	}
}

// composeSystemPrompt appends the capability surface to the configured
// system prompt so the backend knows which state it may act on.
func (s *Session) composeSystemPrompt() string {
	capabilities := s.registry.DescribeCapabilities()
	if len(capabilities) == 0 {
		return s.systemPrompt
	}

	var b strings.Builder
	b.WriteString(s.systemPrompt)
	if s.systemPrompt != "" {
		b.WriteString("\n\n")
	}
	b.WriteString("You can modify application state by responding with a JSON object ")
	b.WriteString(`{"type":"action","stateKey":...,"setterKey":...,"args":[...]}. `)
	b.WriteString("Available state:\n")
	b.WriteString(state.DescribeForPrompt(capabilities))
	return b.String()
}

func (s *Session) runOnce(ctx context.Context, params provider.CallParams) error {
	s.setPhase(PhaseWaiting)

	resp, err := s.gw.Call(ctx, params)
	if err != nil {
		return err
	}

	s.setPhase(PhaseRouting)
	s.handleResult(ctx, resp.Text, resp.Object)
	return nil
}

func (s *Session) runStream(ctx context.Context, params provider.CallParams) error {
	s.setPhase(PhaseStreaming)

	var (
		text    strings.Builder
		payload gjson.Result
	)
	handle, err := s.gw.Stream(ctx, params, func(event provider.StreamEvent) {
		switch ev := event.(type) {
		case provider.Chunk:
			text.WriteString(ev.Text)
			s.hook.OnAssistantChunk(ctx, ev.Text)
			s.publish(events.AssistantChunk{SessionID: s.id, Text: ev.Text, Timestamp: ev.Timestamp})
		case provider.Metadata:
			// The last structured frame wins; routing happens once the
			// stream is complete.
			if ev.Data.Get("type").Exists() {
				payload = ev.Data
			}
		}
	})
	if err != nil {
		return err
	}

	select {
	case err = <-handle.Done():
	case <-ctx.Done():
		handle.Abort()
		<-handle.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.setPhase(PhaseRouting)
	s.handleResult(ctx, text.String(), payload)
	return nil
}

// appendMessage stores a backend-authored message and tells observers.
func (s *Session) appendMessage(ctx context.Context, msg messages.Message) {
	appended := s.store.Append(msg)
	s.hook.OnAssistantMessage(ctx, appended)
	s.publish(events.AssistantMessage{SessionID: s.id, Message: appended})
}

func (s *Session) publish(event events.Event) {
	// Broker delivery is best effort; observers must not stall a
	// round-trip.
	_ = s.topic.Publish(context.Background(), event)
}
