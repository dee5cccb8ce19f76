// Package state implements the capability registry: a keyed store of
// mutable application state plus named mutation functions (setters)
// exposed to an external agent caller.
//
// The registry is the surface an autonomous agent is allowed to act on.
// Agent-originated input is untrusted, so unknown keys, unknown setter
// names and malformed values are logged and ignored rather than allowed
// to crash a session.
package state

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/balrampariyarath/cedar-OS/pkg/jsonx"
	"github.com/balrampariyarath/cedar-OS/pkg/slogx"
	"github.com/balrampariyarath/cedar-OS/schema"
	"github.com/fogfish/opts"
)

// RegisteredState is one entry in the registry: a current value, an
// optional validator, an optional primary setter and a set of named
// custom setters.
type RegisteredState struct {
	Key           string
	Description   string
	Schema        schema.Validator
	PrimarySetter func(value any)

	value         any
	customSetters map[string]Setter
	placeholder   bool
}

// Value returns the entry's current value.
func (r *RegisteredState) Value() any { return r.value }

// Setters returns the entry's custom setters keyed by name.
func (r *RegisteredState) Setters() map[string]Setter {
	out := make(map[string]Setter, len(r.customSetters))
	for name, setter := range r.customSetters {
		out[name] = setter
	}
	return out
}

// RegisterOption configures a state entry at registration time.
type RegisterOption = opts.Option[RegisteredState]

var (
	// WithDescription attaches a human-readable description advertised
	// to the agent backend.
	WithDescription = opts.ForName[RegisteredState, string]("Description")

	// WithSchema attaches a validator; values failing it are rejected
	// and the previous value retained.
	WithSchema = opts.ForName[RegisteredState, schema.Validator]("Schema")

	// WithPrimarySetter attaches the function invoked by Write after
	// the stored value is updated.
	WithPrimarySetter = opts.ForName[RegisteredState, func(value any)]("PrimarySetter")
)

// WithSetters attaches custom setters at registration time.
func WithSetters(setters ...Setter) RegisterOption {
	return opts.Type[RegisteredState](func(r *RegisteredState) error {
		if r.customSetters == nil {
			r.customSetters = make(map[string]Setter, len(setters))
		}
		for _, setter := range setters {
			r.customSetters[setter.Name] = setter
		}
		return nil
	})
}

// Store holds registered states keyed by their unique key. Writes are
// funneled through a single mutex so no read observes a half-applied
// setter interleaved with a concurrent re-registration; reads go
// through a lock-free map.
type Store struct {
	mu     sync.Mutex
	states *haxmap.Map[string, *RegisteredState]
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{states: haxmap.New[string, *RegisteredState]()}
}

// Register creates a state entry, or refreshes the value of an existing
// one. Re-registration with a known key overwrites only the value and
// never drops setters already attached; this is the hot path invoked on
// every host state change to keep the registry mirror current. A
// placeholder created earlier by AddCustomSetters is promoted, keeping
// its setters.
func (s *Store) Register(key string, value any, options ...RegisterOption) error {
	entry := &RegisteredState{Key: key}
	if err := opts.Apply(entry, options); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found := s.states.Get(key)
	if found && !existing.placeholder {
		if !s.acceptValue(existing, value) {
			return nil
		}
		existing.value = value
		return nil
	}

	if found {
		// placeholder promotion: merge setters declared before the
		// owning value was registered
		if entry.customSetters == nil {
			entry.customSetters = make(map[string]Setter, len(existing.customSetters))
		}
		for name, setter := range existing.customSetters {
			if _, ok := entry.customSetters[name]; !ok {
				entry.customSetters[name] = setter
			}
		}
	}
	if entry.customSetters == nil {
		entry.customSetters = make(map[string]Setter)
	}

	if !s.acceptValue(entry, value) {
		value = nil
	}
	entry.value = value
	s.states.Set(key, entry)
	return nil
}

// acceptValue validates value against the entry's schema when one is
// attached. Rejections are logged and reported as false; they are never
// fatal.
func (s *Store) acceptValue(entry *RegisteredState, value any) bool {
	if entry.Schema == nil {
		return true
	}
	if err := entry.Schema.Validate(value); err != nil {
		slog.Warn("rejecting state value that fails schema validation",
			slog.String("key", entry.Key), slogx.Error(err))
		return false
	}
	return true
}

// Read returns the current value for key. It takes the store lock:
// haxmap only synchronizes the bucket lookup, not the entry fields a
// concurrent Write mutates.
func (s *Store) Read(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.states.Get(key)
	if !found {
		return nil, false
	}
	return entry.value, true
}

// Write updates the stored value and then invokes the entry's primary
// setter, if any. Unknown keys are logged and ignored.
func (s *Store) Write(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.states.Get(key)
	if !found {
		slog.Warn("write to unregistered state", slog.String("key", key))
		return
	}
	if !s.acceptValue(entry, value) {
		return
	}
	entry.value = value
	if entry.PrimarySetter != nil {
		entry.PrimarySetter(value)
	}
}

// AddCustomSetters merges setters into an existing entry, creating a
// placeholder entry when the key is not yet registered so that setters
// may be declared before the owning value is.
func (s *Store) AddCustomSetters(key string, setters ...Setter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, found := s.states.Get(key)
	if !found {
		entry = &RegisteredState{
			Key:           key,
			customSetters: make(map[string]Setter, len(setters)),
			placeholder:   true,
		}
		s.states.Set(key, entry)
	}
	for _, setter := range setters {
		entry.customSetters[setter.Name] = setter
	}
}

// ExecuteCustomSetter invokes the named setter with the entry's current
// value and the supplied arguments. A missing state or setter is a
// warning and a no-op: callers, typically an agent response router,
// must tolerate stale or hallucinated names. Arguments failing the
// setter's declared parameter shapes are likewise rejected softly.
// Errors returned by the setter's own execute function are returned to
// the caller.
func (s *Store) ExecuteCustomSetter(ctx context.Context, key, setterName string, args ...any) error {
	s.mu.Lock()

	entry, found := s.states.Get(key)
	if !found {
		s.mu.Unlock()
		slog.Warn("setter invoked on unregistered state",
			slog.String("key", key), slog.String("setter", setterName))
		return nil
	}

	setter, found := entry.customSetters[setterName]
	if !found {
		s.mu.Unlock()
		slog.Warn("unknown setter invoked",
			slog.String("key", key), slog.String("setter", setterName))
		return nil
	}

	if err := setter.checkArgs(args); err != nil {
		s.mu.Unlock()
		slog.Warn("setter arguments rejected",
			slog.String("key", key), slog.String("setter", setterName), slogx.Error(err))
		return nil
	}

	current := entry.value
	// The lock is released before invoking the setter: setters mutate
	// host state and call back into Register/Write to refresh the
	// mirror.
	s.mu.Unlock()

	return setter.Execute(ctx, current, args...)
}

// Capability is a serializable snapshot of one registry entry, used to
// advertise the capability surface to the agent backend.
type Capability struct {
	Key         string       `json:"key"`
	Description string       `json:"description,omitempty"`
	Setters     []SetterInfo `json:"setters,omitempty"`
}

// SetterInfo describes one setter for the capability snapshot. ArgsSchema
// is the declared parameter list rendered as a JSON schema object, the
// shape vendor backends take function parameters in.
type SetterInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  []Parameter    `json:"parameters,omitempty"`
	ArgsSchema  map[string]any `json:"argsSchema,omitempty"`
}

// DescribeCapabilities snapshots every non-placeholder entry's key,
// description and setter signatures, sorted by key.
func (s *Store) DescribeCapabilities() []Capability {
	s.mu.Lock()
	defer s.mu.Unlock()

	var caps []Capability
	s.states.ForEach(func(key string, entry *RegisteredState) bool {
		if entry.placeholder {
			return true
		}
		capability := Capability{Key: key, Description: entry.Description}
		for _, setter := range entry.customSetters {
			info := SetterInfo{
				Name:        setter.Name,
				Description: setter.Description,
				Parameters:  setter.Parameters,
			}
			if len(setter.Parameters) > 0 {
				if dynamic, err := jsonx.ToDynamicJSON(setter.ParameterSchema()); err == nil {
					info.ArgsSchema = dynamic
				}
			}
			capability.Setters = append(capability.Setters, info)
		}
		sortSetters(capability.Setters)
		caps = append(caps, capability)
		return true
	})
	sortCapabilities(caps)
	return caps
}

func sortSetters(setters []SetterInfo) {
	sort.Slice(setters, func(i, j int) bool { return setters[i].Name < setters[j].Name })
}

func sortCapabilities(caps []Capability) {
	sort.Slice(caps, func(i, j int) bool { return caps[i].Key < caps[j].Key })
}
