package state

import (
	"context"
	"fmt"

	"github.com/balrampariyarath/cedar-OS/pkg/stdx"
	"github.com/fogfish/opts"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ExecuteFunc mutates one registered state entry. It receives the
// entry's current value followed by the caller-supplied arguments.
// Implementations should be safe to re-invoke with the same arguments:
// the agent backend may retry an action whose completion it could not
// observe.
type ExecuteFunc func(ctx context.Context, current any, args ...any) error

// Setter is a named, described, argument-typed mutation function
// attached to a state entry. The registry never owns the underlying
// storage; Execute calls back into host-owned update functions.
type Setter struct {
	Name        string
	Description string
	Parameters  []Parameter
	Execute     ExecuteFunc
}

// Parameter describes one argument of a setter. Type uses JSON schema
// primitive names (string, number, integer, boolean, object, array);
// an empty Type skips argument checking for that position.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
}

// SetterOption configures a Setter under construction.
type SetterOption = opts.Option[Setter]

var (
	// WithSetterDescription sets the human-readable setter description
	// advertised to the agent backend.
	WithSetterDescription = opts.ForName[Setter, string]("Description")
)

// WithParameters declares the setter's argument list in call order.
func WithParameters(parameters ...Parameter) SetterOption {
	return opts.Type[Setter](func(s *Setter) error {
		s.Parameters = append(s.Parameters, parameters...)
		return nil
	})
}

// NewSetter builds a Setter from a name, an execute function and
// options.
func NewSetter(name string, execute ExecuteFunc, options ...SetterOption) (Setter, error) {
	if name == "" {
		return Setter{}, fmt.Errorf("setter name is required")
	}
	if execute == nil {
		return Setter{}, fmt.Errorf("setter %s has no execute function", name)
	}

	setter := Setter{Name: name, Execute: execute}
	if err := opts.Apply(&setter, options); err != nil {
		return Setter{}, err
	}
	return setter, nil
}

// MustSetter is NewSetter with a panic on error, for setters declared
// at package init.
func MustSetter(name string, execute ExecuteFunc, options ...SetterOption) Setter {
	return stdx.Must1(NewSetter(name, execute, options...))
}

// ParameterSchema renders the declared parameter list as a JSON schema
// object so the capability surface can be advertised to the backend.
func (s Setter) ParameterSchema() *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: orderedmap.New[string, *jsonschema.Schema](),
	}

	var required []string
	for _, param := range s.Parameters {
		prop := &jsonschema.Schema{Description: param.Description}
		if param.Type != "" {
			prop.Type = param.Type
		}
		schema.Properties.Set(param.Name, prop)
		if !param.Optional {
			required = append(required, param.Name)
		}
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}

// checkArgs validates caller-supplied arguments against the declared
// parameter list. Positions with an empty Type are accepted as-is, so
// setters that never declared shapes keep the permissive behavior.
func (s Setter) checkArgs(args []any) error {
	minArgs := 0
	for _, p := range s.Parameters {
		if !p.Optional {
			minArgs++
		}
	}
	if len(args) < minArgs {
		return fmt.Errorf("setter %s expects at least %d args, got %d", s.Name, minArgs, len(args))
	}
	if len(s.Parameters) > 0 && len(args) > len(s.Parameters) {
		return fmt.Errorf("setter %s expects at most %d args, got %d", s.Name, len(s.Parameters), len(args))
	}

	for i, arg := range args {
		if i >= len(s.Parameters) {
			break
		}
		declared := s.Parameters[i].Type
		if declared == "" {
			continue
		}
		if !matchesJSONType(arg, declared) {
			return fmt.Errorf("setter %s arg %q: expected %s, got %T", s.Name, s.Parameters[i].Name, declared, arg)
		}
	}
	return nil
}

func matchesJSONType(value any, declared string) bool {
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number", "integer":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		}
		return false
	case "array":
		switch value.(type) {
		case []any:
			return true
		}
		return false
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
