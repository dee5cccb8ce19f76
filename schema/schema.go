// Package schema provides structural validation for values crossing the
// agent boundary: registered state values, setter arguments and
// structured agent responses. Validation is a black box behind the
// Validator interface so callers never depend on a particular schema
// library.
package schema

import (
	"errors"
	"fmt"
	"sync"

	"github.com/balrampariyarath/cedar-OS/pkg/stdx"
	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks a value against a declared shape. Implementations
// must be safe for concurrent use.
type Validator interface {
	Validate(value any) error
}

// ValidationError describes a value that failed validation. The wrapped
// error carries the library-level detail; Path points at the offending
// location when known.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema validation failed at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var compileCache sync.Map

// Compile builds a Validator from a raw JSON schema document. Compiled
// schemas are cached process-wide keyed on the document text.
func Compile(raw []byte) (Validator, error) {
	key := string(raw)
	if cached, ok := compileCache.Load(key); ok {
		if compiled, ok := cached.(*compiledValidator); ok {
			return compiled, nil
		}
	}

	compiled, err := jsv.CompileString("state.schema.json", key)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v := &compiledValidator{schema: compiled}
	compileCache.Store(key, v)
	return v, nil
}

// MustCompile is like Compile but panics on error. Use for schema
// literals known at build time.
func MustCompile(raw []byte) Validator {
	return stdx.Must1(Compile(raw))
}

type compiledValidator struct {
	schema *jsv.Schema
}

func (c *compiledValidator) Validate(value any) error {
	decoded, err := roundTrip(value)
	if err != nil {
		return &ValidationError{Err: err}
	}
	if err := c.schema.Validate(decoded); err != nil {
		var ve *jsv.ValidationError
		if errors.As(err, &ve) {
			return &ValidationError{Path: ve.InstanceLocation, Err: err}
		}
		return &ValidationError{Err: err}
	}
	return nil
}

var typeReflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

// For builds a Validator for the Go type T by reflecting a JSON schema
// from it and compiling that. Host code registering typed state can use
// this instead of writing schema documents by hand.
func For[T any]() (Validator, error) {
	var t T
	reflected := typeReflector.Reflect(&t)
	reflected.Version = ""
	raw, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}
	return Compile(raw)
}

// roundTrip normalizes a Go value into the generic JSON shape the
// validator operates on.
func roundTrip(value any) (any, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return decoded, nil
}
