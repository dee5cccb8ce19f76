package state

import (
	"context"
	"sync"
	"testing"

	"github.com/balrampariyarath/cedar-OS/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ValueOnlyReRegistrationPreservesSetters(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Register("nodes", []any{"n1"}))

	store.AddCustomSetters("nodes", MustSetter("removeNode", func(ctx context.Context, current any, args ...any) error {
		return nil
	}))

	require.NoError(t, store.Register("nodes", []any{"n1", "n2"}))

	entry, found := store.states.Get("nodes")
	require.True(t, found)
	assert.Equal(t, []any{"n1", "n2"}, entry.Value())
	assert.Contains(t, entry.Setters(), "removeNode")
}

func TestAddCustomSetters_CreatesPlaceholder(t *testing.T) {
	store := NewStore()

	store.AddCustomSetters("nodes", MustSetter("addNode", func(ctx context.Context, current any, args ...any) error {
		return nil
	}))

	// placeholder is invisible to the capability snapshot
	assert.Empty(t, store.DescribeCapabilities())

	value, ok := store.Read("nodes")
	assert.True(t, ok)
	assert.Nil(t, value)

	// first real registration promotes the placeholder, keeping setters
	require.NoError(t, store.Register("nodes", []string{"n1"}, WithDescription("diagram nodes")))
	entry, found := store.states.Get("nodes")
	require.True(t, found)
	assert.False(t, entry.placeholder)
	assert.Contains(t, entry.Setters(), "addNode")

	caps := store.DescribeCapabilities()
	require.Len(t, caps, 1)
	assert.Equal(t, "nodes", caps[0].Key)
	require.Len(t, caps[0].Setters, 1)
	assert.Equal(t, "addNode", caps[0].Setters[0].Name)
}

func TestExecuteCustomSetter_UnknownKeyAndSetterAreNoOps(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	assert.NoError(t, store.ExecuteCustomSetter(ctx, "missing", "whatever"))

	var invoked bool
	require.NoError(t, store.Register("nodes", nil, WithSetters(
		MustSetter("addNode", func(ctx context.Context, current any, args ...any) error {
			invoked = true
			return nil
		}),
	)))

	assert.NoError(t, store.ExecuteCustomSetter(ctx, "nodes", "hallucinated"))
	assert.False(t, invoked)
}

func TestExecuteCustomSetter_InvokesWithCurrentValue(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	nodes := []string{"n1", "n2"}
	var gotCurrent any
	var gotArgs []any

	require.NoError(t, store.Register("nodes", nodes, WithSetters(
		MustSetter("removeNode", func(ctx context.Context, current any, args ...any) error {
			gotCurrent = current
			gotArgs = args

			remaining := current.([]string)[:1]
			store.Write("nodes", remaining)
			return nil
		}),
	)))

	require.NoError(t, store.ExecuteCustomSetter(ctx, "nodes", "removeNode", "n1"))
	assert.Equal(t, nodes, gotCurrent)
	assert.Equal(t, []any{"n1"}, gotArgs)
}

func TestExecuteCustomSetter_EffectObservableAfterCompletion(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Register("nodes", []string{"n1", "n2"}, WithSetters(
		MustSetter("removeNode", func(ctx context.Context, current any, args ...any) error {
			var remaining []string
			for _, n := range current.([]string) {
				if n != args[0].(string) {
					remaining = append(remaining, n)
				}
			}
			store.Write("nodes", remaining)
			return nil
		}),
	)))

	require.NoError(t, store.ExecuteCustomSetter(ctx, "nodes", "removeNode", "n1"))
	value, ok := store.Read("nodes")
	require.True(t, ok)
	assert.Equal(t, []string{"n2"}, value)
}

func TestExecuteCustomSetter_ArgShapeMismatchIsSoft(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var invoked bool
	require.NoError(t, store.Register("nodes", nil, WithSetters(
		MustSetter("addNode", func(ctx context.Context, current any, args ...any) error {
			invoked = true
			return nil
		}, WithParameters(Parameter{Name: "node", Type: "object"})),
	)))

	assert.NoError(t, store.ExecuteCustomSetter(ctx, "nodes", "addNode", "not an object"))
	assert.False(t, invoked)

	assert.NoError(t, store.ExecuteCustomSetter(ctx, "nodes", "addNode", map[string]any{"title": "X"}))
	assert.True(t, invoked)
}

func TestWrite_PrimarySetterAndUnknownKey(t *testing.T) {
	store := NewStore()

	var mirrored any
	require.NoError(t, store.Register("title", "draft",
		WithPrimarySetter(func(value any) { mirrored = value })))

	store.Write("title", "final")
	assert.Equal(t, "final", mirrored)

	value, _ := store.Read("title")
	assert.Equal(t, "final", value)

	// unknown key logs and no-ops
	store.Write("missing", 42)
}

func TestWrite_SchemaRejectionRetainsValue(t *testing.T) {
	store := NewStore()
	v := schema.MustCompile([]byte(`{"type":"string"}`))

	require.NoError(t, store.Register("title", "draft", WithSchema(v)))

	store.Write("title", 42)
	value, _ := store.Read("title")
	assert.Equal(t, "draft", value)

	store.Write("title", "final")
	value, _ = store.Read("title")
	assert.Equal(t, "final", value)
}

func TestDescribeCapabilities_Sorted(t *testing.T) {
	store := NewStore()
	noop := func(ctx context.Context, current any, args ...any) error { return nil }

	require.NoError(t, store.Register("zebra", nil, WithSetters(MustSetter("b", noop), MustSetter("a", noop))))
	require.NoError(t, store.Register("alpha", nil))

	caps := store.DescribeCapabilities()
	require.Len(t, caps, 2)
	assert.Equal(t, "alpha", caps[0].Key)
	assert.Equal(t, "zebra", caps[1].Key)
	require.Len(t, caps[1].Setters, 2)
	assert.Equal(t, "a", caps[1].Setters[0].Name)
}

func TestDescribeCapabilities_ArgsSchema(t *testing.T) {
	store := NewStore()
	noop := func(ctx context.Context, current any, args ...any) error { return nil }

	require.NoError(t, store.Register("nodes", nil, WithSetters(
		MustSetter("addNode", noop, WithParameters(Parameter{Name: "node", Type: "object"})),
		MustSetter("clearNodes", noop),
	)))

	caps := store.DescribeCapabilities()
	require.Len(t, caps, 1)
	require.Len(t, caps[0].Setters, 2)

	withArgs := caps[0].Setters[0]
	require.NotNil(t, withArgs.ArgsSchema)
	assert.Equal(t, "object", withArgs.ArgsSchema["type"])
	props, ok := withArgs.ArgsSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "node")

	assert.Nil(t, caps[0].Setters[1].ArgsSchema)
}

func TestSetter_ParameterSchema(t *testing.T) {
	setter := MustSetter("addNode", func(ctx context.Context, current any, args ...any) error { return nil },
		WithSetterDescription("adds a node to the diagram"),
		WithParameters(
			Parameter{Name: "node", Type: "object", Description: "the node to add"},
			Parameter{Name: "focus", Type: "boolean", Optional: true},
		))

	schema := setter.ParameterSchema()
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"node"}, schema.Required)

	prop, ok := schema.Properties.Get("node")
	require.True(t, ok)
	assert.Equal(t, "object", prop.Type)
}

func TestReadWhileWriting(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Register("counter", 0))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				store.Write("counter", n*200+j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				value, ok := store.Read("counter")
				assert.True(t, ok)
				assert.IsType(t, 0, value)
			}
		}()
	}
	wg.Wait()
}
