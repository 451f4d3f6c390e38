package workflowtest

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-workflowtest/internal/scope"
)

// GreetingWorkflow is the client-facing interface for the Greet workflow.
type GreetingWorkflow interface {
	Greet(ctx context.Context, name string) (string, error)
}

type greeterImpl struct{}

func (greeterImpl) Greet(ctx workflow.Context, name string) (string, error) {
	return "Hello, " + name + "!", nil
}

// recordingStub implements GreetingWorkflow without calling any engine; it
// echoes its bound task queue so tests can verify routing.
type recordingStub struct {
	c       client.Client
	options client.StartWorkflowOptions
}

func (s recordingStub) Greet(context.Context, string) (string, error) {
	return s.options.TaskQueue, nil
}

func TestSupports(t *testing.T) {
	f, _ := newFakeFixture(t,
		WithWorkflows(&greeterImpl{}),
		WithWorkflowStub[GreetingWorkflow](func(c client.Client, options client.StartWorkflowOptions) GreetingWorkflow {
			return recordingStub{c: c, options: options}
		}),
	)

	supported := []reflect.Type{
		reflect.TypeFor[Sandbox](),
		reflect.TypeFor[client.Client](),
		reflect.TypeFor[client.StartWorkflowOptions](),
		reflect.TypeFor[worker.Worker](),
		reflect.TypeFor[*testing.T](),
		reflect.TypeFor[context.Context](),
		reflect.TypeFor[GreetingWorkflow](),
	}
	for _, pt := range supported {
		assert.True(t, f.Supports(pt), "expected support for %s", pt)
	}

	assert.False(t, f.Supports(reflect.TypeFor[string]()))
	assert.False(t, f.Supports(reflect.TypeFor[*Fixture]()))
	assert.False(t, f.Supports(nil))
}

func TestResolveUnsupportedType(t *testing.T) {
	f, _ := newFakeFixture(t)

	key := scope.Key{Fixture: f.id, Test: t.Name()}
	require.NoError(t, f.setUp(t, key))
	t.Cleanup(func() { f.tearDown(t, key) })

	_, err := f.resolve(t, key, reflect.TypeFor[string]())
	assert.ErrorIs(t, err, ErrUnsupportedParameter)
}

// TestResolveBeforeSetup covers the lifecycle-ordering error: a supported
// type resolved against a scope the pre-test hook never populated.
func TestResolveBeforeSetup(t *testing.T) {
	f, _ := newFakeFixture(t)

	key := scope.Key{Fixture: f.id, Test: t.Name()}
	for _, pt := range []reflect.Type{
		reflect.TypeFor[Sandbox](),
		reflect.TypeFor[client.Client](),
		reflect.TypeFor[client.StartWorkflowOptions](),
		reflect.TypeFor[worker.Worker](),
	} {
		_, err := f.resolve(t, key, pt)
		assert.ErrorIs(t, err, ErrNoActiveTest, "type %s", pt)
	}
}

func TestResolveStub(t *testing.T) {
	var factoryClient client.Client
	f, rec := newFakeFixture(t,
		WithWorkflows(&greeterImpl{}),
		WithWorkflowStub[GreetingWorkflow](func(c client.Client, options client.StartWorkflowOptions) GreetingWorkflow {
			factoryClient = c
			return recordingStub{c: c, options: options}
		}),
	)

	t.Run("body", func(t *testing.T) {
		f.Run(t, func(greeter GreetingWorkflow, options client.StartWorkflowOptions) {
			boundQueue, err := greeter.Greet(context.Background(), "World")
			require.NoError(t, err)
			assert.Equal(t, options.TaskQueue, boundQueue,
				"stub must be bound to this test's task queue")
			assert.Same(t, rec.last(t).clientValue, factoryClient.(*fakeClient))
		})
	})
}

func TestFreshWorkflowOptionsPerResolution(t *testing.T) {
	f, _ := newFakeFixture(t)

	key := scope.Key{Fixture: f.id, Test: t.Name()}
	require.NoError(t, f.setUp(t, key))
	t.Cleanup(func() { f.tearDown(t, key) })

	v1, err := f.resolve(t, key, reflect.TypeFor[client.StartWorkflowOptions]())
	require.NoError(t, err)
	v2, err := f.resolve(t, key, reflect.TypeFor[client.StartWorkflowOptions]())
	require.NoError(t, err)

	o1 := v1.Interface().(client.StartWorkflowOptions)
	o2 := v2.Interface().(client.StartWorkflowOptions)
	assert.Equal(t, o1.TaskQueue, o2.TaskQueue)
	assert.NotEmpty(t, o1.TaskQueue)
	assert.Empty(t, o1.ID, "workflow ID is left to the engine")
}

func TestStubValidation(t *testing.T) {
	t.Run("stub method without implementation", func(t *testing.T) {
		_, err := New(
			WithWorkflowStub[GreetingWorkflow](func(c client.Client, options client.StartWorkflowOptions) GreetingWorkflow {
				return recordingStub{c: c, options: options}
			}),
		)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "Greet")
	})

	t.Run("non-interface stub type", func(t *testing.T) {
		_, err := New(
			WithWorkflows(&greeterImpl{}),
			WithWorkflowStub[recordingStub](func(c client.Client, options client.StartWorkflowOptions) recordingStub {
				return recordingStub{c: c, options: options}
			}),
		)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "not an interface")
	})

	t.Run("nil factory", func(t *testing.T) {
		_, err := New(
			WithWorkflows(&greeterImpl{}),
			WithWorkflowStub[GreetingWorkflow](nil),
		)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "nil stub factory")
	})

	t.Run("workflow function satisfies stub check", func(t *testing.T) {
		f, err := New(
			WithWorkflows(greeterImpl{}.Greet),
			WithWorkflowStub[GreetingWorkflow](func(c client.Client, options client.StartWorkflowOptions) GreetingWorkflow {
				return recordingStub{c: c, options: options}
			}),
		)
		require.NoError(t, err)
		assert.True(t, f.Supports(reflect.TypeFor[GreetingWorkflow]()))
	})
}
