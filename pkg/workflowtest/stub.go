package workflowtest

import (
	"context"
	"fmt"
	"reflect"

	"go.temporal.io/sdk/client"
)

// StubFactory builds a client-side stub of the workflow interface T, bound
// to a client and to start options carrying the current test's task queue.
// Every call the stub makes must route through those options so it reaches
// the worker provisioned for the same test.
type StubFactory[T any] func(c client.Client, options client.StartWorkflowOptions) T

// WithWorkflowStub makes the workflow interface T an injectable parameter
// type, resolved by calling factory with the per-test client and options.
// This is the explicit registry standing in for runtime interface discovery:
// New verifies that T is an interface and that every method of T matches a
// workflow name provided by a registered implementation.
func WithWorkflowStub[T any](factory StubFactory[T]) Option {
	return func(c *config) {
		if factory == nil {
			c.stubs[reflect.TypeFor[T]()] = nil
			return
		}
		c.stubs[reflect.TypeFor[T]()] = func(cl client.Client, options client.StartWorkflowOptions) any {
			return factory(cl, options)
		}
	}
}

// Stub is the building block for writing workflow stubs by hand: it starts a
// workflow by type name on the bound task queue and decodes its result.
// Factories typically embed one per interface method:
//
//	func NewGreetingStub(c client.Client, options client.StartWorkflowOptions) GreetingWorkflow {
//		return greetingStub{workflowtest.NewStub(c, options)}
//	}
//
//	func (s greetingStub) Greet(ctx context.Context, name string) (string, error) {
//		var greeting string
//		err := s.Execute(ctx, "Greet", &greeting, name)
//		return greeting, err
//	}
type Stub struct {
	client  client.Client
	options client.StartWorkflowOptions
}

// NewStub binds a Stub to a client and start options.
func NewStub(c client.Client, options client.StartWorkflowOptions) Stub {
	return Stub{client: c, options: options}
}

// Execute runs the named workflow with args and waits for completion,
// decoding the result into result when it is non-nil.
func (s Stub) Execute(ctx context.Context, workflowName string, result any, args ...any) error {
	run, err := s.client.ExecuteWorkflow(ctx, s.options, workflowName, args...)
	if err != nil {
		return fmt.Errorf("start workflow %q: %w", workflowName, err)
	}
	if err := run.Get(ctx, result); err != nil {
		return fmt.Errorf("workflow %q: %w", workflowName, err)
	}
	return nil
}

// TaskQueue returns the task queue the stub routes executions to.
func (s Stub) TaskQueue() string { return s.options.TaskQueue }
