// Package workflowtest manages per-test Temporal sandboxes so workflow tests
// need no manual setup or teardown. Each call to [Fixture.Run] provisions an
// isolated sandbox (an ephemeral dev server by default, or an external
// service), creates a worker on a task queue unique to that test invocation,
// registers the configured workflow and activity implementations, and injects
// typed collaborators into the test function by inspecting its parameter
// types. The sandbox is closed after the test body returns, pass or fail, and
// workflow execution histories are dumped when the test failed.
//
// Usage:
//
//	var fixture = workflowtest.MustNew(
//		workflowtest.WithWorkflows(&GreeterImpl{}),
//		workflowtest.WithActivities(&GreetingActivities{}),
//		workflowtest.WithWorkflowStub[GreetingWorkflow](NewGreetingStub),
//	)
//
//	func TestGreeting(t *testing.T) {
//		fixture.Run(t, func(ctx context.Context, greeter GreetingWorkflow) {
//			greeting, err := greeter.Greet(ctx, "World")
//			require.NoError(t, err)
//			require.Equal(t, "Hello, World!", greeting)
//		})
//	}
//
// Injectable parameter types are [Sandbox], [client.Client],
// [client.StartWorkflowOptions], [worker.Worker], *testing.T,
// context.Context, and every workflow interface registered through
// [WithWorkflowStub]. Concurrent tests never share a sandbox, worker, or
// task queue; isolation comes from partitioning per test invocation, not
// from locking.
package workflowtest
