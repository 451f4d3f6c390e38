package workflowtest

import (
	"io"
	"log/slog"
	"os"
	"reflect"

	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
)

// DefaultNamespace is the Temporal namespace used when neither WithNamespace
// nor WithClientOptions is provided.
const DefaultNamespace = "UnitTest"

// DefaultExternalTarget is the service endpoint used by WithExternalService
// when no target is given.
const DefaultExternalTarget = "127.0.0.1:7233"

// stubFactory is the type-erased form of a StubFactory, keyed by the stub's
// interface type in config.stubs.
type stubFactory func(c client.Client, options client.StartWorkflowOptions) any

// config is the immutable fixture configuration. It is fully resolved by New
// and read-only afterwards, so a single Fixture is safe to share across
// concurrently executing tests.
type config struct {
	workerOptions worker.Options
	clientOptions *client.Options
	namespace     string
	workflows     []any
	activities    []any

	externalService bool
	target          string
	autoStart       bool

	stubs map[reflect.Type]stubFactory

	logger  *slog.Logger
	diagOut io.Writer

	// newSandbox is swapped for a fake in tests.
	newSandbox func(*config) (Sandbox, error)
}

func defaultConfig() *config {
	return &config{
		namespace:  DefaultNamespace,
		autoStart:  true,
		stubs:      make(map[reflect.Type]stubFactory),
		logger:     slog.Default(),
		diagOut:    os.Stderr,
		newSandbox: newSandbox,
	}
}

// clientOpts resolves the effective Temporal client options. Explicit client
// options take precedence over the configured namespace; the SDK's logging is
// routed through the fixture's slog logger unless the caller supplied one.
func (c *config) clientOpts() client.Options {
	var opts client.Options
	if c.clientOptions != nil {
		opts = *c.clientOptions
	} else {
		opts = client.Options{Namespace: c.namespace}
	}
	if opts.Logger == nil {
		opts.Logger = sdklog.NewStructuredLogger(c.logger)
	}
	return opts
}

// Option configures a Fixture. Options are applied in order; options that
// touch the same setting follow a last-writer-wins contract, which keeps
// WithExternalService and WithDevServer freely re-orderable before New.
type Option func(*config)

// WithWorkerOptions sets the worker options used when creating each test's
// worker.
func WithWorkerOptions(options worker.Options) Option {
	return func(c *config) { c.workerOptions = options }
}

// WithClientOptions overrides the Temporal client options used for sandbox
// creation. When set, it takes precedence over WithNamespace.
func WithClientOptions(options client.Options) Option {
	return func(c *config) { c.clientOptions = &options }
}

// WithNamespace sets the Temporal namespace used for tests. The default is
// DefaultNamespace.
func WithNamespace(namespace string) Option {
	return func(c *config) { c.namespace = namespace }
}

// WithWorkflows registers workflow implementations on every test's worker.
// Each implementation is either a workflow function or a struct whose
// exported methods are registered as workflows under their method names.
func WithWorkflows(impls ...any) Option {
	return func(c *config) { c.workflows = append(c.workflows, impls...) }
}

// WithActivities registers activity implementations on every test's worker.
func WithActivities(instances ...any) Option {
	return func(c *config) { c.activities = append(c.activities, instances...) }
}

// WithExternalService switches the fixture to a standalone Temporal service.
// An empty target selects DefaultExternalTarget. The last of
// WithExternalService and WithDevServer wins.
func WithExternalService(target string) Option {
	return func(c *config) {
		c.externalService = true
		if target == "" {
			target = DefaultExternalTarget
		}
		c.target = target
	}
}

// WithDevServer switches the fixture to an ephemeral per-test dev server.
// This is the default. The last of WithExternalService and WithDevServer
// wins.
func WithDevServer() Option {
	return func(c *config) {
		c.externalService = false
		c.target = ""
	}
}

// WithoutAutoStart constructs each test's sandbox without starting it. The
// test body becomes responsible for starting workers itself, which suits
// tests that register additional workflows or activities directly on the
// injected worker.
func WithoutAutoStart() Option {
	return func(c *config) { c.autoStart = false }
}

// WithLogger sets the logger used for fixture lifecycle events and bridged
// into the Temporal SDK. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDiagnosticsOutput sets the destination for the execution-history dump
// emitted when a test fails. Defaults to os.Stderr.
func WithDiagnosticsOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.diagOut = w
		}
	}
}
