package workflowtest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/worker"

	"github.com/ahrav/go-workflowtest/internal/diag"
)

// Sandbox is an isolated, ephemeral Temporal environment owned by a single
// test invocation. Start launches every worker created through NewWorker;
// Close stops them and releases the backing service or connection. Close is
// idempotent and synchronous: when it returns, nothing leaks into a later
// test.
type Sandbox interface {
	// Client returns the workflow client connected to this sandbox.
	Client() client.Client

	// NewWorker creates a worker on the given task queue. The worker is
	// tracked by the sandbox and started by Start.
	NewWorker(taskQueue string, options worker.Options) worker.Worker

	// Start starts all workers created so far. Calling it twice is a no-op.
	Start() error

	// Close stops workers and releases the sandbox's resources.
	Close() error

	// Diagnostics renders the execution history of everything that ran in
	// this sandbox, for post-mortem debugging.
	Diagnostics(ctx context.Context) (string, error)
}

// newSandbox is the default sandbox factory, selecting between an ephemeral
// dev server and a standalone service per the fixture configuration.
func newSandbox(cfg *config) (Sandbox, error) {
	if cfg.externalService {
		return dialSandbox(cfg)
	}
	return startDevServer(cfg)
}

// sandboxCore carries the state shared by both sandbox flavors: the client,
// the tracked workers, and the started/closed flags guarded by mu.
type sandboxCore struct {
	client    client.Client
	namespace string
	logger    *slog.Logger

	mu      sync.Mutex
	workers []worker.Worker
	started bool
	closed  bool
}

func (s *sandboxCore) Client() client.Client { return s.client }

func (s *sandboxCore) NewWorker(taskQueue string, options worker.Options) worker.Worker {
	w := worker.New(s.client, taskQueue, options)
	s.mu.Lock()
	s.workers = append(s.workers, w)
	s.mu.Unlock()
	return w
}

func (s *sandboxCore) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return nil
	}
	for i, w := range s.workers {
		if err := w.Start(); err != nil {
			for _, started := range s.workers[:i] {
				started.Stop()
			}
			return fmt.Errorf("start worker: %w", err)
		}
	}
	s.started = true
	return nil
}

// stopWorkersLocked stops started workers. Callers must hold mu.
func (s *sandboxCore) stopWorkersLocked() {
	if !s.started {
		return
	}
	for _, w := range s.workers {
		w.Stop()
	}
	s.started = false
}

func (s *sandboxCore) Diagnostics(ctx context.Context) (string, error) {
	return diag.Dump(ctx, s.client, s.namespace)
}

// devSandbox runs an ephemeral Temporal dev server for the duration of one
// test. This is the in-memory mode: state lives and dies with the server
// process.
type devSandbox struct {
	sandboxCore
	server *testsuite.DevServer
}

func startDevServer(cfg *config) (Sandbox, error) {
	opts := cfg.clientOpts()
	server, err := testsuite.StartDevServer(context.Background(), testsuite.DevServerOptions{
		ClientOptions: &opts,
		LogLevel:      "error",
	})
	if err != nil {
		return nil, fmt.Errorf("start dev server: %w", err)
	}
	cfg.logger.Debug("dev server started", "address", server.FrontendHostPort(), "namespace", opts.Namespace)
	return &devSandbox{
		sandboxCore: sandboxCore{
			client:    server.Client(),
			namespace: effectiveNamespace(opts),
			logger:    cfg.logger,
		},
		server: server,
	}, nil
}

func (s *devSandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopWorkersLocked()
	if err := s.server.Stop(); err != nil {
		return fmt.Errorf("stop dev server: %w", err)
	}
	return nil
}

// externalSandbox connects to a standalone Temporal service. The service
// outlives the test; only the connection and the test's workers are torn
// down.
type externalSandbox struct {
	sandboxCore
}

func dialSandbox(cfg *config) (Sandbox, error) {
	opts := cfg.clientOpts()
	if opts.HostPort == "" {
		opts.HostPort = cfg.target
	}
	c, err := client.Dial(opts)
	if err != nil {
		return nil, fmt.Errorf("dial temporal service %s: %w", opts.HostPort, err)
	}
	return &externalSandbox{
		sandboxCore: sandboxCore{
			client:    c,
			namespace: effectiveNamespace(opts),
			logger:    cfg.logger,
		},
	}, nil
}

func (s *externalSandbox) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopWorkersLocked()
	s.client.Close()
	return nil
}

// effectiveNamespace mirrors the SDK's fallback so diagnostics queries target
// the namespace the client actually uses.
func effectiveNamespace(opts client.Options) string {
	if opts.Namespace == "" {
		return "default"
	}
	return opts.Namespace
}
