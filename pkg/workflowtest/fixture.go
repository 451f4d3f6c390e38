package workflowtest

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/ahrav/go-workflowtest/internal/scope"
)

// Store entry names within a test's namespace.
const (
	keySandbox   = "sandbox"
	keyWorker    = "worker"
	keyTaskQueue = "taskQueue"
)

// Fixture provisions one sandbox per test invocation and injects typed
// collaborators into test functions. A Fixture is built once, usually at
// package level, and shared by every test in the package; its configuration
// is immutable and all per-test state lives in a store partitioned by
// (fixture identity, test name), so parallel tests never interfere.
type Fixture struct {
	id        string
	cfg       *config
	store     *scope.Store
	supported map[reflect.Type]bool
}

// New builds a Fixture from the given options. Configuration is fully
// resolved here, including the closed set of injectable parameter types;
// invalid combinations are reported now rather than at test time.
func New(opts ...Option) (*Fixture, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	supported, err := supportedTypes(cfg)
	if err != nil {
		return nil, err
	}

	return &Fixture{
		id:        uuid.NewString(),
		cfg:       cfg,
		store:     scope.NewStore(),
		supported: supported,
	}, nil
}

// MustNew is New, panicking on error. Intended for package-level fixture
// variables where a configuration error should abort the whole test binary.
func MustNew(opts ...Option) *Fixture {
	f, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Run provisions a sandbox for this test, resolves fn's parameters, and
// invokes fn. Teardown is registered via t.Cleanup and runs whether the test
// passes or fails; on failure the sandbox's execution histories are dumped
// first. fn must be a non-variadic function whose every parameter type is in
// the fixture's supported set.
func (f *Fixture) Run(t *testing.T, fn any) {
	t.Helper()
	if err := f.run(t, fn); err != nil {
		t.Fatalf("workflowtest: %v", err)
	}
}

func (f *Fixture) run(t *testing.T, fn any) error {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return fmt.Errorf("Run requires a function, got %T", fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return fmt.Errorf("Run does not accept variadic functions")
	}

	key := scope.Key{Fixture: f.id, Test: t.Name()}
	if err := f.setUp(t, key); err != nil {
		return fmt.Errorf("setting up test sandbox: %w", err)
	}
	t.Cleanup(func() { f.tearDown(t, key) })

	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		v, err := f.resolve(t, key, ft.In(i))
		if err != nil {
			return fmt.Errorf("resolving parameter %d (%s): %w", i, ft.In(i), err)
		}
		args[i] = v
	}
	fv.Call(args)
	return nil
}

// setUp builds this test's sandbox, worker, and task queue and stores them
// under the test's namespace. On any error the partially built sandbox is
// closed and nothing is stored, so no teardown runs for a resource that was
// never created.
func (f *Fixture) setUp(t *testing.T, key scope.Key) error {
	if _, ok := f.store.Lookup(key, keySandbox); ok {
		return fmt.Errorf("test scope already active for %s; call Run once per test or use subtests", t.Name())
	}

	sb, err := f.cfg.newSandbox(f.cfg)
	if err != nil {
		return fmt.Errorf("create sandbox: %w", err)
	}

	// The UUID component guarantees suite-wide uniqueness even when test
	// names collide across packages or repeated runs; task queues are the
	// isolation boundary for workload dispatch.
	taskQueue := fmt.Sprintf("WorkflowTest-%s-%s", t.Name(), uuid.NewString())

	w := sb.NewWorker(taskQueue, f.cfg.workerOptions)
	if err := registerWorkflows(w, f.cfg.workflows); err != nil {
		f.closeQuietly(t, sb)
		return err
	}
	for _, instance := range f.cfg.activities {
		w.RegisterActivity(instance)
	}

	if f.cfg.autoStart {
		if err := sb.Start(); err != nil {
			f.closeQuietly(t, sb)
			return fmt.Errorf("start sandbox: %w", err)
		}
	}

	f.store.Put(key, keySandbox, sb)
	f.store.Put(key, keyWorker, w)
	f.store.Put(key, keyTaskQueue, taskQueue)

	f.cfg.logger.Debug("test sandbox ready", "test", t.Name(), "task_queue", taskQueue)
	return nil
}

// tearDown runs after the test body, pass or fail. Close errors are surfaced
// to the operator as secondary failures; they never replace the test's own
// outcome.
func (f *Fixture) tearDown(t *testing.T, key scope.Key) {
	if t.Failed() {
		f.reportFailure(t, key)
	}

	sb, err := scope.Get[Sandbox](f.store, key, keySandbox)
	if err != nil {
		f.cfg.logger.Error("teardown: sandbox handle missing", "test", t.Name(), "error", err)
		return
	}
	f.store.Drop(key)

	if err := sb.Close(); err != nil {
		f.cfg.logger.Error("teardown: closing sandbox", "test", t.Name(), "error", err)
		t.Logf("workflowtest: closing sandbox: %v", err)
	}
}

// reportFailure dumps the sandbox's execution histories to the configured
// writer. Best effort: any error or panic here is logged and swallowed so it
// can never displace the original failure reason.
func (f *Fixture) reportFailure(t *testing.T, key scope.Key) {
	defer func() {
		if r := recover(); r != nil {
			f.cfg.logger.Error("diagnostics dump panicked", "test", t.Name(), "panic", r)
		}
	}()

	sb, err := scope.Get[Sandbox](f.store, key, keySandbox)
	if err != nil {
		return
	}
	histories, err := sb.Diagnostics(context.Background())
	if err != nil {
		f.cfg.logger.Error("collecting diagnostics", "test", t.Name(), "error", err)
		return
	}
	fmt.Fprintf(f.cfg.diagOut, "Workflow execution histories (%s):\n%s", t.Name(), histories)
}

func (f *Fixture) closeQuietly(t *testing.T, sb Sandbox) {
	if err := sb.Close(); err != nil {
		f.cfg.logger.Error("closing sandbox after failed setup", "test", t.Name(), "error", err)
	}
}
