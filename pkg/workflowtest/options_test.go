package workflowtest

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

func applyOptions(opts ...Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := applyOptions()

	assert.Equal(t, DefaultNamespace, cfg.namespace)
	assert.True(t, cfg.autoStart)
	assert.False(t, cfg.externalService)
	assert.Empty(t, cfg.workflows)
	assert.Empty(t, cfg.activities)
	assert.Empty(t, cfg.stubs)
	assert.NotNil(t, cfg.logger)
	assert.NotNil(t, cfg.diagOut)
	assert.NotNil(t, cfg.newSandbox)
}

// TestServiceSelectionLastWriterWins documents the contract that repeated
// external/dev-server selections are reconfiguration, not an error.
func TestServiceSelectionLastWriterWins(t *testing.T) {
	t.Run("dev server wins", func(t *testing.T) {
		cfg := applyOptions(WithExternalService("somehost:7233"), WithDevServer())
		assert.False(t, cfg.externalService)
		assert.Empty(t, cfg.target)
	})

	t.Run("external wins", func(t *testing.T) {
		cfg := applyOptions(WithDevServer(), WithExternalService("somehost:7233"))
		assert.True(t, cfg.externalService)
		assert.Equal(t, "somehost:7233", cfg.target)
	})

	t.Run("empty target defaults", func(t *testing.T) {
		cfg := applyOptions(WithExternalService(""))
		assert.True(t, cfg.externalService)
		assert.Equal(t, DefaultExternalTarget, cfg.target)
	})
}

func TestClientOptionsPrecedence(t *testing.T) {
	t.Run("namespace only", func(t *testing.T) {
		cfg := applyOptions(WithNamespace("workflow-tests"))
		opts := cfg.clientOpts()
		assert.Equal(t, "workflow-tests", opts.Namespace)
		assert.NotNil(t, opts.Logger, "SDK logging is bridged to slog")
	})

	t.Run("client options override namespace", func(t *testing.T) {
		cfg := applyOptions(
			WithNamespace("ignored"),
			WithClientOptions(client.Options{Namespace: "explicit"}),
		)
		assert.Equal(t, "explicit", cfg.clientOpts().Namespace)
	})

	t.Run("caller logger is kept", func(t *testing.T) {
		custom := testLogger{}
		cfg := applyOptions(WithClientOptions(client.Options{Logger: custom}))
		assert.Equal(t, custom, cfg.clientOpts().Logger)
	})
}

// testLogger satisfies the SDK's log.Logger.
type testLogger struct{}

func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

func TestAmbientOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	cfg := applyOptions(WithLogger(logger), WithDiagnosticsOutput(&buf))
	assert.Same(t, logger, cfg.logger)
	assert.Equal(t, &buf, cfg.diagOut)

	// Nil values keep the defaults instead of breaking logging.
	cfg = applyOptions(WithLogger(nil), WithDiagnosticsOutput(nil))
	assert.NotNil(t, cfg.logger)
	assert.NotNil(t, cfg.diagOut)
}

func TestAccumulatingOptions(t *testing.T) {
	cfg := applyOptions(
		WithWorkflows(greetFunc),
		WithWorkflows(&greeterImpl{}),
		WithActivities(struct{ A int }{}, struct{ B int }{}),
	)
	assert.Len(t, cfg.workflows, 2)
	assert.Len(t, cfg.activities, 2)
}

func TestMustNewPanicsOnInvalidConfiguration(t *testing.T) {
	require.Panics(t, func() {
		MustNew(WithWorkflowStub[GreetingWorkflow](nil))
	})
	require.NotPanics(t, func() {
		MustNew()
	})
}

func TestFixturesAreIndependent(t *testing.T) {
	f1, err := New()
	require.NoError(t, err)
	f2, err := New()
	require.NoError(t, err)

	assert.NotEqual(t, f1.id, f2.id)
	assert.NotSame(t, f1.store, f2.store)
}
