package workflowtest

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/ahrav/go-workflowtest/internal/scope"
)

var (
	typeSandbox         = reflect.TypeFor[Sandbox]()
	typeClient          = reflect.TypeFor[client.Client]()
	typeWorkflowOptions = reflect.TypeFor[client.StartWorkflowOptions]()
	typeWorker          = reflect.TypeFor[worker.Worker]()
	typeTestingT        = reflect.TypeFor[*testing.T]()
	typeContext         = reflect.TypeFor[context.Context]()
)

// supportedTypes computes the closed set of injectable parameter types: the
// fixed collaborator handles plus every registered stub interface. Stub
// registrations are validated here, once, against the workflow names the
// configured implementations will register under.
func supportedTypes(cfg *config) (map[reflect.Type]bool, error) {
	names := make(map[string]bool)
	for _, impl := range cfg.workflows {
		implNames, err := workflowNames(impl)
		if err != nil {
			return nil, err
		}
		for _, n := range implNames {
			names[n] = true
		}
	}

	set := map[reflect.Type]bool{
		typeSandbox:         true,
		typeClient:          true,
		typeWorkflowOptions: true,
		typeWorker:          true,
		typeTestingT:        true,
		typeContext:         true,
	}
	for stubType, factory := range cfg.stubs {
		if stubType.Kind() != reflect.Interface {
			return nil, fmt.Errorf("%w: workflow stub type %s is not an interface", ErrInvalidConfiguration, stubType)
		}
		if factory == nil {
			return nil, fmt.Errorf("%w: nil stub factory for %s", ErrInvalidConfiguration, stubType)
		}
		for i := 0; i < stubType.NumMethod(); i++ {
			method := stubType.Method(i).Name
			if !names[method] {
				return nil, fmt.Errorf("%w: stub interface %s declares %s but no registered workflow implementation provides it",
					ErrInvalidConfiguration, stubType, method)
			}
		}
		set[stubType] = true
	}
	return set, nil
}

// Supports reports whether parameters of the given type can be resolved by
// this fixture. The supported set is fixed at construction time.
func (f *Fixture) Supports(paramType reflect.Type) bool {
	return paramType != nil && f.supported[paramType]
}

// resolve produces the value injected for a parameter of the given type. A
// supported type whose backing handle is missing from the test scope is a
// lifecycle-ordering bug and fails loudly; an unsupported type is never
// silently defaulted.
func (f *Fixture) resolve(t *testing.T, key scope.Key, paramType reflect.Type) (reflect.Value, error) {
	if !f.Supports(paramType) {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnsupportedParameter, paramType)
	}

	switch paramType {
	case typeTestingT:
		return reflect.ValueOf(t), nil
	case typeContext:
		return reflect.ValueOf(t.Context()), nil
	}

	sb, err := scope.Get[Sandbox](f.store, key, keySandbox)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrNoActiveTest, err)
	}

	switch paramType {
	case typeSandbox:
		return reflect.ValueOf(sb), nil
	case typeClient:
		return reflect.ValueOf(sb.Client()), nil
	case typeWorker:
		w, err := scope.Get[worker.Worker](f.store, key, keyWorker)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrNoActiveTest, err)
		}
		return reflect.ValueOf(w), nil
	}

	taskQueue, err := scope.Get[string](f.store, key, keyTaskQueue)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrNoActiveTest, err)
	}
	// A fresh options value on every resolution; only the task queue binding
	// is fixed.
	options := client.StartWorkflowOptions{TaskQueue: taskQueue}

	if paramType == typeWorkflowOptions {
		return reflect.ValueOf(options), nil
	}

	stub := f.cfg.stubs[paramType](sb.Client(), options)
	sv := reflect.ValueOf(stub)
	if !sv.IsValid() || !sv.Type().Implements(paramType) {
		return reflect.Value{}, fmt.Errorf("stub factory for %s returned %T", paramType, stub)
	}
	out := reflect.New(paramType).Elem()
	out.Set(sv)
	return out, nil
}
