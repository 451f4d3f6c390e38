package workflowtest

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// registerWorkflows registers every configured workflow implementation on w.
// Functions register under their function name; structs register each
// exported method under the method name, which is also the name the stub
// helpers execute by.
func registerWorkflows(w worker.Worker, impls []any) error {
	for _, impl := range impls {
		v := reflect.ValueOf(impl)
		if !v.IsValid() {
			return fmt.Errorf("%w: nil workflow implementation", ErrInvalidConfiguration)
		}

		if v.Kind() == reflect.Func {
			w.RegisterWorkflow(impl)
			continue
		}

		t := v.Type()
		if t.NumMethod() == 0 {
			return fmt.Errorf("%w: workflow implementation %T has no exported methods", ErrInvalidConfiguration, impl)
		}
		for i := 0; i < t.NumMethod(); i++ {
			w.RegisterWorkflowWithOptions(
				v.Method(i).Interface(),
				workflow.RegisterOptions{Name: t.Method(i).Name},
			)
		}
	}
	return nil
}

// workflowNames reports the workflow type names an implementation registers
// under. It mirrors registerWorkflows so the supported-type computation and
// the actual worker registration can never disagree.
func workflowNames(impl any) ([]string, error) {
	v := reflect.ValueOf(impl)
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: nil workflow implementation", ErrInvalidConfiguration)
	}

	if v.Kind() == reflect.Func {
		return []string{funcName(v)}, nil
	}

	t := v.Type()
	if t.NumMethod() == 0 {
		return nil, fmt.Errorf("%w: workflow implementation %T must be a function or a struct with exported methods", ErrInvalidConfiguration, impl)
	}
	names := make([]string, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		names = append(names, t.Method(i).Name)
	}
	return names, nil
}

// funcName returns the bare name a function value registers under: the last
// path segment, without the receiver's "-fm" suffix for bound methods.
func funcName(v reflect.Value) string {
	full := runtime.FuncForPC(v.Pointer()).Name()
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		full = full[i+1:]
	}
	return strings.TrimSuffix(full, "-fm")
}
