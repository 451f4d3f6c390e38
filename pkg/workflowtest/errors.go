package workflowtest

import "errors"

// ErrInvalidConfiguration indicates that the fixture options describe an
// unusable setup, such as a workflow stub for a non-interface type or a stub
// method no registered workflow implements. It is reported by New and never
// retried.
var ErrInvalidConfiguration = errors.New("invalid fixture configuration")

// ErrUnsupportedParameter indicates that a test function declared a parameter
// type outside the fixture's supported set. Resolution fails immediately
// rather than injecting a zero value.
var ErrUnsupportedParameter = errors.New("unsupported parameter type")

// ErrNoActiveTest indicates that parameter resolution ran without a populated
// test scope. This is a lifecycle-ordering bug: the pre-test hook either
// never ran or already tore the scope down.
var ErrNoActiveTest = errors.New("no active test scope")
