// Package diag renders Temporal workflow execution histories as text, for
// post-mortem dumps after a failed test and for the CLI's dump command.
package diag

import (
	"context"
	"fmt"
	"strings"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
)

// Dump lists every workflow execution visible in the namespace and renders
// each execution's history, one event per line.
func Dump(ctx context.Context, c client.Client, namespace string) (string, error) {
	resp, err := c.ListWorkflow(ctx, &workflowservice.ListWorkflowExecutionsRequest{
		Namespace: namespace,
	})
	if err != nil {
		return "", fmt.Errorf("list workflow executions: %w", err)
	}

	var b strings.Builder
	for _, info := range resp.GetExecutions() {
		exec := info.GetExecution()
		fmt.Fprintf(&b, "%s (run %s) [%s]\n", exec.GetWorkflowId(), exec.GetRunId(), info.GetStatus())

		iter := c.GetWorkflowHistory(ctx, exec.GetWorkflowId(), exec.GetRunId(), false,
			enumspb.HISTORY_EVENT_FILTER_TYPE_ALL_EVENT)
		for iter.HasNext() {
			event, err := iter.Next()
			if err != nil {
				return "", fmt.Errorf("history of %s: %w", exec.GetWorkflowId(), err)
			}
			fmt.Fprintf(&b, "  %4d %s\n", event.GetEventId(), event.GetEventType())
		}
	}

	if b.Len() == 0 {
		return "(no workflow executions)\n", nil
	}
	return b.String(), nil
}
