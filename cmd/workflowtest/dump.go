package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/ahrav/go-workflowtest/internal/diag"
)

func newDumpCmd() *cobra.Command {
	var target, namespace string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print workflow execution histories from a running Temporal service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.Dial(client.Options{HostPort: target, Namespace: namespace})
			if err != nil {
				return fmt.Errorf("dial temporal service %s: %w", target, err)
			}
			defer c.Close()

			histories, err := diag.Dump(cmd.Context(), c, namespace)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), histories)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "127.0.0.1:7233", "Temporal service endpoint")
	cmd.Flags().StringVar(&namespace, "namespace", "default", "namespace to dump")
	return cmd
}
