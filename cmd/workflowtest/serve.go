package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/testsuite"

	"github.com/ahrav/go-workflowtest/internal/config"
)

func newServeCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a standalone Temporal dev server until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			clientOpts := client.Options{Namespace: cfg.Namespace}
			serverOpts := testsuite.DevServerOptions{
				ClientOptions: &clientOpts,
				LogLevel:      cfg.LogLevel,
				EnableUI:      cfg.UI,
				DBFilename:    cfg.DBFile,
			}
			if cfg.Port != 0 {
				serverOpts.ExtraArgs = append(serverOpts.ExtraArgs, "--port", strconv.Itoa(cfg.Port))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := testsuite.StartDevServer(ctx, serverOpts)
			if err != nil {
				return fmt.Errorf("start dev server: %w", err)
			}

			slog.Info("dev server listening",
				"address", server.FrontendHostPort(),
				"namespace", cfg.Namespace)
			fmt.Fprintln(cmd.OutOrStdout(), server.FrontendHostPort())

			<-ctx.Done()
			slog.Info("shutting down dev server")
			return server.Stop()
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	return cmd
}
