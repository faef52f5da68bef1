package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/openge/internal/app"
)

func (c *CLI) newDispatcherCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatcher",
		Short: "Run the dispatcher service",
	}

	var opts app.ServeOptions
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Accept jobs over gRPC and run them on the configured workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ConfigPath = c.configPath
			return c.app.ServeDispatcher(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVarP(&opts.Listen, "listen", "l", "", "Listen address (default: from configuration)")

	cmd.AddCommand(serve)
	return cmd
}

func (c *CLI) newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the worker service",
	}

	var opts app.ServeOptions
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Offer the cores of this machine to dispatchers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ConfigPath = c.configPath
			return c.app.ServeWorker(cmd.Context(), opts)
		},
	}
	serve.Flags().StringVarP(&opts.Listen, "listen", "l", "", "Listen address (default: from configuration)")
	serve.Flags().StringVar(&opts.Name, "name", "", "Worker name (default: host name)")

	cmd.AddCommand(serve)
	return cmd
}
