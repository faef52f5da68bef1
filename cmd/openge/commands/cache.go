package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/openge/internal/app"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	var opts app.CacheOptions
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the preprocessor cache daemon",
	}
	resolved := func() app.CacheOptions {
		opts.ConfigPath = c.configPath
		return opts
	}
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "Cache data directory (default: from configuration)")

	cmd.AddCommand(&cobra.Command{
		Use:    "serve",
		Short:  "Start the cache daemon in the foreground (internal use)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.ServeCache(cmd.Context(), resolved())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show cache daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.CacheStatus(cmd.Context(), resolved())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the cache daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.StopCache(cmd.Context(), resolved())
		},
	})

	return cmd
}
