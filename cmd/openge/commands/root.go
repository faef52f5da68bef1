// Package commands implements the CLI commands for openge.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/openge/internal/app"
	"go.trai.ch/openge/internal/build"
)

// CLI represents the command line interface for openge.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	configPath string
	logJSON    bool
}

// Application represents the application logic interface.
type Application interface {
	Dispatch(ctx context.Context, opts app.DispatchOptions) error
	ServeDispatcher(ctx context.Context, opts app.ServeOptions) error
	ServeWorker(ctx context.Context, opts app.ServeOptions) error
	ServeCache(ctx context.Context, opts app.CacheOptions) error
	CacheStatus(ctx context.Context, opts app.CacheOptions) error
	StopCache(ctx context.Context, opts app.CacheOptions) error
	SetJSONLogs(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "openge",
		Short:         "Distributed build execution",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"Path to the configuration file (default: discovered from the working directory)")
	rootCmd.PersistentFlags().BoolVar(&c.logJSON, "log-json", false, "Write logs as JSON records")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.logJSON {
			c.app.SetJSONLogs(true)
		}
	}

	rootCmd.AddCommand(c.newDispatchCmd())
	rootCmd.AddCommand(c.newDispatcherCmd())
	rootCmd.AddCommand(c.newWorkerCmd())
	rootCmd.AddCommand(c.newCacheCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
