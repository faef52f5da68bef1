package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/openge/internal/app"
)

func (c *CLI) newDispatchCmd() *cobra.Command {
	var opts app.DispatchOptions
	cmd := &cobra.Command{
		Use:   "dispatch <build-set.xml>",
		Short: "Run the tasks of a build set",
		Long: "Run the tasks of a build set and stream their output.\n\n" +
			"Without a dispatcher address the job runs in this process on the local\n" +
			"cores and the workers listed in the configuration.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ConfigPath = c.configPath
			opts.BuildSetPath = args[0]
			return c.app.Dispatch(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.DispatcherAddress, "dispatcher", "d", "", "Submit the job to the dispatcher at this address")
	cmd.Flags().StringVar(&opts.BuildNodeName, "node", "", "Name of the submitting machine (default: host name)")
	return cmd
}
