package cli

import "github.com/spf13/cobra"

// BuildVersion is overridden at link time.
var BuildVersion = "0.1.0-dev"

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
}

func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "pii-scanner",
		Short:         "Personal data discovery for file shares",
		Long:          "pii-scanner walks directories, extracts text from documents and reports personal data it finds.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file path (default: ./config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.Verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(
		newScanCommand(opts),
		newHistoryCommand(opts),
		newWatchCommand(opts),
		newAllowlistCommand(opts),
		newCacheCommand(opts),
		newVersionCommand(),
	)

	return cmd
}
