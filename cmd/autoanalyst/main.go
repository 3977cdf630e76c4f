// Command autoanalyst fetches market data for a ticker, generates an AI
// research report and keeps a browsable history of past analyses.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jkcapital/autoanalyst/internal/common"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "autoanalyst",
		Short:         "Fundamental market data and AI research reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.logLevel != "" {
				os.Setenv("AUTOANALYST_LOG_LEVEL", opts.logLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (default: autoanalyst.toml next to the binary)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			common.LoadVersionFromFile()
			fmt.Fprintf(cmd.OutOrStdout(), "autoanalyst %s\n", common.GetFullVersion())
		},
	}
}
