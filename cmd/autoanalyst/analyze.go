package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jkcapital/autoanalyst/internal/app"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		asJSON  bool
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Fetch market data, generate the AI report and save it to history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewApp(root.configPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Analyzujem %s ...\n", app.NormalizeTicker(args[0]))

			analysis, err := a.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			dashboard := a.Dashboard(analysis)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(dashboard)
			}

			printDashboard(cmd.OutOrStdout(), dashboard)

			if outPath != "" && analysis.RecordID != "" {
				doc, _, err := a.Document(analysis.RecordID)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, []byte(doc), 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", outPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the dashboard as JSON")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "also write the markdown report to this file")
	return cmd
}
