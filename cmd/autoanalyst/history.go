package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jkcapital/autoanalyst/internal/app"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved analyses",
	}
	cmd.AddCommand(newHistoryListCmd(root), newHistoryShowCmd(root))
	return cmd
}

func newHistoryListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewHistoryApp(root.configPath)
			if err != nil {
				return err
			}

			entries := a.HistoryList()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Zatiaľ žiadna história.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tTICKER\tID")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.DisplayDate, e.Ticker, e.ID)
			}
			return tw.Flush()
		},
	}
}

func newHistoryShowCmd(root *rootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewHistoryApp(root.configPath)
			if err != nil {
				return err
			}

			analysis, err := a.LoadAnalysis(args[0])
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), a.Dashboard(analysis))

			if outPath != "" {
				doc, _, err := a.Document(args[0])
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, []byte(doc), 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", outPath, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the markdown report to this file")
	return cmd
}
