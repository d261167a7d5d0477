package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/logger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/report"
)

func newReportCommand(rt *runtime) *cobra.Command {
	var view viewFlags
	var output string

	cmd := &cobra.Command{
		Use:   "report <statement>",
		Short: "Render the two-page PDF spending report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := view.query(rt.cfg)
			if err != nil {
				return err
			}

			ctx := logger.WithContext(cmd.Context(), rt.log)
			res, err := rt.pipeline().RunFile(ctx, args[0])
			if err != nil {
				return err
			}

			rep, err := report.Default(rt.money()).Build(res.Ledger, q)
			if err != nil {
				return fmt.Errorf("building report: %w", err)
			}

			path := output
			if path == "" {
				path = rep.Filename
			}
			if err := os.WriteFile(path, rep.PDF, 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
	view.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF path (default: Finance_Report_<year>.pdf)")

	return cmd
}
