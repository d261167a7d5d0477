package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/aggregate"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/logger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/money"
)

func newSummaryCommand(rt *runtime) *cobra.Command {
	var view viewFlags

	cmd := &cobra.Command{
		Use:   "summary <statement>",
		Short: "Print the spending dashboard for a statement",
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

			d := aggregate.BuildDashboard(res.Ledger, q)
			printSummary(cmd.OutOrStdout(), rt.money(), res.Mapping, d)
			return nil
		},
	}
	view.register(cmd)

	return cmd
}

func printSummary(out io.Writer, f money.Formatter, mapping models.RoleMapping, d aggregate.Dashboard) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "Columns:\t%s\n", mapping)
	if len(d.Years) == 0 {
		fmt.Fprintln(tw, "No spending transactions found.")
		return
	}

	fmt.Fprintf(tw, "Total lifetime spending:\t%s\t(%d transactions)\n", f.Format(d.Lifetime.Total), d.Lifetime.Count)
	fmt.Fprintln(tw)
	printBreakdown(tw, f, "Top descriptions (all years)", d.Lifetime.Breakdown)

	heading := fmt.Sprintf("Year %d", d.Yearly.Year)
	if d.Search != "" {
		heading += fmt.Sprintf(" matching %q", d.Search)
	}
	fmt.Fprintf(tw, "%s:\t%s\t(%d transactions)\n", heading, f.Format(d.Yearly.Total), d.Yearly.Count)
	fmt.Fprintln(tw)
	printBreakdown(tw, f, "Top descriptions", d.Yearly.Breakdown)

	fmt.Fprintf(tw, "Monthly trend (budget %s)\n", f.Format(d.Budget))
	for _, m := range d.Yearly.Months {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", m.MonthLabel, f.Plain(m.Total), m.Class)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Largest transactions")
	for _, t := range d.Yearly.Audit {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", t.Date.Format(models.DateLayout), t.Description, f.Plain(t.Amount))
	}
}

func printBreakdown(w io.Writer, f money.Formatter, title string, rows []aggregate.DescriptionTotal) {
	fmt.Fprintln(w, title)
	for _, r := range rows {
		fmt.Fprintf(w, "  %s\t%s\t%d\n", r.Description, f.Plain(r.Total), r.Count)
	}
	fmt.Fprintln(w)
}

func parseBudget(s string) (decimal.Decimal, error) {
	b, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --budget %q: %w", s, err)
	}
	if b.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid --budget %q: must not be negative", s)
	}
	return b, nil
}
