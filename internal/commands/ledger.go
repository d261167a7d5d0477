package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/logger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/pipeline"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/writer"
)

func newLedgerCommand(rt *runtime) *cobra.Command {
	var output string
	var metadata, noHeader bool

	cmd := &cobra.Command{
		Use:   "ledger <statement> [statement...]",
		Short: "Convert statements to ledger CSV files",
		Long: `Parses each statement (CSV, XLSX, XLS or PDF), keeps the rows with a
positive amount and a readable date, and writes the cleaned ledger as CSV.
Use --output - to write to standard output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && output != "-" && len(args) > 1 {
				return fmt.Errorf("--output can only be used with a single statement")
			}

			w := &writer.CSVWriter{IncludeMetadata: metadata, NoHeader: noHeader}
			p := rt.pipeline()

			var failed int
			for _, path := range args {
				if err := runLedger(cmd, rt, p, w, path, output); err != nil {
					rt.log.Error().Err(err).Str(logger.FieldFile, path).Msg("conversion failed")
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d statements failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path (default: <statement>_ledger.csv, - for stdout)")
	cmd.Flags().BoolVar(&metadata, "metadata", false, "prefix the CSV with source and parse report rows")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the column header row")

	return cmd
}

func runLedger(cmd *cobra.Command, rt *runtime, p *pipeline.Pipeline, w *writer.CSVWriter, path, output string) error {
	ctx := logger.WithContext(cmd.Context(), rt.log)
	res, err := p.RunFile(ctx, path)
	if err != nil {
		return err
	}

	meta := writer.Metadata{Source: res.Source, Format: res.Format, Report: res.Report}
	if output == "-" {
		return w.Write(cmd.OutOrStdout(), res.Ledger, meta)
	}

	if output == "" {
		output = ledgerPath(path)
	}
	if err := w.WriteToFile(output, res.Ledger, meta); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d kept, %d dropped)\n",
		path, output, res.Report.Kept, res.Report.Dropped())
	return nil
}

func ledgerPath(statement string) string {
	ext := filepath.Ext(statement)
	return strings.TrimSuffix(statement, ext) + "_ledger.csv"
}
